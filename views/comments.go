package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubtheme/comments"
	"github.com/eringen/pubtheme/content"
)

// CommentsSectionID is the element the comments partial replaces.
const CommentsSectionID = "comments-section"

// CommentsPath is the URL of the comments partial for slug and attempt.
func CommentsPath(slug string, attempt int) string {
	p := PostPath(slug) + "comments/"
	if attempt > 0 {
		p += "?attempt=" + strconv.Itoa(attempt)
	}
	return p
}

// CommentsView is the resolved state of a post's comments.
type CommentsView struct {
	Slug   string
	Status comments.Status
	// Widget is the mounted widget container markup.
	Widget string
	// Recent are comments fetched directly from the API, shown below the widget.
	Recent []content.Comment
}

// CommentsPlaceholder renders the loading state and asks htmx to fetch the
// comments partial once the section scrolls into view.
func CommentsPlaceholder(slug string) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<section`)
		hw.attr("id", CommentsSectionID)
		hw.attr("hx-get", CommentsPath(slug, 0))
		hw.raw(` hx-trigger="revealed" hx-swap="outerHTML" data-status="loading" class="mx-auto flex w-full flex-col gap-5 px-5 md:max-w-screen-md">`)
		hw.raw(`<h3 class="text-xl font-bold tracking-tight">Comments</h3>`)
		hw.raw(`<div class="flex items-center gap-2 text-sm text-gray-500"><div class="h-4 w-4 animate-spin rounded-full border-2 border-gray-300 border-t-blue-600"></div>Loading comments...</div>`)
		hw.raw(`</section>`)
	})
}

// CommentsSection renders the comments once the loader has settled.
func CommentsSection(v CommentsView) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<section`)
		hw.attr("id", CommentsSectionID)
		hw.attr("data-status", v.Status.String())
		hw.raw(` class="mx-auto flex w-full flex-col gap-5 px-5 md:max-w-screen-md">`)
		hw.raw(`<h3 class="text-xl font-bold tracking-tight">Comments`)
		if n := len(v.Recent); n > 0 {
			hw.text(" (" + strconv.Itoa(n) + ")")
		}
		hw.raw(`</h3>`)
		hw.raw(v.Widget)
		if len(v.Recent) > 0 {
			hw.raw(`<ul class="flex flex-col gap-4">`)
			for _, c := range v.Recent {
				hw.raw(`<li class="rounded-lg border border-slate-200 p-4 dark:border-neutral-700"><p class="mb-2 text-sm font-semibold">`)
				hw.text(c.Author.Name)
				if !c.DateAdded.IsZero() {
					hw.raw(` <span class="font-normal text-slate-500">`)
					hw.text(c.DateAdded.Format("Jan 2, 2006 15:04"))
					hw.raw(`</span>`)
				}
				hw.raw(`</p><div class="prose prose-sm dark:prose-invert">`)
				hw.raw(c.HTML)
				hw.raw(`</div></li>`)
			}
			hw.raw(`</ul>`)
		}
		hw.raw(`</section>`)
	})
}
