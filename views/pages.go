package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubtheme/content"
)

// Home is the landing page: the about blurb and the post list.
func Home(site Site, pub content.Publication, posts []content.Post) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<div class="container mx-auto flex flex-col gap-10 px-5 py-10">`)
		if pub.AboutHTML != "" || pub.AboutText != "" {
			hw.raw(`<section class="prose prose-lg max-w-none dark:prose-invert"><h2 class="mb-4 text-2xl font-bold">About `)
			hw.text(pub.Name())
			hw.raw(`</h2>`)
			if pub.AboutHTML != "" {
				hw.raw(`<div class="hashnode-content-style">`)
				hw.raw(pub.AboutHTML)
				hw.raw(`</div>`)
			} else {
				hw.raw(`<p class="leading-relaxed text-slate-700 dark:text-neutral-300">`)
				hw.text(pub.AboutText)
				hw.raw(`</p>`)
			}
			hw.raw(`</section>`)
		}
		hw.render(PostList(site, posts))
		hw.raw(`</div>`)
	})
}

// PostList renders post cards.
func PostList(site Site, posts []content.Post) templ.Component {
	return component(func(hw *htmlWriter) {
		if len(posts) == 0 {
			hw.raw(`<p class="text-center text-slate-500">No posts yet.</p>`)
			return
		}
		hw.raw(`<section class="grid gap-8 md:grid-cols-2">`)
		for _, p := range posts {
			hw.render(postCard(site, p))
		}
		hw.raw(`</section>`)
	})
}

func postCard(site Site, p content.Post) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<article class="flex flex-col gap-3">`)
		if p.CoverURL != "" {
			hw.render(SmartLink(site.Links, PostPath(p.Slug), "block overflow-hidden rounded-xl",
				component(func(hw *htmlWriter) {
					hw.raw(`<img loading="lazy" class="w-full object-cover"`)
					hw.attr("src", p.CoverURL)
					hw.attr("alt", p.Title)
					hw.raw(">")
				})))
		}
		hw.raw(`<h2 class="text-xl font-bold leading-snug">`)
		hw.render(SmartLink(site.Links, PostPath(p.Slug), "hover:underline", Text(p.Title)))
		hw.raw(`</h2>`)
		if p.Brief != "" {
			hw.raw(`<p class="text-slate-600 dark:text-neutral-300">`)
			hw.text(p.Brief)
			hw.raw(`</p>`)
		}
		hw.render(postMeta(p))
		hw.raw(`</article>`)
	})
}

func postMeta(p content.Post) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<p class="text-sm text-slate-500 dark:text-neutral-400">`)
		hw.text(formatDate(p))
		if p.ReadTime > 0 {
			hw.raw(` · `)
			hw.text(strconv.Itoa(p.ReadTime) + " min read")
		}
		hw.raw(`</p>`)
	})
}

// Post renders an article. body is the rendered content and comments the
// comments section placeholder.
func Post(site Site, post content.Post, related []content.Post, body, comments templ.Component) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<article class="flex flex-col items-start gap-10 pb-10 pt-10">`)
		hw.raw(`<h1 class="mx-auto max-w-screen-lg px-5 text-center text-4xl font-bold leading-tight tracking-tight md:text-5xl">`)
		hw.text(post.Title)
		hw.raw(`</h1><div class="mx-auto flex w-full flex-col items-center gap-2 px-5 text-slate-600 dark:text-neutral-300">`)
		if post.Author.Name != "" {
			hw.raw(`<span class="font-semibold">`)
			hw.text(post.Author.Name)
			hw.raw(`</span>`)
		}
		hw.render(postMeta(post))
		hw.raw(`</div>`)
		if post.CoverURL != "" {
			hw.raw(`<div class="mx-auto w-full max-w-screen-lg px-5"><img fetchpriority="high" class="w-full rounded-xl"`)
			hw.attr("src", post.CoverURL)
			hw.attr("alt", post.Title)
			hw.raw(`></div>`)
		}
		hw.raw(`<div class="hashnode-content-style mx-auto w-full px-5 md:max-w-screen-md">`)
		hw.render(body)
		hw.raw(`</div>`)
		if len(post.Tags) > 0 {
			hw.raw(`<ul class="mx-auto flex w-full flex-wrap gap-2 px-5 md:max-w-screen-md">`)
			for _, t := range post.Tags {
				hw.raw(`<li`)
				hw.attr("class", TagClass())
				hw.raw(`>#`)
				hw.text(t.Name)
				hw.raw(`</li>`)
			}
			hw.raw(`</ul>`)
		}
		hw.render(comments)
		if len(related) > 0 {
			hw.raw(`<section class="mx-auto w-full px-5 md:max-w-screen-md"><h3 class="mb-4 text-xl font-bold">More articles</h3><ul class="flex flex-col gap-2">`)
			for _, p := range related {
				hw.raw(`<li>`)
				hw.render(SmartLink(site.Links, PostPath(p.Slug), "hover:underline", Text(p.Title)))
				hw.raw(`</li>`)
			}
			hw.raw(`</ul></section>`)
		}
		hw.raw(`</article>`)
	})
}

// Ask is the contact page embedding an external form.
func Ask(site Site, formURL string) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<div class="container mx-auto py-10"><div class="mx-auto max-w-4xl"><div class="mb-8 text-center">`)
		hw.raw(`<h1 class="mb-4 text-4xl font-bold">Ask `)
		hw.text(site.Author)
		hw.raw(`</h1><p class="mx-auto max-w-2xl text-lg text-neutral-600 dark:text-neutral-300">Have a question or need support? Fill out the form below and we will get back to you promptly.</p></div>`)
		hw.raw(`<div class="rounded-xl border border-neutral-200 bg-white p-2 shadow-sm dark:border-neutral-700 dark:bg-neutral-800">`)
		hw.raw(`<iframe loading="lazy" width="100%" height="600" frameborder="0" style="background:transparent;border-radius:8px"`)
		hw.attr("src", formURL)
		hw.attr("title", "Ask "+site.Author+" form")
		hw.raw(`></iframe></div>`)
		hw.raw(`<p class="mt-8 text-center text-sm text-neutral-500 dark:text-neutral-400">We typically respond within 24 hours during business days.</p></div></div>`)
	})
}

// NotFound is the 404 page body.
func NotFound(site Site) templ.Component {
	return errorPage(site, "404", "Page not found", "The page you are looking for does not exist.")
}

// ServerError is the 5xx page body.
func ServerError(site Site) templ.Component {
	return errorPage(site, "500", "Something went wrong", "Please try again in a moment.")
}

func errorPage(site Site, code, title, detail string) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<div class="container mx-auto flex flex-col items-center gap-4 px-5 py-20 text-center"><p class="text-6xl font-bold text-slate-300 dark:text-neutral-700">`)
		hw.text(code)
		hw.raw(`</p><h1 class="text-2xl font-bold">`)
		hw.text(title)
		hw.raw(`</h1><p class="text-slate-600 dark:text-neutral-300">`)
		hw.text(detail)
		hw.raw(`</p>`)
		hw.render(SmartLink(site.Links, "/", "rounded-full bg-blue-600 px-5 py-2 text-white", Text("Back to the blog")))
		hw.raw(`</div>`)
	})
}
