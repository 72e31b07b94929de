package comments

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// FallbackView renders the stage C call to action: a link out to the
// discussion page and, when retryURL is not empty, a retry button that
// reloads the comments section with htmx.
func FallbackView(discussionURL, retryURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="rounded-xl border border-slate-200 bg-slate-50 p-6 text-center dark:border-neutral-700 dark:bg-neutral-800">`+
			`<h4 class="mb-3 text-lg font-semibold text-slate-700 dark:text-neutral-100">💬 Join the Discussion</h4>`+
			`<p class="mb-4 leading-normal text-slate-500 dark:text-neutral-300">Comments are powered by Hashnode. Click below to view and participate in the conversation.</p>`+
			`<a href="`+templ.EscapeString(discussionURL)+`" target="_blank" rel="noopener noreferrer" `+
			`class="inline-flex items-center gap-2 rounded-lg bg-blue-600 px-6 py-3 font-medium text-white hover:bg-blue-700">View Comments on Hashnode`+
			`<svg width="16" height="16" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">`+
			`<path d="M18 13v6a2 2 0 0 1-2 2H5a2 2 0 0 1-2-2V8a2 2 0 0 1 2-2h6"></path><polyline points="15,3 21,3 21,9"></polyline><line x1="10" y1="14" x2="21" y2="3"></line></svg></a>`)
		if err != nil {
			return err
		}
		if retryURL != "" {
			_, err = io.WriteString(w, `<p class="mt-4"><button type="button" hx-get="`+templ.EscapeString(retryURL)+`" hx-target="#comments-section" hx-swap="outerHTML" `+
				`class="rounded-md border border-slate-300 px-4 py-2 text-sm text-slate-500 hover:bg-slate-100 dark:border-neutral-600 dark:hover:bg-neutral-700">Try Again</button></p>`)
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}
