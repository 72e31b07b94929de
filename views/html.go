package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/pubtheme/links"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (hw *htmlWriter) render(c templ.Component) {
	if hw.err == nil && c != nil {
		hw.err = c.Render(hw.ctx, hw.w)
	}
}

func component(fn func(hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		fn(hw)
		return hw.err
	})
}

// Text renders s escaped.
func Text(s string) templ.Component {
	return component(func(hw *htmlWriter) { hw.text(s) })
}

// SmartLink renders an anchor for href. Internal links are marked for
// client-side routing and stay in the tab; external links open in a new,
// unreferenced context.
func SmartLink(c *links.Classifier, href, class string, body templ.Component) templ.Component {
	return component(func(hw *htmlWriter) {
		props := c.LinkProps(href)
		hw.raw("<a")
		hw.attr("href", props.Href)
		if class != "" {
			hw.attr("class", class)
		}
		if props.External() {
			hw.attr("target", props.Target)
			hw.attr("rel", props.Rel)
		} else {
			hw.raw(" " + links.ClientLinkAttr)
		}
		hw.raw(">")
		hw.render(body)
		hw.raw("</a>")
	})
}
