// Package markdown renders post Markdown to HTML as a templ component.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Rewriter post-processes rendered HTML, for example to set link targets.
type Rewriter interface {
	Rewrite(fragment string) string
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, contentExtension{}),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	// Hashnode posts embed raw HTML (iframes, callouts) that must survive.
	goldmark.WithRendererOptions(ghtml.WithUnsafe()),
)

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return Component(content, nil)
}

// Component renders content and passes the result through rw when it is
// not nil.
func Component(content string, rw Rewriter) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := Render(content)
		if rw != nil {
			out = rw.Rewrite(out)
		}
		_, err := io.WriteString(w, out)
		return err
	})
}

// Render returns the HTML representation of content.
func Render(content string) string {
	var buf bytes.Buffer
	RenderMarkdown(&buf, content)
	return buf.String()
}

// RenderMarkdown writes the HTML representation of content to buf.
// Conversion errors leave buf with whatever was rendered so far.
func RenderMarkdown(buf *bytes.Buffer, content string) {
	_ = md.Convert([]byte(content), buf)
}

type contentExtension struct{}

func (contentExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(safeLinks{}, 100),
		util.Prioritized(imageLoading{}, 200),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(codeBlockRenderer{}, 100),
	))
}

// safeLinks unwraps links and images whose destination fails SafeURL,
// keeping their text.
type safeLinks struct{}

func (safeLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var unsafe []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			if SafeURL(string(v.Destination)) == "" {
				unsafe = append(unsafe, n)
			}
		case *ast.Image:
			if SafeURL(string(v.Destination)) == "" {
				unsafe = append(unsafe, n)
			}
		}
		return ast.WalkContinue, nil
	})
	for _, n := range unsafe {
		parent := n.Parent()
		if parent == nil {
			continue
		}
		for c := n.FirstChild(); c != nil; {
			next := c.NextSibling()
			n.RemoveChild(n, c)
			parent.InsertBefore(parent, n, c)
			c = next
		}
		parent.RemoveChild(parent, n)
	}
}

// imageLoading gives the first image a high fetch priority and lazy loads the rest.
type imageLoading struct{}

func (imageLoading) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	count := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindImage {
			return ast.WalkContinue, nil
		}
		count++
		if count == 1 {
			n.SetAttributeString("loading", []byte("eager"))
		} else {
			n.SetAttributeString("loading", []byte("lazy"))
		}
		n.SetAttributeString("decoding", []byte("async"))
		return ast.WalkContinue, nil
	})
}

// codeBlockRenderer wraps fenced code with a language badge.
type codeBlockRenderer struct{}

func (r codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (codeBlockRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := html.EscapeString(string(n.Language(source)))
	if lang != "" {
		_, _ = w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + lang + `">` + lang + `</span>`)
		_, _ = w.WriteString(`<pre class="code-block"><code class="language-` + lang + `">`)
	} else {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("</code></pre>")
	if lang != "" {
		_, _ = w.WriteString("</div>")
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

// SafeURL validates a link or image destination. It returns the trimmed
// destination, or "" when the scheme is not one a reader should follow.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") || strings.HasPrefix(val, "?") {
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" {
		// Relative paths such as "images/a.png".
		if strings.Contains(val, ":") {
			return ""
		}
		return val
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return val
	default:
		return ""
	}
}
