package links

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rewriter sets target and rel on every anchor of an HTML fragment according
// to the classification of its href. Everything else is preserved.
type Rewriter interface {
	Rewrite(fragment string) string
}

// FragmentParser is implemented by environments able to build a detached
// element tree from an HTML fragment. The returned node is a container whose
// children are the parsed fragment.
type FragmentParser interface {
	ParseFragment(fragment string) (*xhtml.Node, error)
}

// NewRewriter picks the tree strategy when a FragmentParser is available and
// the pattern strategy otherwise.
func NewRewriter(c *Classifier, p FragmentParser) Rewriter {
	if p == nil {
		return NewPatternRewriter(c)
	}
	return NewTreeRewriter(c, p)
}

var (
	// An <a ...> start tag; quoted attribute values may contain '>'.
	reAnchorTag = regexp.MustCompile(`(?i)<a(\s(?:[^>"']|"[^"]*"|'[^']*')*)?>`)
	// One attribute inside a start tag, value included.
	reAttr = regexp.MustCompile(`(\s+)([^\s"'>/=]+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s"'>]+))?`)
)

// PatternRewriter rewrites anchors with regular expressions. It needs no
// parser and never fails, at the price of only understanding start tags:
// anchors inside comments, <script> or <textarea> are rewritten too.
type PatternRewriter struct {
	classifier *Classifier
}

// NewPatternRewriter returns a PatternRewriter.
func NewPatternRewriter(c *Classifier) *PatternRewriter {
	return &PatternRewriter{classifier: c}
}

// Rewrite implements Rewriter.
func (r *PatternRewriter) Rewrite(fragment string) string {
	return reAnchorTag.ReplaceAllStringFunc(fragment, r.rewriteTag)
}

func (r *PatternRewriter) rewriteTag(tag string) string {
	attrs := reAnchorTag.FindStringSubmatch(tag)[1]
	trimmed := strings.TrimRight(attrs, " \t\r\n\f")
	// A trailing slash only closes the tag when it is not part of an unquoted
	// value, as in <a href=/about/>.
	selfClosing := strings.HasSuffix(trimmed, "/") &&
		(len(trimmed) == 1 || strings.ContainsAny(trimmed[len(trimmed)-2:len(trimmed)-1], " \t\r\n\f\"'"))
	if selfClosing {
		attrs = strings.TrimSuffix(trimmed, "/")
	}

	var (
		kept    strings.Builder
		href    string
		hasHref bool
		last    int
	)
	for _, loc := range reAttr.FindAllStringSubmatchIndex(attrs, -1) {
		kept.WriteString(attrs[last:loc[0]])
		last = loc[1]
		name := strings.ToLower(attrs[loc[4]:loc[5]])
		switch name {
		case "target", "rel":
			continue
		case "href":
			if !hasHref {
				// A valueless href is an empty one.
				if loc[6] >= 0 {
					href = html.UnescapeString(unquote(attrs[loc[6]:loc[7]]))
				}
				hasHref = true
			}
		}
		kept.WriteString(attrs[loc[0]:loc[1]])
	}
	kept.WriteString(attrs[last:])
	if !hasHref {
		return tag
	}

	a := r.classifier.Attributes(href)
	rest := kept.String()
	if !a.IsZero() {
		// Derived attributes always follow a single space, so a second pass
		// reproduces the first.
		rest = strings.TrimRight(rest, " \t\r\n\f")
	}
	var b strings.Builder
	b.WriteString(tag[:2])
	b.WriteString(rest)
	if a.Target != "" {
		b.WriteString(` target="` + a.Target + `"`)
	}
	if a.Rel != "" {
		b.WriteString(` rel="` + a.Rel + `"`)
	}
	if selfClosing {
		b.WriteString("/")
	}
	b.WriteString(">")
	return b.String()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// TreeRewriter rewrites anchors on a parsed element tree.
type TreeRewriter struct {
	classifier *Classifier
	parser     FragmentParser
	fallback   *PatternRewriter
}

// NewTreeRewriter returns a TreeRewriter using p to parse fragments.
func NewTreeRewriter(c *Classifier, p FragmentParser) *TreeRewriter {
	return &TreeRewriter{classifier: c, parser: p, fallback: NewPatternRewriter(c)}
}

// Rewrite implements Rewriter. Fragments the parser rejects are handed to the
// pattern strategy.
func (r *TreeRewriter) Rewrite(fragment string) string {
	root, err := r.parser.ParseFragment(fragment)
	if err != nil {
		return r.fallback.Rewrite(fragment)
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		applyAttributes(s, r.classifier.Attributes(href))
	})
	out, err := doc.Html()
	if err != nil {
		return r.fallback.Rewrite(fragment)
	}
	return out
}

func applyAttributes(s *goquery.Selection, a Attributes) {
	s.RemoveAttr("target")
	s.RemoveAttr("rel")
	if a.Target != "" {
		s.SetAttr("target", a.Target)
	}
	if a.Rel != "" {
		s.SetAttr("rel", a.Rel)
	}
}

// HTMLParser parses fragments with golang.org/x/net/html in a <div> context.
type HTMLParser struct{}

// ParseFragment implements FragmentParser.
func (HTMLParser) ParseFragment(fragment string) (*xhtml.Node, error) {
	container := &xhtml.Node{Type: xhtml.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}
