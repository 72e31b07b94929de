package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRenderMarkdownInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<p><strong>bold</strong></p>\n"},
		{"__bold__", "<p><strong>bold</strong></p>\n"},
		{"*italic*", "<p><em>italic</em></p>\n"},
		{"_italic_", "<p><em>italic</em></p>\n"},
		{"**bold *italic* text**", "<p><strong>bold <em>italic</em> text</strong></p>\n"},
		{"use `fmt.Println` here", "<p>use <code>fmt.Println</code> here</p>\n"},
		{"`**not bold**`", "<p><code>**not bold**</code></p>\n"},
		{"~~gone~~", "<p><del>gone</del></p>\n"},
	}
	for _, tt := range tests {
		got := Render(tt.input)
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderMarkdownCodeBlock(t *testing.T) {
	got := Render("```\ncode here\n```")
	if !strings.Contains(got, `<pre class="code-block"><code>`) {
		t.Errorf("Render code block failed: %q", got)
	}
	if !strings.Contains(got, "code here") {
		t.Errorf("Render code block missing content: %q", got)
	}
}

func TestRenderMarkdownCodeBlockWithLanguage(t *testing.T) {
	got := Render("```go\nfmt.Println(\"hello\")\n```")
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should have language-go class: %q", got)
	}
	if !strings.Contains(got, `<span class="code-lang code-lang-go">go</span>`) {
		t.Errorf("code block should have language badge: %q", got)
	}
	if !strings.HasPrefix(got, `<div class="code-block-wrapper">`) {
		t.Errorf("code block should be wrapped in div: %q", got)
	}
	if !strings.Contains(got, "fmt.Println(&quot;hello&quot;)") {
		t.Errorf("code should be escaped: %q", got)
	}
	if !strings.HasSuffix(got, "</code></pre></div>\n") {
		t.Errorf("wrapper div should be closed: %q", got)
	}
}

func TestRenderMarkdownCodeBlockWithoutLanguage(t *testing.T) {
	got := Render("```\nplain code\n```")
	if strings.Contains(got, "code-lang") {
		t.Errorf("code block without language should not have badge: %q", got)
	}
	if strings.Contains(got, "code-block-wrapper") {
		t.Errorf("code block without language should not have wrapper: %q", got)
	}
}

func TestRenderMarkdownHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading 1", "<h1 id=\"heading-1\">Heading 1</h1>\n"},
		{"## Heading 2", "<h2 id=\"heading-2\">Heading 2</h2>\n"},
		{"### Heading 3", "<h3 id=\"heading-3\">Heading 3</h3>\n"},
	}
	for _, tt := range tests {
		got := Render(tt.input)
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderMarkdownLists(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"- item 1\n- item 2", "<ul>\n<li>item 1</li>\n<li>item 2</li>\n</ul>\n"},
		{"1. first\n2. second", "<ol>\n<li>first</li>\n<li>second</li>\n</ol>\n"},
		{"1. **bold** item\n2. *italic* item", "<ol>\n<li><strong>bold</strong> item</li>\n<li><em>italic</em> item</li>\n</ol>\n"},
	}
	for _, tt := range tests {
		got := Render(tt.input)
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderMarkdownLinkWithUnderscoresInURL(t *testing.T) {
	got := Render("[Wikipedia](https://en.wikipedia.org/wiki/Some_Article_Title)")
	want := "<p><a href=\"https://en.wikipedia.org/wiki/Some_Article_Title\">Wikipedia</a></p>\n"
	if got != want {
		t.Errorf("Render link\n  got:  %q\n  want: %q", got, want)
	}
}

func TestRenderMarkdownDropsUnsafeLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[click](javascript:alert(1))", "<p>click</p>\n"},
		{"[**bold** click](data:text/html,x) after", "<p><strong>bold</strong> click after</p>\n"},
		{"[mail](mailto:me@example.com)", "<p><a href=\"mailto:me@example.com\">mail</a></p>\n"},
	}
	for _, tt := range tests {
		got := Render(tt.input)
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderMarkdownImagesLoading(t *testing.T) {
	got := Render("![a](/a.png)\n\n![b](/b.png)")
	first := strings.Index(got, `loading="eager"`)
	second := strings.Index(got, `loading="lazy"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("first image should load eagerly and the rest lazily: %q", got)
	}
	if strings.Count(got, `decoding="async"`) != 2 {
		t.Errorf("images should decode async: %q", got)
	}
}

func TestRenderMarkdownKeepsRawHTML(t *testing.T) {
	input := "<div class=\"callout\"><a href=\"https://example.com\">x</a></div>"
	got := Render(input)
	if !strings.Contains(got, input) {
		t.Errorf("raw HTML should pass through: %q", got)
	}
}

func TestRenderMarkdownTable(t *testing.T) {
	got := Render("| a | b |\n|---|---|\n| 1 | 2 |")
	for _, want := range []string{"<table>", "<th>a</th>", "<td>2</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("table should contain %q: %q", want, got)
		}
	}
}

type upper struct{}

func (upper) Rewrite(s string) string { return strings.ToUpper(s) }

func TestComponentRewrites(t *testing.T) {
	var buf bytes.Buffer
	if err := Component("hi", upper{}).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "<P>HI</P>\n" {
		t.Errorf("Component = %q", got)
	}

	buf.Reset()
	if err := Markdown("hi").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "<p>hi</p>\n" {
		t.Errorf("Markdown = %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/about/", "/about/"},
		{"#top", "#top"},
		{"https://example.com", "https://example.com"},
		{"  tel:+123 ", "tel:+123"},
		{"images/a.png", "images/a.png"},
		{"javascript:alert(1)", ""},
		{"JavaScript:alert(1)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
