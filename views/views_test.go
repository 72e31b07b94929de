package views_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubtheme/comments"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/links"
	"github.com/eringen/pubtheme/views"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testSite(t *testing.T) views.Site {
	t.Helper()
	group, err := content.NewNavGroup("China Assistant", "https://robinconnect.com", []content.NavLink{
		{Label: "Supply Chain Solutions", URL: "https://robinconnect.com/supply-chain-solutions"},
	})
	require.NoError(t, err)
	return views.Site{
		Name:      "RobinConnect",
		URL:       "https://blog.robinconnect.com",
		CSRFToken: "tok",
		Nav: []content.NavItem{
			content.NavLink{Label: "Home", URL: "/"},
			group,
			content.NavLink{Label: "Guides", URL: "/series/guides/"},
			content.NavLink{Label: "Twitter", URL: "https://twitter.com/robin"},
		},
		Social:      []content.NavLink{{Label: "GitHub", URL: "https://github.com/robin"}},
		CTA:         content.NavLink{Label: "Ask Robin", URL: "/ask/"},
		Copyright:   "2025 RobinConnect",
		FooterLinks: []content.NavLink{{Label: "Privacy Policy", URL: "/privacy/"}},
		Links:       links.NewClassifier("robinconnect.hashnode.dev", "robinconnect.com"),
	}
}

func TestSmartLink(t *testing.T) {
	t.Parallel()

	c := links.NewClassifier("robinconnect.hashnode.dev", "robinconnect.com")

	internal := render(t, views.SmartLink(c, "/about/", "x", views.Text("About & more")))
	assert.Equal(t, `<a href="/about/" class="x" data-client-link>About &amp; more</a>`, internal)

	external := render(t, views.SmartLink(c, "https://github.com/a?b=1&c=2", "", views.Text("GH")))
	assert.Equal(t, `<a href="https://github.com/a?b=1&amp;c=2" target="_blank" rel="noopener noreferrer">GH</a>`, external)

	subdomain := render(t, views.SmartLink(c, "https://shop.robinconnect.com/", "", views.Text("Shop")))
	assert.NotContains(t, subdomain, "target=")
}

func TestNavList(t *testing.T) {
	t.Parallel()

	out := render(t, views.NavList(testSite(t)))

	assert.Contains(t, out, `<li class="group relative">`, "group renders a dropdown")
	assert.Contains(t, out, `href="https://robinconnect.com/supply-chain-solutions"`)
	assert.Contains(t, out, ">More</summary>")
	more := out[strings.Index(out, "More</summary>"):]
	assert.Contains(t, more, `href="https://twitter.com/robin" class="block truncate p-2 hover:bg-slate-100 dark:hover:bg-neutral-800" target="_blank"`)
	assert.NotContains(t, more, "Guides")
}

func TestNavList_NoOverflow(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	site.Nav = site.Nav[:2]
	assert.NotContains(t, render(t, views.NavList(site)), "More")
}

func TestLayout(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	site.Dark = true
	out := render(t, views.Layout(site, views.PageMeta{
		Title:  "Hello <world>",
		URL:    "https://blog.robinconnect.com/hello/",
		OGType: "article",
		Image:  "https://blog.robinconnect.com/api/og/post?og=x",
	}, views.Text("BODY")))

	assert.True(t, strings.HasPrefix(out, `<!DOCTYPE html><html lang="en" class="dark">`))
	assert.Contains(t, out, "<title>Hello &lt;world&gt;</title>")
	assert.Contains(t, out, `<meta property="og:type" content="article">`)
	assert.Contains(t, out, `<meta name="twitter:card" content="summary_large_image">`)
	assert.Contains(t, out, `<main>BODY</main>`)
	assert.Contains(t, out, `<input type="hidden" name="_csrf" value="tok">`)
	assert.Contains(t, out, `&copy; 2025 RobinConnect`)
	assert.Contains(t, out, `href="/ask/"`)
	assert.Contains(t, out, `"@type":"WebSite"`)

	light := render(t, views.Layout(testSite(t), views.PageMeta{}, nil))
	assert.True(t, strings.HasPrefix(light, `<!DOCTYPE html><html lang="en"><head>`))
	assert.Contains(t, light, "<title>RobinConnect</title>")
}

func TestPost(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	post := content.Post{
		Slug:        "hello",
		Title:       "Hello",
		PublishedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ReadTime:    4,
		Tags:        []content.Tag{{Name: "Sourcing", Slug: "sourcing"}},
	}
	related := []content.Post{{Slug: "next", Title: "Next"}}
	out := render(t, views.Post(site, post, related, views.Text("content"), views.CommentsPlaceholder("hello")))

	assert.Contains(t, out, "Mar 1, 2025 · 4 min read")
	assert.Contains(t, out, ">#Sourcing</li>")
	assert.Contains(t, out, `hx-get="/hello/comments/"`)
	assert.Contains(t, out, `href="/next/" class="hover:underline" data-client-link`)
}

func TestCommentsSection(t *testing.T) {
	t.Parallel()

	out := render(t, views.CommentsSection(views.CommentsView{
		Slug:   "hello",
		Status: comments.Error,
		Widget: `<div id="hashnode-comments"></div>`,
		Recent: []content.Comment{{Author: content.Author{Name: "Ann"}, HTML: "<p>Great</p>"}},
	}))

	assert.Contains(t, out, `id="comments-section" data-status="error"`)
	assert.Contains(t, out, "Comments (1)")
	assert.Contains(t, out, `<div id="hashnode-comments"></div>`)
	assert.Contains(t, out, "<p>Great</p>")
	assert.Equal(t, "/hello/comments/?attempt=2", views.CommentsPath("hello", 2))
}

func TestFilterRelatedPosts(t *testing.T) {
	t.Parallel()

	current := content.Post{Slug: "a", Tags: []content.Tag{{Slug: "go"}}}
	posts := []content.Post{
		current,
		{Slug: "b", Tags: []content.Tag{{Slug: "GO"}}},
		{Slug: "c", Tags: []content.Tag{{Slug: "rust"}}},
	}
	related := views.FilterRelatedPosts(current, posts)
	require.Len(t, related, 1)
	assert.Equal(t, "b", related[0].Slug)
}

func TestBlogPostingJsonLD(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	ld := views.BlogPostingJsonLD(site, content.Post{
		Slug:        "hello",
		Title:       "Hello",
		PublishedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Author:      content.Author{Name: "Robin"},
		Tags:        []content.Tag{{Name: "Go"}, {Name: "Web"}},
	})

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(ld), &data))
	assert.Equal(t, "https://blog.robinconnect.com/hello/", data["url"])
	assert.Equal(t, "2025-03-01", data["datePublished"])
	assert.Equal(t, "Go, Web", data["keywords"])
	assert.NotContains(t, data, "dateModified")
}
