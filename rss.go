package pubtheme

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/markdown"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

// feedDescription is the item body: the post HTML with links rewritten, or
// the brief when the post has no content.
func (a *App) feedDescription(p content.Post) string {
	body := p.HTML
	if body == "" && p.Markdown != "" {
		body = markdown.Render(p.Markdown)
	}
	if body == "" {
		return p.Brief
	}
	return a.Pattern.Rewrite(body)
}

func (a *App) renderRSS(c echo.Context, pub content.Publication, posts []content.Post) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if !p.PublishedAt.IsZero() {
			pubDate = p.PublishedAt.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: a.feedDescription(p),
			Categories:  p.TagNames(),
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	title := a.Config.Name
	if title == "" {
		title = pub.Name()
	}
	desc := a.Config.Description
	if desc == "" {
		desc = pub.Description
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       title,
			Link:        BuildURL(base),
			Description: desc,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
