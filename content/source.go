// Package content fetches publication data from Hashnode and models the
// navigation built from it.
package content

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a publication or post does not exist.
var ErrNotFound = errors.New("content: not found")

// Source provides the publication and its posts.
type Source interface {
	Publication(ctx context.Context) (Publication, error)
	// Posts returns up to first posts, newest first.
	Posts(ctx context.Context, first int) ([]Post, error)
	Post(ctx context.Context, slug string) (Post, error)
	// Comments returns up to first comments of the post with slug.
	Comments(ctx context.Context, slug string, first int) ([]Comment, error)
}

// Publication is the blog being themed.
type Publication struct {
	ID           string
	Title        string
	DisplayTitle string
	Description  string
	AboutHTML    string
	AboutText    string
	Logo         string
	DarkLogo     string
	DarkMode     bool // publication default is dark
	OGImage      string
	Author       Author
	Links        SocialLinks
	NavbarItems  []NavbarItem
}

// Name returns the display title, falling back to the title.
func (p Publication) Name() string {
	if p.DisplayTitle != "" {
		return p.DisplayTitle
	}
	return p.Title
}

// HeaderLogo returns the logo to show on the themed header.
func (p Publication) HeaderLogo() string {
	if p.DarkLogo != "" {
		return p.DarkLogo
	}
	return p.Logo
}

// Post is a single article.
type Post struct {
	ID          string
	Slug        string
	Title       string
	Brief       string
	Markdown    string
	HTML        string
	CoverURL    string
	PublishedAt time.Time
	UpdatedAt   time.Time
	ReadTime    int // minutes
	Reactions   int
	Author      Author
	Tags        []Tag
	SEOTitle    string
	SEODesc     string
}

// TagNames returns the post's tag names.
func (p Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Author is a Hashnode user.
type Author struct {
	Name     string
	Username string
	Picture  string
}

// Tag labels a post.
type Tag struct {
	Name string
	Slug string
}

// Comment is a reader response on a post.
type Comment struct {
	ID        string
	HTML      string
	Author    Author
	DateAdded time.Time
	Reactions int
}

// NavbarItem is a raw navigation entry as configured on Hashnode.
type NavbarItem struct {
	ID    string
	Label string
	URL   string
	Type  string
}

// SocialLinks are the publication's profiles elsewhere.
type SocialLinks struct {
	Website   string
	Twitter   string
	GitHub    string
	LinkedIn  string
	Hashnode  string
	Instagram string
	Facebook  string
	YouTube   string
	Mastodon  string
}

// All returns the non-empty links in display order.
func (l SocialLinks) All() []NavLink {
	candidates := []NavLink{
		{Label: "Website", URL: l.Website},
		{Label: "Twitter", URL: l.Twitter},
		{Label: "GitHub", URL: l.GitHub},
		{Label: "LinkedIn", URL: l.LinkedIn},
		{Label: "Hashnode", URL: l.Hashnode},
		{Label: "Instagram", URL: l.Instagram},
		{Label: "Facebook", URL: l.Facebook},
		{Label: "YouTube", URL: l.YouTube},
		{Label: "Mastodon", URL: l.Mastodon},
	}
	var out []NavLink
	for _, c := range candidates {
		if c.URL != "" {
			out = append(out, c)
		}
	}
	return out
}
