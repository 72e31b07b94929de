package pubtheme

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/views"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// site builds the layout data for the current visitor.
func (a *App) site(c echo.Context, pub content.Publication) views.Site {
	name := a.Config.Name
	if name == "" {
		name = pub.Name()
	}
	desc := a.Config.Description
	if desc == "" {
		desc = pub.Description
	}
	author := a.Config.Author
	if author == "" {
		author = pub.Author.Name
	}
	copyright := a.Config.Copyright
	if copyright == "" {
		copyright = strconv.Itoa(time.Now().Year()) + " " + name
	}
	var cta content.NavLink
	if a.Config.CTA != nil {
		cta = *a.Config.CTA
	}
	return views.Site{
		Name:        name,
		URL:         a.Config.URL,
		Description: desc,
		Author:      author,
		Logo:        pub.HeaderLogo(),
		Dark:        a.isDark(c, pub),
		CSRFToken:   CsrfToken(c),
		Nav:         content.BuildNavigation(pub.NavbarItems, a.Config.Submenus),
		Social:      pub.Links.All(),
		CTA:         cta,
		Copyright:   copyright,
		FooterLinks: a.Config.FooterLinks,
		Links:       a.Classifier,
	}
}

// ogImageURL returns the generated social preview URL for post.
func (a *App) ogImageURL(pub content.Publication, post content.Post) string {
	domain := a.Config.CustomDomain
	if domain == "" {
		domain = a.Config.PublicationHost
	}
	author := post.Author.Name
	if author == "" {
		author = pub.Author.Name
	}
	og := OGPost{
		Author:            author,
		Domain:            domain,
		Title:             post.Title,
		ReadTime:          post.ReadTime,
		Reactions:         post.Reactions,
		IsDefaultModeDark: pub.DarkMode,
	}
	return a.Config.URL + "/api/og/post?og=" + url.QueryEscape(og.Encode())
}

// returnPath reduces a Referer to a same-site path. Anything the classifier
// treats as external, or that does not resolve to an absolute path, yields "/".
func (a *App) returnPath(referer string) string {
	if referer == "" || !a.Classifier.IsInternal(referer) {
		return "/"
	}
	u, err := url.Parse(referer)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	p := u.EscapedPath()
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}
