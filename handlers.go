package pubtheme

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/comments"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/markdown"
	"github.com/eringen/pubtheme/views"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	pub, err := a.Source.Publication(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Source.Posts(ctx, a.Config.PostsPerPage)
	if err != nil {
		return err
	}
	site := a.site(c, pub)
	meta := views.PageMeta{
		Title:       site.Name,
		Description: site.Description,
		URL:         BuildURL(a.Config.URL),
		Image:       pub.OGImage,
	}
	return a.renderPage(c, http.StatusOK, site, meta, views.Home(site, pub, posts))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	post, err := a.Source.Post(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	pub, err := a.Source.Publication(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Source.Posts(ctx, a.Config.PostsPerPage)
	if err != nil {
		return err
	}

	site := a.site(c, pub)
	meta := views.PageMeta{
		Title:       post.Title,
		Description: post.Brief,
		URL:         BuildURL(a.Config.URL, post.Slug),
		OGType:      "article",
		Image:       post.CoverURL,
		JSONLD:      views.BlogPostingJsonLD(site, post),
	}
	if post.SEOTitle != "" {
		meta.Title = post.SEOTitle
	}
	if post.SEODesc != "" {
		meta.Description = post.SEODesc
	}
	if meta.Image == "" {
		meta.Image = a.ogImageURL(pub, post)
	}

	return a.renderPage(c, http.StatusOK, site, meta, views.Post(
		site, post,
		views.FilterRelatedPosts(post, posts),
		a.postBody(post),
		views.CommentsPlaceholder(post.Slug),
	))
}

// postBody renders the post's Markdown, or its pre-rendered HTML when the
// source has no Markdown, with every link rewritten.
func (a *App) postBody(post content.Post) templ.Component {
	if post.Markdown != "" {
		return markdown.Component(post.Markdown, a.Rewriter)
	}
	return templ.Raw(a.Rewriter.Rewrite(post.HTML))
}

// handleComments resolves the comment widget for a post and renders the
// comments section partial. The attempt query parameter is the number of
// retries already spent; the fallback's retry button links back here with
// attempt+1.
func (a *App) handleComments(c echo.Context) error {
	slug := c.Param("slug")
	attempt := 0
	if v := c.QueryParam("attempt"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid attempt")
		}
		attempt = min(n, comments.MaxRetries)
	}

	post, err := a.Source.Post(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), a.Config.CommentsTimeout)
	defer cancel()

	retryURL := func(n int) string {
		return views.CommentsPath(post.Slug, n)
	}
	container := comments.NewHTMLContainer(ctx, a.httpClient, retryURL)
	loader := comments.NewLoader(a.Comments, container, comments.Subject{
		ID:     post.ID,
		Slug:   post.Slug,
		Title:  post.Title,
		Author: post.Author.Name,
	},
		comments.WithRetries(attempt),
		comments.WithGraceInterval(a.Config.CommentsGrace),
		comments.WithLogger(c.Logger()),
	)
	loader.Start()
	status, err := loader.Wait(ctx)
	widget := container.HTML()
	loader.Close()
	if err != nil {
		// The chain did not settle in time; whatever stage was mounted is
		// replaced by the discussion link.
		c.Logger().Warnf("comments %s: %s unresolved: %v", loader.ID(), post.Slug, err)
		fallback := comments.NewHTMLContainer(c.Request().Context(), nil, retryURL)
		fallback.ShowFallback(comments.Fallback{
			DiscussionURL: a.Comments.DiscussionURL(post.Slug),
			Retries:       attempt,
			CanRetry:      attempt < comments.MaxRetries,
		})
		status, widget = comments.Error, fallback.HTML()
	}

	view := views.CommentsView{
		Slug:   post.Slug,
		Status: status,
		Widget: widget,
	}
	if a.Config.CommentsRecent > 0 {
		recent, err := a.Source.Comments(c.Request().Context(), post.Slug, a.Config.CommentsRecent)
		if err != nil {
			c.Logger().Warnf("comments: fetch %s: %v", post.Slug, err)
		}
		for i := range recent {
			recent[i].HTML = a.Pattern.Rewrite(recent[i].HTML)
		}
		view.Recent = recent
	}
	return Render(c, views.CommentsSection(view))
}

func (a *App) handleAsk(c echo.Context) error {
	if a.Config.ContactForm == "" {
		return a.renderNotFound(c)
	}
	pub, err := a.Source.Publication(c.Request().Context())
	if err != nil {
		return err
	}
	site := a.site(c, pub)
	meta := views.PageMeta{
		Title: "Ask " + site.Author + " | " + site.Name,
		URL:   BuildURL(a.Config.URL, "ask"),
	}
	return a.renderPage(c, http.StatusOK, site, meta, views.Ask(site, a.Config.ContactForm))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Source.Posts(c.Request().Context(), a.Config.PostsPerPage)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()
	pub, err := a.Source.Publication(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Source.Posts(ctx, a.Config.PostsPerPage)
	if err != nil {
		return err
	}
	return a.renderRSS(c, pub, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

// errorSite builds layout data for error pages without failing when the
// publication itself is unavailable.
func (a *App) errorSite(c echo.Context) views.Site {
	pub, err := a.Source.Publication(c.Request().Context())
	if err != nil {
		pub = content.Publication{Title: a.Config.Name}
	}
	return a.site(c, pub)
}

func (a *App) renderNotFound(c echo.Context) error {
	site := a.errorSite(c)
	return a.renderPage(c, http.StatusNotFound, site, views.PageMeta{Title: "Page not found | " + site.Name}, views.NotFound(site))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		site := a.errorSite(c)
		_ = a.renderPage(c, code, site, views.PageMeta{Title: "Error | " + site.Name}, views.ServerError(site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
