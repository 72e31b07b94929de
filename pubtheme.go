// Package pubtheme serves a themed front end for a Hashnode publication with
// Go, Echo, and templ. Posts and publication settings come from the Hashnode
// GraphQL API; pages are rendered server-side and every link in them is
// classified so internal links stay in the tab and external ones open in a
// new, unreferenced one.
//
// The comment widget is resolved through a fallback chain (embed script,
// iframe, discussion link) in a partial that htmx loads once the comments
// section scrolls into view.
package pubtheme

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/comments"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/links"
)

// App is the central pubtheme application. It wires together the content
// source, link handling, handlers, and middleware.
type App struct {
	Config     SiteConfig
	Echo       *echo.Echo
	Source     *ContentCache
	Classifier *links.Classifier
	// Rewriter rewrites rendered post bodies; Pattern is the lightweight
	// strategy used for feeds and comment bodies.
	Rewriter links.Rewriter
	Pattern  *links.PatternRewriter
	Comments comments.Endpoints

	ogLimiter    *RateLimiter
	httpClient   *http.Client
	source       content.Source
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates a new pubtheme App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates the configuration and registers middleware and routes.
// Start calls it; tests call it directly and serve a.Echo.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	var classifierOpts []links.ClassifierOption
	if a.Config.ForeignExternal {
		classifierOpts = append(classifierOpts, links.WithForeignSchemesExternal())
	}
	a.Classifier = links.NewClassifier(a.Config.PublicationHost, a.Config.CustomDomain, classifierOpts...)
	a.Rewriter = links.NewRewriter(a.Classifier, links.HTMLParser{})
	a.Pattern = links.NewPatternRewriter(a.Classifier)

	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.Config.CommentsTimeout}
	}
	if a.source == nil {
		clientOpts := []content.ClientOption{content.WithHTTPClient(a.httpClient)}
		if a.Config.GQLEndpoint != "" {
			clientOpts = append(clientOpts, content.WithEndpoint(a.Config.GQLEndpoint))
		}
		a.source = content.NewHashnodeClient(a.Config.PublicationHost, clientOpts...)
	}
	a.Source = NewContentCache(a.source, a.Config.ContentCacheTTL, a.Config.PostsPerPage)

	a.Comments = comments.Endpoints{
		ScriptURL: a.Config.CommentsScriptURL,
		Host:      a.Config.PublicationHost,
	}

	a.ogLimiter = NewRateLimiter(a.Config.OGRateLimit, a.Config.OGRateWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and starts the server.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("pubtheme: serve: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/rss.xml", a.handleFeed)
	e.GET("/api/og/post", a.handleOGImage)

	e.GET("/", a.handleHome)
	e.GET("/ask/", a.handleAsk)
	e.POST("/theme/", a.handleTheme)
	e.GET("/:slug/", a.handlePost)
	e.GET("/:slug/comments/", a.handleComments)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.ogLimiter != nil {
		a.ogLimiter.Stop()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("pubtheme: required environment variable %s is not set", key)
	}
	return v
}
