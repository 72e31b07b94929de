package pubtheme

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/eringen/pubtheme/content"
)

// SiteConfig holds all configuration for a pubtheme site.
type SiteConfig struct {
	Name        string `yaml:"name"`                                 // Site name (default: publication title)
	URL         string `yaml:"url" validate:"required,url"`          // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"`                          // Overrides the publication description
	Author      string `yaml:"author"`                               // Name used on the contact page
	Addr        string `yaml:"addr" validate:"required"`             // Listen address (default ":3000")
	Copyright   string `yaml:"copyright"`                            // Footer line after the copyright sign
	ContactForm string `yaml:"contact_form" validate:"omitempty,url"` // External form embedded on /ask/

	PublicationHost string `yaml:"publication_host" validate:"required,hostname"` // Hashnode host, e.g. "robinconnect.hashnode.dev"
	CustomDomain    string `yaml:"custom_domain" validate:"omitempty,hostname"`   // Apex domain whose subdomains count as internal
	GQLEndpoint     string `yaml:"gql_endpoint" validate:"omitempty,url"`         // Hashnode GraphQL API (default content.DefaultEndpoint)
	PostsPerPage    int    `yaml:"posts_per_page" validate:"gte=1,lte=50"`        // Posts listed on the home page (default 20)
	ForeignExternal bool   `yaml:"foreign_schemes_external"`                      // Treat mailto:, tel: and similar as external

	CommentsScriptURL string        `yaml:"comments_script_url" validate:"omitempty,url"` // Embed script (default comments.DefaultScriptURL)
	CommentsGrace     time.Duration `yaml:"comments_grace" validate:"gte=0"`              // Wait after the script loads (default 3s)
	CommentsTimeout   time.Duration `yaml:"comments_timeout" validate:"gt=0"`             // Deadline for the whole fallback chain (default 10s)
	CommentsRecent    int           `yaml:"comments_recent" validate:"gte=-1,lte=50"`     // Comments fetched from the API (default 20, -1 disables)

	SessionSecret string `yaml:"session_secret" validate:"required,min=16"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`                             // Set true for HTTPS

	ContentCacheTTL time.Duration `yaml:"content_cache_ttl" validate:"gt=0"` // Content cache TTL (default 5min)
	OGRateLimit     int           `yaml:"og_rate_limit" validate:"gt=0"`     // OG images per IP per window (default 30)
	OGRateWindow    time.Duration `yaml:"og_rate_window" validate:"gt=0"`    // (default 1min)

	CTA         *content.NavLink             `yaml:"cta" validate:"omitempty"`
	FooterLinks []content.NavLink            `yaml:"footer_links" validate:"dive"`
	Submenus    map[string][]content.NavLink `yaml:"submenus" validate:"dive,dive"`
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostsPerPage == 0 {
		c.PostsPerPage = 20
	}
	if c.CommentsGrace == 0 {
		c.CommentsGrace = 3 * time.Second
	}
	if c.CommentsTimeout == 0 {
		c.CommentsTimeout = 10 * time.Second
	}
	if c.CommentsRecent == 0 {
		c.CommentsRecent = 20
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.OGRateLimit == 0 {
		c.OGRateLimit = 30
	}
	if c.OGRateWindow == 0 {
		c.OGRateWindow = time.Minute
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid fields of c.
func (c SiteConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("pubtheme: validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("pubtheme: invalid config: %s", strings.Join(msgs, ", "))
}

// LoadConfig reads an optional YAML file at path, applies PUBTHEME_*
// environment overrides, fills defaults and validates the result.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return SiteConfig{}, fmt.Errorf("pubtheme: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("pubtheme: parse config yaml: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

func applyEnv(c *SiteConfig) error {
	strs := map[string]*string{
		"PUBTHEME_NAME":                &c.Name,
		"PUBTHEME_URL":                 &c.URL,
		"PUBTHEME_DESCRIPTION":         &c.Description,
		"PUBTHEME_AUTHOR":              &c.Author,
		"PUBTHEME_ADDR":                &c.Addr,
		"PUBTHEME_PUBLICATION_HOST":    &c.PublicationHost,
		"PUBTHEME_CUSTOM_DOMAIN":       &c.CustomDomain,
		"PUBTHEME_GQL_ENDPOINT":        &c.GQLEndpoint,
		"PUBTHEME_COMMENTS_SCRIPT_URL": &c.CommentsScriptURL,
		"PUBTHEME_SESSION_SECRET":      &c.SessionSecret,
		"PUBTHEME_CONTACT_FORM":        &c.ContactForm,
	}
	for key, dst := range strs {
		*dst = EnvOr(key, *dst)
	}
	if v := os.Getenv("PUBTHEME_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("pubtheme: PUBTHEME_COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	durs := map[string]*time.Duration{
		"PUBTHEME_COMMENTS_GRACE":    &c.CommentsGrace,
		"PUBTHEME_COMMENTS_TIMEOUT":  &c.CommentsTimeout,
		"PUBTHEME_CONTENT_CACHE_TTL": &c.ContentCacheTTL,
	}
	for key, dst := range durs {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("pubtheme: %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithSource replaces the Hashnode client, e.g. with a fixture in tests.
func WithSource(s content.Source) Option {
	return func(a *App) {
		a.source = s
	}
}

// WithHTTPClient sets the client used for GraphQL queries and widget probes.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}
