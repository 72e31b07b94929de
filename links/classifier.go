// Package links decides whether a URL stays inside the publication or leaves
// it, and applies that decision to anchors: statically when HTML is rewritten
// and live when a click is dispatched on a Document.
package links

import (
	"net/url"
	"strings"
)

// Classification is the result of classifying a URL.
type Classification int

const (
	// External links open in a new, unreferenced browsing context.
	External Classification = iota
	// Internal links navigate within the publication, in the same tab.
	Internal
)

func (c Classification) String() string {
	if c == Internal {
		return "internal"
	}
	return "external"
}

// Classifier classifies URLs against the publication's canonical host and
// custom domain. Its configuration is fixed at construction.
type Classifier struct {
	host                   string
	domain                 string
	foreignSchemesExternal bool
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithForeignSchemesExternal makes URLs with a non-http scheme (mailto:, tel:,
// javascript:, ...) classify as External instead of falling through to the
// Internal default.
func WithForeignSchemesExternal() ClassifierOption {
	return func(c *Classifier) {
		c.foreignSchemesExternal = true
	}
}

// NewClassifier returns a Classifier for the given canonical host
// (e.g. "robinconnect.hashnode.dev") and custom domain (e.g. "robinconnect.com").
// Either may be empty.
func NewClassifier(host, domain string, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		host:   normalizeHost(host),
		domain: normalizeHost(domain),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the configured canonical host.
func (c *Classifier) Host() string { return c.host }

// Domain returns the configured custom domain.
func (c *Classifier) Domain() string { return c.domain }

// IsInternal reports whether raw navigates within the publication.
func (c *Classifier) IsInternal(raw string) bool {
	return c.Classify(raw) == Internal
}

// Classify returns Internal or External for raw. It never panics; absolute
// URLs that cannot be parsed are External.
func (c *Classifier) Classify(raw string) Classification {
	if raw == "" {
		return External
	}
	if strings.HasPrefix(raw, "//") {
		return c.Classify("https:" + raw)
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "?") {
		return Internal
	}
	if hasHTTPScheme(raw) {
		return c.classifyAbsolute(raw)
	}
	if c.foreignSchemesExternal && hasScheme(raw) {
		return External
	}
	return Internal
}

func (c *Classifier) classifyAbsolute(raw string) Classification {
	u, err := url.Parse(raw)
	if err != nil {
		return External
	}
	hostname := strings.ToLower(u.Hostname())
	if hostname == "" {
		return External
	}
	switch {
	case c.host != "" && hostname == c.host:
		return Internal
	case c.domain != "" && (hostname == c.domain || strings.HasSuffix(hostname, "."+c.domain)):
		return Internal
	case hostname == "localhost" || hostname == "127.0.0.1":
		return Internal
	}
	return External
}

func hasHTTPScheme(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// hasScheme reports whether raw starts with an RFC 3986 scheme followed by ':'.
func hasScheme(raw string) bool {
	for i, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		case i > 0 && r == ':':
			return true
		default:
			return false
		}
	}
	return false
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "https://")
	h = strings.TrimPrefix(h, "http://")
	return strings.TrimSuffix(h, "/")
}
