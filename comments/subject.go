// Package comments mounts the externally hosted comment widget for a post.
//
// A Loader walks an ordered fallback chain: the widget's embed script, then an
// iframe served by the publication host, then a static link to the discussion
// page. Each stage reports success or failure through callbacks; a Loader
// runs those callbacks one at a time and ignores any that were issued by a
// superseded attempt.
package comments

import (
	"net/url"
	"strings"
)

// DefaultScriptURL is the Hashnode comment embed script.
const DefaultScriptURL = "https://hashnode.com/utility/embed-comments.js"

// Status is the lifecycle state of a mounted widget.
type Status int

const (
	Loading Status = iota
	Loaded
	Error
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "loading"
	}
}

// Terminal reports whether s ends an attempt.
func (s Status) Terminal() bool {
	return s == Loaded || s == Error
}

// Subject is the post a widget is bound to.
type Subject struct {
	ID     string
	Slug   string
	Title  string
	Author string
}

// IsZero reports whether there is no subject to comment on.
func (s Subject) IsZero() bool {
	return s.ID == "" && s.Slug == ""
}

// Endpoints locates the external widget.
type Endpoints struct {
	// ScriptURL is the embed script (stage A).
	ScriptURL string
	// Host is the publication host serving the iframe embed (stage B) and
	// the discussion page (stage C).
	Host string
}

func (e Endpoints) withDefaults() Endpoints {
	if e.ScriptURL == "" {
		e.ScriptURL = DefaultScriptURL
	}
	e.Host = e.host()
	return e
}

func (e Endpoints) host() string {
	h := strings.TrimPrefix(strings.TrimPrefix(e.Host, "https://"), "http://")
	return strings.TrimSuffix(h, "/")
}

// FrameURL returns the iframe embed URL for slug.
func (e Endpoints) FrameURL(slug string) string {
	return "https://" + e.host() + "/embed/comments/" + url.PathEscape(slug)
}

// DiscussionURL returns the human-facing discussion URL for slug.
func (e Endpoints) DiscussionURL(slug string) string {
	return "https://" + e.host() + "/" + url.PathEscape(slug) + "#comments"
}
