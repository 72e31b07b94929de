package views

import (
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/links"
)

// Site holds everything the shared layout needs. Handlers build one per
// request so the theme and CSRF token reflect the visitor.
type Site struct {
	Name        string
	URL         string // canonical base, no trailing slash
	Description string
	Author      string
	Logo        string
	Dark        bool
	CSRFToken   string

	Nav         []content.NavItem
	Social      []content.NavLink
	CTA         content.NavLink // header call to action; empty label hides it
	Copyright   string
	FooterLinks []content.NavLink

	Links *links.Classifier
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
	JSONLD      string
}
