package pubtheme

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// OGPost is the payload of a social preview image request. It travels as
// base64 encoded JSON in the og query parameter; Author and Title are
// additionally URI-component encoded inside the JSON.
type OGPost struct {
	Author            string `json:"author"`
	Domain            string `json:"domain"`
	Title             string `json:"title"`
	ReadTime          int    `json:"readTime,omitempty"`
	Reactions         int    `json:"reactions,omitempty"`
	IsDefaultModeDark bool   `json:"isDefaultModeDark,omitempty"`
	BgColor           string `json:"bgcolor,omitempty"`
}

// Encode returns the og query parameter value for p.
func (p OGPost) Encode() string {
	p.Author = url.PathEscape(p.Author)
	p.Title = url.PathEscape(p.Title)
	b, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeOGPost parses an og query parameter value.
func DecodeOGPost(s string) (OGPost, error) {
	// "+" may arrive as a space when the parameter was not URL escaped.
	s = strings.ReplaceAll(s, " ", "+")
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "=")); err != nil {
			return OGPost{}, fmt.Errorf("decode og: %w", err)
		}
	}
	var p OGPost
	if err := json.Unmarshal(raw, &p); err != nil {
		return OGPost{}, fmt.Errorf("parse og: %w", err)
	}
	p.Author = unescapeComponent(p.Author)
	p.Title = unescapeComponent(p.Title)
	return p, nil
}

func unescapeComponent(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

// TitleSize returns the title font size in pixels for a preview image.
// Longer titles are drawn smaller.
func TitleSize(title string) float64 {
	switch n := utf8.RuneCountInString(title); {
	case n <= 79:
		return 72
	case n <= 109:
		return 60
	default:
		return 48
	}
}
