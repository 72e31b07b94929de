package content

import (
	"errors"
	"strings"
)

// ErrEmptyGroup is returned by NewNavGroup for a group without children.
var ErrEmptyGroup = errors.New("content: navigation group has no children")

// NavItem is a header navigation entry: either a NavLink or a NavGroup.
type NavItem interface {
	navItem()
	// Title is the label shown in the menu.
	Title() string
	// Href is the destination of the entry itself.
	Href() string
}

// NavLink is a plain navigation entry.
type NavLink struct {
	Label string `yaml:"label" validate:"required"`
	URL   string `yaml:"url" validate:"required"`
}

func (NavLink) navItem() {}
func (l NavLink) Title() string { return l.Label }
func (l NavLink) Href() string { return l.URL }

// NavGroup is a navigation entry with a sub-menu. It always has at least one
// child; build it with NewNavGroup.
type NavGroup struct {
	Label    string
	URL      string
	children []NavLink
}

// NewNavGroup returns a group holding children.
func NewNavGroup(label, url string, children []NavLink) (NavGroup, error) {
	if len(children) == 0 {
		return NavGroup{}, ErrEmptyGroup
	}
	return NavGroup{Label: label, URL: url, children: append([]NavLink(nil), children...)}, nil
}

func (NavGroup) navItem() {}
func (g NavGroup) Title() string { return g.Label }
func (g NavGroup) Href() string { return g.URL }

// Children returns a copy of the sub-menu entries.
func (g NavGroup) Children() []NavLink {
	return append([]NavLink(nil), g.children...)
}

// BuildNavigation turns Hashnode navbar items into navigation entries. Items
// without a URL are dropped. An item whose label has configured sub-menu
// entries becomes a NavGroup; labels match case-insensitively.
func BuildNavigation(items []NavbarItem, submenus map[string][]NavLink) []NavItem {
	byLabel := make(map[string][]NavLink, len(submenus))
	for label, children := range submenus {
		byLabel[normalizeLabel(label)] = children
	}
	out := make([]NavItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.URL) == "" {
			continue
		}
		if children := byLabel[normalizeLabel(it.Label)]; len(children) > 0 {
			if g, err := NewNavGroup(it.Label, it.URL, children); err == nil {
				out = append(out, g)
				continue
			}
		}
		out = append(out, NavLink{Label: it.Label, URL: it.URL})
	}
	return out
}

// SplitNavigation returns the first n items and the overflow shown under
// the "More" menu.
func SplitNavigation(items []NavItem, n int) (visible, more []NavItem) {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items, nil
	}
	return items[:n], items[n:]
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
