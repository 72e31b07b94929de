package links

const (
	// TargetBlank opens a link in a new browsing context.
	TargetBlank = "_blank"
	// RelNoOpener severs the opener and referrer of a new browsing context.
	RelNoOpener = "noopener noreferrer"
	// OpenFeatures is the window feature string used when a click on an
	// external link is intercepted.
	OpenFeatures = "noopener,noreferrer"
)

// Attributes are the navigation attributes an anchor should carry.
// The zero value means "no target, no rel".
type Attributes struct {
	Target string
	Rel    string
}

// IsZero reports whether no attribute is set.
func (a Attributes) IsZero() bool {
	return a.Target == "" && a.Rel == ""
}

// LinkProps is an href together with its derived attributes.
type LinkProps struct {
	Href string
	Attributes
}

// External reports whether the props open a new browsing context.
func (p LinkProps) External() bool {
	return p.Target == TargetBlank
}

// AttributesFor derives anchor attributes from a classification alone.
func AttributesFor(c Classification) Attributes {
	if c == Internal {
		return Attributes{}
	}
	return Attributes{Target: TargetBlank, Rel: RelNoOpener}
}

// Attributes derives the anchor attributes for raw.
func (c *Classifier) Attributes(raw string) Attributes {
	return AttributesFor(c.Classify(raw))
}

// LinkProps returns raw with its derived attributes.
func (c *Classifier) LinkProps(raw string) LinkProps {
	return LinkProps{Href: raw, Attributes: c.Attributes(raw)}
}
