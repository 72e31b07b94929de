package links

import "github.com/PuerkitoBio/goquery"

const (
	// ClientLinkAttr marks anchors whose navigation is handled by the
	// application's own router. Such anchors are never intercepted.
	ClientLinkAttr = "data-client-link"
	// ProcessedAttr marks anchors already handled by Sweep.
	ProcessedAttr = "data-smart-link-processed"
)

// Opener opens url in a new browsing context with the given window features.
type Opener interface {
	Open(url, features string)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url, features string)

// Open implements Opener.
func (f OpenerFunc) Open(url, features string) { f(url, features) }

// Interceptor applies link classification at click time to anchors that were
// not rewritten ahead of time.
type Interceptor struct {
	classifier *Classifier
	opener     Opener
}

// NewInterceptor returns an Interceptor opening external links through o.
func NewInterceptor(c *Classifier, o Opener) *Interceptor {
	return &Interceptor{classifier: c, opener: o}
}

// Attach registers the interceptor on d for as long as the caller holds it.
// The returned release function detaches it and is safe to call repeatedly.
//
//	release := interceptor.Attach(doc)
//	defer release()
func (i *Interceptor) Attach(d *Document) (release func()) {
	return d.AddClickListener(i.HandleClick)
}

// HandleClick is the click listener. External links get their default
// navigation cancelled and are opened in a new, unreferenced context.
func (i *Interceptor) HandleClick(ev *ClickEvent) {
	if ev.Target == nil {
		return
	}
	link := ev.Target.Closest("a[href]")
	if link.Length() == 0 {
		return
	}
	href, _ := link.Attr("href")
	if href == "" {
		return
	}
	if _, routed := link.Attr(ClientLinkAttr); routed {
		return
	}
	if target, _ := link.Attr("target"); target == TargetBlank {
		return
	}
	if i.classifier.IsInternal(href) {
		return
	}
	ev.PreventDefault()
	i.opener.Open(href, OpenFeatures)
}

// Sweep walks every anchor currently in d and applies external-link
// attributes once. Anchors routed by the application or already swept are
// skipped, so repeated sweeps are no-ops. It returns the number of anchors
// processed by this call.
func Sweep(d *Document, c *Classifier) int {
	n := 0
	d.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		if _, routed := s.Attr(ClientLinkAttr); routed {
			return
		}
		if _, done := s.Attr(ProcessedAttr); done {
			return
		}
		if !c.IsInternal(href) {
			s.SetAttr("target", TargetBlank)
			s.SetAttr("rel", RelNoOpener)
		}
		s.SetAttr(ProcessedAttr, "true")
		n++
	})
	return n
}
