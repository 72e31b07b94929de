package links

import (
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// ClickEvent is dispatched by Document.Click.
type ClickEvent struct {
	// Target is the element that was clicked, not necessarily an anchor.
	Target *goquery.Selection

	defaultPrevented bool
}

// PreventDefault cancels the default navigation of the event.
func (e *ClickEvent) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener cancelled default navigation.
func (e *ClickEvent) DefaultPrevented() bool { return e.defaultPrevented }

// ClickListener handles a dispatched click.
type ClickListener func(*ClickEvent)

type listenerEntry struct {
	id uint64
	fn ClickListener
}

// Document is a live HTML document with a document-level click listener
// registry. The listener registry is safe for concurrent use; the tree itself
// must be mutated from one goroutine at a time.
type Document struct {
	doc *goquery.Document

	mu        sync.Mutex
	listeners []listenerEntry
	nextID    uint64
}

// NewDocument parses a complete HTML document from r.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// ParseDocument parses a complete HTML document from s.
func ParseDocument(s string) (*Document, error) {
	return NewDocument(strings.NewReader(s))
}

// Find returns the elements of the document matching selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// HTML serializes the whole document, doctype included.
func (d *Document) HTML() (string, error) {
	return goquery.OuterHtml(d.doc.Selection)
}

// AddClickListener registers fn and returns a function removing it. The
// returned function may be called any number of times.
func (d *Document) AddClickListener(fn ClickListener) (remove func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.removeListener(id) })
	}
}

func (d *Document) removeListener(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered click listeners.
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// Click dispatches a click on target to every listener in registration order
// and returns the event so the caller can honor PreventDefault.
func (d *Document) Click(target *goquery.Selection) *ClickEvent {
	d.mu.Lock()
	listeners := make([]listenerEntry, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	ev := &ClickEvent{Target: target}
	for _, l := range listeners {
		l.fn(ev)
	}
	return ev
}
