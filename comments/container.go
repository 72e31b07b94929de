package comments

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Script is the stage A embed.
type Script struct {
	Src  string
	ID   string
	Host string
	Slug string
}

// Frame is the stage B embed.
type Frame struct {
	Src string
}

// Fallback is the stage C call to action.
type Fallback struct {
	DiscussionURL string
	// Retries is the number of retries spent before this fallback.
	Retries int
	// CanRetry reports whether a manual retry is still offered.
	CanRetry bool
	// Retry restarts the chain. It must not be called from inside a
	// Container method.
	Retry func() bool
}

// Container is the mount point of one widget instance. It is owned by a
// single Loader. Load and error callbacks may be invoked from any goroutine,
// at most one of them per injection.
type Container interface {
	// Clear removes everything previously injected and abandons pending loads.
	Clear()
	InjectScript(s Script, onLoad, onError func())
	InjectFrame(f Frame, onLoad, onError func())
	// HasContent reports whether the widget rendered anything besides the
	// injected script.
	HasContent() bool
	ShowFallback(f Fallback)
}

// ContainerID is the id of the element the widget mounts into.
const ContainerID = "hashnode-comments"

// HTMLContainer is a server-side Container. Injected embeds are written into
// an HTML element and their URLs are probed over HTTP: a 2xx response counts
// as a load, anything else as an error. Scripts are never executed, so the
// script stage can only succeed if the element gains content some other way.
type HTMLContainer struct {
	ctx      context.Context
	client   *http.Client
	retryURL func(attempt int) string

	mu     sync.Mutex
	doc    *goquery.Document
	root   *goquery.Selection
	cancel context.CancelFunc
}

// NewHTMLContainer returns an empty container. Probes are bound to ctx.
// retryURL builds the link of the retry button for the given attempt number;
// when nil no retry button is rendered.
func NewHTMLContainer(ctx context.Context, client *http.Client, retryURL func(attempt int) string) *HTMLContainer {
	if client == nil {
		client = http.DefaultClient
	}
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="` + ContainerID + `" class="min-h-[200px] w-full"></div>`))
	return &HTMLContainer{
		ctx:      ctx,
		client:   client,
		retryURL: retryURL,
		doc:      doc,
		root:     doc.Find("#" + ContainerID),
	}
}

// Clear implements Container.
func (c *HTMLContainer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.root.Empty()
}

// InjectScript implements Container.
func (c *HTMLContainer) InjectScript(s Script, onLoad, onError func()) {
	markup := fmt.Sprintf(`<script src="%s" async data-comments-widget="true" data-host="%s" data-slug="%s" id="%s"></script>`,
		html.EscapeString(s.Src), html.EscapeString(s.Host), html.EscapeString(s.Slug), html.EscapeString(s.ID))
	c.inject(markup, s.Src, onLoad, onError)
}

// InjectFrame implements Container.
func (c *HTMLContainer) InjectFrame(f Frame, onLoad, onError func()) {
	markup := fmt.Sprintf(`<iframe src="%s" loading="lazy" title="Comments" style="width:100%%;min-height:400px;border:none;border-radius:8px"></iframe>`,
		html.EscapeString(f.Src))
	c.inject(markup, f.Src, onLoad, onError)
}

func (c *HTMLContainer) inject(markup, probeURL string, onLoad, onError func()) {
	c.mu.Lock()
	c.root.AppendHtml(markup)
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		if c.probe(ctx, probeURL) {
			onLoad()
		} else {
			onError()
		}
	}()
}

func (c *HTMLContainer) probe(ctx context.Context, u string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// HasContent implements Container.
func (c *HTMLContainer) HasContent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root.Children().Length() > 1
}

// ShowFallback implements Container.
func (c *HTMLContainer) ShowFallback(f Fallback) {
	retry := ""
	if f.CanRetry && c.retryURL != nil {
		retry = c.retryURL(f.Retries + 1)
	}
	var buf bytes.Buffer
	_ = FallbackView(f.DiscussionURL, retry).Render(c.ctx, &buf)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.root.SetHtml(buf.String())
}

// HTML returns the container element and everything mounted in it.
func (c *HTMLContainer) HTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, err := goquery.OuterHtml(c.root)
	if err != nil {
		return ""
	}
	return out
}
