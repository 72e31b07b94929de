package pubtheme

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eringen/pubtheme/content"
)

// ErrNotFound is returned when a requested publication or post does not exist.
var ErrNotFound = content.ErrNotFound

// ContentCache is an in-memory TTL cache in front of a content.Source.
// The publication and the post list are cached together; single posts are
// cached per slug. Comments are never cached.
type ContentCache struct {
	source content.Source
	ttl    time.Duration
	first  int
	now    func() time.Time

	mu      sync.RWMutex
	pub     *content.Publication
	posts   []content.Post
	fetched time.Time

	postMu sync.Mutex
	bySlug map[string]cachedPost
}

type cachedPost struct {
	post    content.Post
	fetched time.Time
}

// NewContentCache creates a ContentCache listing up to first posts.
func NewContentCache(s content.Source, ttl time.Duration, first int) *ContentCache {
	return &ContentCache{
		source: s,
		ttl:    ttl,
		first:  first,
		now:    time.Now,
		bySlug: make(map[string]cachedPost),
	}
}

func (c *ContentCache) valid() bool {
	return c.pub != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.pub = nil
	c.posts = nil
	c.mu.Unlock()

	c.postMu.Lock()
	c.bySlug = make(map[string]cachedPost)
	c.postMu.Unlock()
}

func (c *ContentCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	pub, err := c.source.Publication(ctx)
	if err != nil {
		return err
	}
	posts, err := c.source.Posts(ctx, c.first)
	if err != nil {
		return err
	}
	c.pub = &pub
	c.posts = posts
	c.fetched = c.now()
	return nil
}

// ensureLoaded returns the cached publication and posts after ensuring the
// cache is fresh. It tries a read lock first; only takes a write lock if a
// reload is needed.
func (c *ContentCache) ensureLoaded(ctx context.Context) (content.Publication, []content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		pub, posts := *c.pub, c.posts
		c.mu.RUnlock()
		return pub, posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return content.Publication{}, nil, err
	}
	return *c.pub, c.posts, nil
}

// Publication implements content.Source.
func (c *ContentCache) Publication(ctx context.Context) (content.Publication, error) {
	pub, _, err := c.ensureLoaded(ctx)
	return pub, err
}

// Posts implements content.Source. Requests for more posts than the cache
// holds go to the source.
func (c *ContentCache) Posts(ctx context.Context, first int) ([]content.Post, error) {
	if first > c.first {
		return c.source.Posts(ctx, first)
	}
	_, posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if first >= 0 && first < len(posts) {
		posts = posts[:first]
	}
	return posts, nil
}

// Post implements content.Source. Listed posts are served from the list;
// others are fetched and cached by slug.
func (c *ContentCache) Post(ctx context.Context, slug string) (content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		for _, p := range c.posts {
			if p.Slug == slug {
				c.mu.RUnlock()
				return p, nil
			}
		}
	}
	c.mu.RUnlock()

	c.postMu.Lock()
	cp, ok := c.bySlug[slug]
	c.postMu.Unlock()
	if ok && c.now().Sub(cp.fetched) < c.ttl {
		return cp.post, nil
	}

	post, err := c.source.Post(ctx, slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.postMu.Lock()
			delete(c.bySlug, slug)
			c.postMu.Unlock()
		}
		return content.Post{}, err
	}
	c.postMu.Lock()
	c.bySlug[slug] = cachedPost{post: post, fetched: c.now()}
	c.postMu.Unlock()
	return post, nil
}

// Comments implements content.Source.
func (c *ContentCache) Comments(ctx context.Context, slug string, first int) ([]content.Comment, error) {
	return c.source.Comments(ctx, slug, first)
}
