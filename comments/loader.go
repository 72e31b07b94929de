package comments

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const (
	// MaxRetries bounds the manual retries offered after the chain is exhausted.
	MaxRetries = 2
	// DefaultGraceInterval is how long a loaded script gets to populate the
	// container before the iframe is tried.
	DefaultGraceInterval = 3 * time.Second
)

// ErrClosed is returned by Wait once the Loader has been torn down.
var ErrClosed = errors.New("comments: loader closed")

type stage int

const (
	stageIdle stage = iota
	stageScript
	stageFrame
	stageDone
)

// Loader drives one widget instance through the fallback chain.
//
// All state transitions run on an internal serial queue: a callback fired
// while another transition is running is queued behind it, never run
// concurrently. Callbacks carry the generation that issued them and are
// dropped once the Loader has moved on to a newer attempt, a new subject, or
// been closed.
type Loader struct {
	id        string
	endpoints Endpoints
	container Container
	clock     Clock
	grace     time.Duration
	logger    echo.Logger
	observer  func(Subject, Status)

	qmu      sync.Mutex
	queue    []func()
	draining bool

	mu      sync.Mutex
	subject Subject
	status  Status
	retries int
	gen     uint64
	stage   stage
	timer   Timer
	closed  bool
	pending int // queued Start/Retry requests not yet run
	changed chan struct{}
	notes   []Status
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock replaces the wall clock used for the grace interval.
func WithClock(c Clock) Option {
	return func(l *Loader) { l.clock = c }
}

// WithGraceInterval overrides DefaultGraceInterval.
func WithGraceInterval(d time.Duration) Option {
	return func(l *Loader) { l.grace = d }
}

// WithLogger sets the logger stage transitions are reported to.
func WithLogger(lg echo.Logger) Option {
	return func(l *Loader) { l.logger = lg }
}

// WithObserver registers fn to be called after every status change.
func WithObserver(fn func(Subject, Status)) Option {
	return func(l *Loader) { l.observer = fn }
}

// WithRetries starts the Loader with n retries already spent, clamped to
// [0, MaxRetries]. Used when the instance is recreated for a retry.
func WithRetries(n int) Option {
	return func(l *Loader) {
		l.retries = min(max(n, 0), MaxRetries)
	}
}

// NewLoader returns a Loader mounting the widget for subject into c.
// Nothing happens until Start is called.
func NewLoader(e Endpoints, c Container, subject Subject, opts ...Option) *Loader {
	l := &Loader{
		id:        uuid.NewString(),
		endpoints: e.withDefaults(),
		container: c,
		clock:     wallClock{},
		grace:     DefaultGraceInterval,
		subject:   subject,
		changed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New("comments")
	}
	return l
}

// ID identifies this instance in logs.
func (l *Loader) ID() string { return l.id }

// Start begins (or restarts) the fallback chain for the current subject.
// A Loader without a subject does nothing.
func (l *Loader) Start() {
	l.request(l.activate)
}

// Retry restarts the chain after it ended in Error, as long as fewer than
// MaxRetries retries have been spent. It reports whether a retry was accepted.
func (l *Loader) Retry() bool {
	if !l.CanRetry() {
		return false
	}
	l.request(func() {
		if l.closed || l.status != Error || l.retries >= MaxRetries {
			return
		}
		l.retries++
		l.activate()
	})
	return true
}

// request queues fn like step, but until fn has run Wait does not report the
// outcome of an earlier attempt.
func (l *Loader) request(fn func()) {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()
	l.step(func() {
		l.pending--
		fn()
		if l.pending == 0 {
			l.broadcast()
		}
	})
}

// SetSubject rebinds the Loader to s. The running attempt is abandoned, the
// retry counter is reset and, if s is not empty, the chain starts over.
func (l *Loader) SetSubject(s Subject) {
	l.step(func() {
		if l.closed || s == l.subject {
			return
		}
		l.subject = s
		l.retries = 0
		if s.IsZero() {
			l.teardown()
			return
		}
		l.activate()
	})
}

// Close tears the instance down: pending timers are stopped, the container is
// cleared and every outstanding callback becomes a no-op.
func (l *Loader) Close() {
	l.step(func() {
		if l.closed {
			return
		}
		l.teardown()
		l.closed = true
		l.broadcast()
	})
}

// Status returns the current status.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Retries returns how many retries have been spent.
func (l *Loader) Retries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retries
}

// CanRetry reports whether Retry would be accepted now.
func (l *Loader) CanRetry() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && l.status == Error && l.retries < MaxRetries
}

// Subject returns the subject the Loader is bound to.
func (l *Loader) Subject() Subject {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subject
}

// Wait blocks until the current attempt reaches Loaded or Error, the Loader
// is closed, or ctx is done. A Start or Retry issued before Wait is always
// waited for, even while it is still queued.
func (l *Loader) Wait(ctx context.Context) (Status, error) {
	for {
		l.mu.Lock()
		st, ch, closed := l.status, l.changed, l.closed
		settled := l.stage != stageIdle && l.pending == 0
		l.mu.Unlock()

		switch {
		case closed:
			return st, ErrClosed
		case st.Terminal() && settled:
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// step runs fn on the serial queue with l.mu held, then notifies the
// observer of the status changes fn made.
func (l *Loader) step(fn func()) {
	l.post(func() {
		l.mu.Lock()
		fn()
		notes, subject := l.notes, l.subject
		l.notes = nil
		l.mu.Unlock()

		if l.observer != nil {
			for _, st := range notes {
				l.observer(subject, st)
			}
		}
	})
}

func (l *Loader) post(fn func()) {
	l.qmu.Lock()
	l.queue = append(l.queue, fn)
	if l.draining {
		l.qmu.Unlock()
		return
	}
	l.draining = true
	for len(l.queue) > 0 {
		next := l.queue[0]
		l.queue = l.queue[1:]
		l.qmu.Unlock()
		next()
		l.qmu.Lock()
	}
	l.draining = false
	l.qmu.Unlock()
}

// callback wraps fn so it only runs while gen is still the live attempt.
func (l *Loader) callback(gen uint64, fn func()) func() {
	return func() {
		l.step(func() {
			if l.closed || gen != l.gen {
				return
			}
			fn()
		})
	}
}

func (l *Loader) activate() {
	if l.closed || l.subject.IsZero() {
		return
	}
	l.stopTimer()
	l.gen++
	gen := l.gen
	l.stage = stageScript
	l.setStatus(Loading)
	l.container.Clear()

	l.logger.Infof("comments[%s]: loading widget for %q on %s (attempt %d)",
		l.id, l.subject.Slug, l.endpoints.Host, l.retries+1)
	l.container.InjectScript(Script{
		Src:  l.endpoints.ScriptURL,
		ID:   "hashnode-comments-" + l.subject.ID,
		Host: l.endpoints.Host,
		Slug: l.subject.Slug,
	}, l.callback(gen, func() { l.scriptLoaded(gen) }), l.callback(gen, l.scriptFailed))
}

func (l *Loader) scriptLoaded(gen uint64) {
	if l.stage != stageScript {
		return
	}
	l.logger.Debugf("comments[%s]: script loaded, waiting %s for content", l.id, l.grace)
	l.stopTimer()
	l.timer = l.clock.AfterFunc(l.grace, l.callback(gen, l.graceElapsed))
}

func (l *Loader) graceElapsed() {
	l.timer = nil
	if l.stage != stageScript {
		return
	}
	if l.container.HasContent() {
		l.logger.Infof("comments[%s]: widget rendered content", l.id)
		l.stage = stageDone
		l.setStatus(Loaded)
		return
	}
	l.logger.Infof("comments[%s]: script loaded but rendered nothing, trying iframe", l.id)
	l.tryFrame()
}

func (l *Loader) scriptFailed() {
	if l.stage != stageScript {
		return
	}
	l.logger.Warnf("comments[%s]: embed script failed, trying iframe", l.id)
	l.stopTimer()
	l.tryFrame()
}

func (l *Loader) tryFrame() {
	l.stage = stageFrame
	l.container.Clear()
	gen := l.gen
	l.container.InjectFrame(Frame{Src: l.endpoints.FrameURL(l.subject.Slug)},
		l.callback(gen, l.frameLoaded), l.callback(gen, l.frameFailed))
}

func (l *Loader) frameLoaded() {
	if l.stage != stageFrame {
		return
	}
	l.logger.Infof("comments[%s]: iframe loaded", l.id)
	l.stage = stageDone
	l.setStatus(Loaded)
}

func (l *Loader) frameFailed() {
	if l.stage != stageFrame {
		return
	}
	l.logger.Warnf("comments[%s]: iframe failed, showing discussion link", l.id)
	l.stage = stageDone
	l.container.Clear()
	l.setStatus(Error)
	l.container.ShowFallback(Fallback{
		DiscussionURL: l.endpoints.DiscussionURL(l.subject.Slug),
		Retries:       l.retries,
		CanRetry:      l.retries < MaxRetries,
		Retry:         l.Retry,
	})
}

// teardown abandons the current attempt.
func (l *Loader) teardown() {
	l.stopTimer()
	l.gen++
	l.stage = stageIdle
	l.container.Clear()
	l.setStatus(Loading)
}

func (l *Loader) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Loader) setStatus(s Status) {
	l.status = s
	l.notes = append(l.notes, s)
	l.broadcast()
}

func (l *Loader) broadcast() {
	close(l.changed)
	l.changed = make(chan struct{})
}
