package comments_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubtheme/comments"
)

// Ensure HTMLContainer implements comments.Container at compile time.
var _ comments.Container = (*comments.HTMLContainer)(nil)

type fakeContainer struct {
	ops        []string
	script     comments.Script
	frame      comments.Frame
	fallback   *comments.Fallback
	scriptLoad func()
	scriptFail func()
	frameLoad  func()
	frameFail  func()
	content    bool
}

func (c *fakeContainer) Clear() {
	c.ops = append(c.ops, "clear")
	c.content = false
	c.fallback = nil
}

func (c *fakeContainer) InjectScript(s comments.Script, onLoad, onError func()) {
	c.ops = append(c.ops, "script")
	c.script, c.scriptLoad, c.scriptFail = s, onLoad, onError
}

func (c *fakeContainer) InjectFrame(f comments.Frame, onLoad, onError func()) {
	c.ops = append(c.ops, "frame")
	c.frame, c.frameLoad, c.frameFail = f, onLoad, onError
}

func (c *fakeContainer) HasContent() bool { return c.content }

func (c *fakeContainer) ShowFallback(f comments.Fallback) {
	c.ops = append(c.ops, "fallback")
	c.fallback = &f
}

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) comments.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every pending timer, including stopped ones when force is set,
// to simulate a callback racing with cancellation.
func (c *fakeClock) fire(force bool) {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, t := range timers {
		if force || !t.stopped {
			t.f()
		}
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

var testEndpoints = comments.Endpoints{Host: "robinconnect.hashnode.dev"}

var hello = comments.Subject{ID: "p1", Slug: "hello"}

func quietLogger() *log.Logger {
	lg := log.New("test")
	lg.SetOutput(io.Discard)
	return lg
}

func newTestLoader(t *testing.T, subject comments.Subject, opts ...comments.Option) (*comments.Loader, *fakeContainer, *fakeClock) {
	t.Helper()
	c := &fakeContainer{}
	clock := &fakeClock{}
	opts = append([]comments.Option{comments.WithClock(clock), comments.WithLogger(quietLogger())}, opts...)
	return comments.NewLoader(testEndpoints, c, subject, opts...), c, clock
}

func TestLoader_FullFallbackChainAndRetry(t *testing.T) {
	t.Parallel()

	l, c, _ := newTestLoader(t, hello)
	l.Start()

	assert.Equal(t, comments.Loading, l.Status())
	assert.Equal(t, []string{"clear", "script"}, c.ops)
	assert.Equal(t, comments.Script{
		Src:  comments.DefaultScriptURL,
		ID:   "hashnode-comments-p1",
		Host: "robinconnect.hashnode.dev",
		Slug: "hello",
	}, c.script)

	c.scriptFail()
	assert.Equal(t, comments.Loading, l.Status())
	assert.Equal(t, "https://robinconnect.hashnode.dev/embed/comments/hello", c.frame.Src)

	c.frameFail()
	assert.Equal(t, comments.Error, l.Status())
	require.NotNil(t, c.fallback)
	assert.Equal(t, "https://robinconnect.hashnode.dev/hello#comments", c.fallback.DiscussionURL)
	assert.True(t, c.fallback.CanRetry)
	assert.Equal(t, []string{"clear", "script", "clear", "frame", "clear", "fallback"}, c.ops)

	require.True(t, c.fallback.Retry())
	assert.Equal(t, 1, l.Retries())
	assert.Equal(t, comments.Loading, l.Status())
	assert.Equal(t, "script", c.ops[len(c.ops)-1])

	c.scriptFail()
	c.frameFail()
	require.NotNil(t, c.fallback)
	assert.True(t, c.fallback.CanRetry)
	require.True(t, l.Retry())
	assert.Equal(t, 2, l.Retries())

	c.scriptFail()
	c.frameFail()
	assert.Equal(t, comments.Error, l.Status())
	require.NotNil(t, c.fallback)
	assert.False(t, c.fallback.CanRetry)
	assert.Equal(t, 2, c.fallback.Retries)
	assert.False(t, l.CanRetry())
	assert.False(t, l.Retry())
	assert.Equal(t, 2, l.Retries())
}

func TestLoader_ScriptRendersContent(t *testing.T) {
	t.Parallel()

	l, c, clock := newTestLoader(t, hello)
	l.Start()
	c.scriptLoad()

	assert.Equal(t, comments.Loading, l.Status(), "waits for the grace interval")
	assert.Equal(t, 1, clock.pending())

	c.content = true
	clock.fire(false)

	assert.Equal(t, comments.Loaded, l.Status())
	assert.NotContains(t, c.ops, "frame")
}

func TestLoader_ScriptLoadsWithoutContent(t *testing.T) {
	t.Parallel()

	l, c, clock := newTestLoader(t, hello)
	l.Start()
	c.scriptLoad()
	clock.fire(false)

	assert.Equal(t, comments.Loading, l.Status())
	assert.Equal(t, []string{"clear", "script", "clear", "frame"}, c.ops)

	c.frameLoad()
	assert.Equal(t, comments.Loaded, l.Status())
	assert.False(t, l.CanRetry())
}

func TestLoader_DuplicateCallbacksIgnored(t *testing.T) {
	t.Parallel()

	l, c, clock := newTestLoader(t, hello)
	l.Start()
	scriptLoad, scriptFail := c.scriptLoad, c.scriptFail
	scriptFail()
	scriptLoad()
	scriptFail()

	assert.Zero(t, clock.pending())
	assert.Equal(t, []string{"clear", "script", "clear", "frame"}, c.ops)

	c.frameLoad()
	c.frameFail()
	assert.Equal(t, comments.Loaded, l.Status())
	assert.Nil(t, c.fallback)
}

func TestLoader_StaleCallbacksAfterSubjectChange(t *testing.T) {
	t.Parallel()

	l, c, clock := newTestLoader(t, hello)
	l.Start()
	c.scriptFail()
	c.frameFail()
	require.True(t, l.Retry())
	oldLoad := c.scriptLoad
	oldFail := c.scriptFail

	l.SetSubject(comments.Subject{ID: "p2", Slug: "second"})
	assert.Zero(t, l.Retries(), "new subject resets the retry counter")
	assert.Equal(t, "second", c.script.Slug)
	opsBefore := len(c.ops)

	oldLoad()
	oldFail()
	clock.fire(true)

	assert.Len(t, c.ops, opsBefore)
	assert.Equal(t, comments.Loading, l.Status())
}

func TestLoader_CloseCancelsTimerAndIgnoresLateCallbacks(t *testing.T) {
	t.Parallel()

	l, c, clock := newTestLoader(t, hello)
	l.Start()
	c.scriptLoad()
	require.Equal(t, 1, clock.pending())

	l.Close()
	assert.Zero(t, clock.pending())
	assert.Equal(t, "clear", c.ops[len(c.ops)-1])
	opsBefore := len(c.ops)

	c.content = true
	clock.fire(true)
	c.scriptFail()

	assert.Len(t, c.ops, opsBefore)
	assert.NotEqual(t, comments.Loaded, l.Status())

	l.Start()
	assert.Len(t, c.ops, opsBefore, "a closed loader cannot be restarted")
}

func TestLoader_NoSubjectIsNoop(t *testing.T) {
	t.Parallel()

	l, c, _ := newTestLoader(t, comments.Subject{})
	l.Start()

	assert.Empty(t, c.ops)
	assert.False(t, l.Retry())
}

func TestLoader_SetEmptySubjectTearsDown(t *testing.T) {
	t.Parallel()

	l, c, clock := newTestLoader(t, hello)
	l.Start()
	c.scriptLoad()

	l.SetSubject(comments.Subject{})
	assert.Zero(t, clock.pending())
	assert.Equal(t, "clear", c.ops[len(c.ops)-1])
}

func TestLoader_WithRetriesClamps(t *testing.T) {
	t.Parallel()

	l, c, _ := newTestLoader(t, hello, comments.WithRetries(5))
	assert.Equal(t, comments.MaxRetries, l.Retries())

	l.Start()
	c.scriptFail()
	c.frameFail()
	require.NotNil(t, c.fallback)
	assert.False(t, c.fallback.CanRetry)

	l2, _, _ := newTestLoader(t, hello, comments.WithRetries(-1))
	assert.Zero(t, l2.Retries())
}

func TestLoader_ObserverSeesTransitions(t *testing.T) {
	t.Parallel()

	var seen []comments.Status
	l, c, _ := newTestLoader(t, hello, comments.WithObserver(func(s comments.Subject, st comments.Status) {
		assert.Equal(t, "hello", s.Slug)
		seen = append(seen, st)
	}))
	l.Start()
	c.scriptFail()
	c.frameFail()
	l.Retry()
	c.scriptFail()
	c.frameLoad()

	assert.Equal(t, []comments.Status{comments.Loading, comments.Error, comments.Loading, comments.Loaded}, seen)
}

func TestLoader_Wait(t *testing.T) {
	t.Parallel()

	l, c, _ := newTestLoader(t, hello)
	l.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st, err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, comments.Loading, st)

	done := make(chan comments.Status)
	go func() {
		st, _ := l.Wait(context.Background())
		done <- st
	}()
	c.scriptFail()
	c.frameFail()

	select {
	case st := <-done:
		assert.Equal(t, comments.Error, st)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the chain ended")
	}

	l.Close()
	_, err = l.Wait(context.Background())
	assert.ErrorIs(t, err, comments.ErrClosed)
}

func TestLoader_WaitCoversQueuedRetry(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	l, c, _ := newTestLoader(t, hello, comments.WithObserver(func(_ comments.Subject, st comments.Status) {
		if st != comments.Error {
			return
		}
		once.Do(func() {
			close(entered)
			<-release
		})
	}))
	l.Start()
	c.scriptFail()

	// The failing iframe callback holds the queue while the observer blocks.
	fail := c.frameFail
	drained := make(chan struct{})
	go func() {
		fail()
		close(drained)
	}()
	<-entered

	require.True(t, l.Retry())
	done := make(chan comments.Status, 1)
	go func() {
		st, _ := l.Wait(context.Background())
		done <- st
	}()

	select {
	case st := <-done:
		t.Fatalf("Wait returned %v before the queued retry ran", st)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-drained
	assert.Equal(t, 1, l.Retries())
	assert.Equal(t, comments.Loading, l.Status())

	c.scriptFail()
	c.frameFail()
	select {
	case st := <-done:
		assert.Equal(t, comments.Error, st)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the retried chain ended")
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "loading", comments.Loading.String())
	assert.Equal(t, "loaded", comments.Loaded.String())
	assert.Equal(t, "error", comments.Error.String())
	assert.False(t, comments.Loading.Terminal())
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	e := comments.Endpoints{Host: "https://blog.example.dev/"}
	assert.Equal(t, "https://blog.example.dev/embed/comments/a%20b", e.FrameURL("a b"))
	assert.Equal(t, "https://blog.example.dev/hello#comments", e.DiscussionURL("hello"))
}
