package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCenter_ExpiresAfterTTL(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(WithClock(clk.Now))

	c.Success("Task saved")
	n, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, KindSuccess, n.Kind)
	assert.Equal(t, "Task saved", n.Message)

	clk.Advance(DefaultTTL - time.Millisecond)
	_, ok = c.Current()
	assert.True(t, ok)

	clk.Advance(time.Millisecond)
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestCenter_NewestReplaces(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(WithClock(clk.Now))

	c.Success("first")
	first, _ := c.Current()
	clk.Advance(2 * time.Second)
	c.Error("second")

	n, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "second", n.Message)
	assert.Equal(t, KindError, n.Kind)
	assert.Greater(t, n.Seq, first.Seq)

	// The replacement gets its own full window.
	clk.Advance(2 * time.Second)
	_, ok = c.Current()
	assert.True(t, ok)

	// A stale dismissal for the first notification does nothing.
	c.DismissSeq(first.Seq)
	_, ok = c.Current()
	assert.True(t, ok)
}

func TestCenter_ManualDismiss(t *testing.T) {
	c := New()
	c.Error("boom")
	c.Dismiss()
	_, ok := c.Current()
	assert.False(t, ok)
	// Dismissing with nothing visible is fine.
	c.Dismiss()
}

func TestCenter_ListenerTimerExpiry(t *testing.T) {
	var mu sync.Mutex
	var events []bool
	done := make(chan struct{})
	c := New(WithTTL(20*time.Millisecond), WithListener(func(n Notification, visible bool) {
		mu.Lock()
		events = append(events, visible)
		mu.Unlock()
		if !visible {
			close(done)
		}
	}))
	defer c.Close()

	c.Success("saved")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected expiry callback")
	}
	mu.Lock()
	assert.Equal(t, []bool{true, false}, events)
	mu.Unlock()
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestCenter_CloseStopsTimers(t *testing.T) {
	c := New(WithTTL(time.Hour), WithListener(func(Notification, bool) {}))
	c.Success("pending")
	c.Close()
	c.Error("after close")
	_, ok := c.Current()
	assert.False(t, ok)
}
