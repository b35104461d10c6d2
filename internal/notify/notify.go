// Package notify implements the single transient toast shown to the user.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

type Notification struct {
	Seq       uint64
	Kind      Kind
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notifier is what producers (loads, mutations) depend on.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Center holds at most one visible notification. A new one replaces the
// current one; each expires after the TTL unless dismissed earlier.
type Center struct {
	ttl      time.Duration
	now      func() time.Time
	onChange func(n Notification, visible bool)

	mu     sync.Mutex
	seq    uint64
	cur    *Notification
	timer  *time.Timer
	closed bool
}

type Option func(*Center)

func WithTTL(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// WithListener registers a callback for show/expire transitions. When set,
// expiry is driven by a timer instead of lazily in Current.
func WithListener(fn func(n Notification, visible bool)) Option {
	return func(c *Center) { c.onChange = fn }
}

func New(opts ...Option) *Center {
	c := &Center{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Center) Success(msg string) { c.show(KindSuccess, msg) }
func (c *Center) Error(msg string)   { c.show(KindError, msg) }

func (c *Center) show(kind Kind, msg string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	now := c.now()
	n := Notification{Seq: c.seq, Kind: kind, Message: msg, CreatedAt: now, ExpiresAt: now.Add(c.ttl)}
	c.cur = &n
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.onChange != nil {
		seq := n.Seq
		c.timer = time.AfterFunc(c.ttl, func() { c.expire(seq) })
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(n, true)
	}
}

func (c *Center) expire(seq uint64) {
	c.mu.Lock()
	if c.cur == nil || c.cur.Seq != seq {
		c.mu.Unlock()
		return
	}
	n := *c.cur
	c.cur = nil
	c.timer = nil
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(n, false)
	}
}

// Current returns the visible notification, if any.
func (c *Center) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return Notification{}, false
	}
	if !c.now().Before(c.cur.ExpiresAt) {
		c.cur = nil
		return Notification{}, false
	}
	return *c.cur, true
}

// Dismiss hides the current notification.
func (c *Center) Dismiss() {
	c.mu.Lock()
	if c.cur == nil {
		c.mu.Unlock()
		return
	}
	seq := c.cur.Seq
	c.mu.Unlock()
	c.DismissSeq(seq)
}

// DismissSeq hides the notification only if it is still the one with seq.
// A stale expiry for a replaced notification is a no-op.
func (c *Center) DismissSeq(seq uint64) {
	c.mu.Lock()
	if c.timer != nil && c.cur != nil && c.cur.Seq == seq {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.expire(seq)
}

// Close stops the pending timer. Later notifications are dropped.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cur = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
