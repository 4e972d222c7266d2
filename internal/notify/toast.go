package notify

import (
	"strings"
	"sync"
	"time"
)

// ToastTTL is the fixed auto-dismiss delay.
const ToastTTL = 3 * time.Second

// Center keeps one transient toast per session. Publishing sets the message
// and schedules its dismissal three seconds later. Dismiss timers are never
// cancelled: a toast published while another is still visible replaces the
// text but the earlier dismissal still applies, and dismissing an already
// hidden toast is a no-op. This matches the behaviour of stacked one-shot
// hide timers.
type Center struct {
	mu     sync.Mutex
	clock  func() time.Time
	toasts map[string]entry
}

type entry struct {
	message  string
	hiddenAt time.Time
}

// NewCenter constructs a Center. A nil clock uses time.Now.
func NewCenter(clock func() time.Time) *Center {
	if clock == nil {
		clock = time.Now
	}
	return &Center{clock: clock, toasts: map[string]entry{}}
}

// Publish shows a toast for the session. If a toast is already visible its
// text is replaced but its pending dismissal keeps the earlier deadline.
func (c *Center) Publish(key, message string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.toasts[key]; ok && now.Before(cur.hiddenAt) {
		c.toasts[key] = entry{message: message, hiddenAt: cur.hiddenAt}
		return
	}
	c.toasts[key] = entry{message: message, hiddenAt: now.Add(ToastTTL)}
}

// Current returns the visible toast for the session, if any. An elapsed toast
// is cleared on read.
func (c *Center) Current(key string) (string, bool) {
	key = strings.TrimSpace(key)
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.toasts[key]
	if !ok {
		return "", false
	}
	if !now.Before(cur.hiddenAt) {
		delete(c.toasts, key)
		return "", false
	}
	return cur.message, true
}
