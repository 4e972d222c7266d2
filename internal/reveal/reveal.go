package reveal

import (
	"strings"
	"sync"
)

// Threshold is the viewport visibility ratio at which an element is revealed.
// It is surfaced to the client-side observer via template data.
const Threshold = 0.15

// Tracker records which reveal-animated elements a session has already seen.
// Marking is one-shot: once an element has been revealed it stays revealed and
// is never re-hidden on scroll-out. Re-observing an already visible element is
// a harmless no-op.
type Tracker struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{}
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: map[string]map[string]struct{}{}}
}

// Mark records the given element keys as visible for the session.
func (t *Tracker) Mark(sessionKey string, keys ...string) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.seen[sessionKey]
	if !ok {
		set = map[string]struct{}{}
		t.seen[sessionKey] = set
	}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		set[k] = struct{}{}
	}
}

// Visible reports whether the element has already been revealed.
func (t *Tracker) Visible(sessionKey, key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set, ok := t.seen[strings.TrimSpace(sessionKey)]
	if !ok {
		return false
	}
	_, ok = set[strings.TrimSpace(key)]
	return ok
}
