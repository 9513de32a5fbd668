package notify

import (
	"context"
	"sync"
	"time"
)

// Board holds the single currently visible notification. A new notification
// replaces the visible one; each auto-dismiss timer only clears the
// notification it was started for.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Notification
	timer   *time.Timer
	closed  bool
}

// NewBoard returns a board that dismisses after ttl. A zero ttl keeps the
// notification until it is replaced.
func NewBoard(ttl time.Duration) *Board {
	return &Board{ttl: ttl}
}

func (b *Board) Notify(_ context.Context, n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.current = &n
	if b.ttl > 0 {
		id := n.ID
		b.timer = time.AfterFunc(b.ttl, func() { b.dismiss(id) })
	}
}

func (b *Board) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return Notification{}, false
	}
	return *b.current, true
}

// Dismiss clears the visible notification immediately.
func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

// Close stops the latest pending timer and ignores further notifications.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.current = nil
}

func (b *Board) dismiss(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current != nil && b.current.ID == id {
		b.current = nil
	}
}
