package notify

import (
	"context"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// DefaultInboxSize is the number of undelivered notifications kept per session.
const DefaultInboxSize = 20

// Inbox buffers notifications until the UI drains them. When full, the
// oldest entry is dropped.
type Inbox struct {
	mu    sync.Mutex
	items []domain.Notification
	size  int
}

// NewInbox creates an inbox holding at most size notifications.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{size: size}
}

// Notify appends n, evicting the oldest entry if the inbox is full.
func (b *Inbox) Notify(_ context.Context, n domain.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == b.size {
		copy(b.items, b.items[1:])
		b.items = b.items[:len(b.items)-1]
	}
	b.items = append(b.items, n)
}

// Drain returns all pending notifications oldest first and empties the inbox.
func (b *Inbox) Drain() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.items
	b.items = nil
	if out == nil {
		out = []domain.Notification{}
	}
	return out
}

// Len returns the number of pending notifications.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
