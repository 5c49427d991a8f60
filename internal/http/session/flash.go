package session

import (
	"sync"

	"github.com/ThuanNgcodelor/merier-cart/pkg/view"
)

// FlashBuffer collects notices raised outside a request cycle (debounce
// settles fail in the background) until the next response drains them.
// It implements cart.Notifier.
type FlashBuffer struct {
	mu    sync.Mutex
	items []view.Flash
}

func (b *FlashBuffer) Notify(kind view.FlashKind, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, view.Flash{Kind: kind, Message: message})
}

func (b *FlashBuffer) Drain() []view.Flash {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}
