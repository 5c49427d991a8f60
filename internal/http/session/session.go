// Package session ties one signed cookie to one live cart view: a cart
// controller, an address flow and a checkout orchestrator that share a
// lifecycle. When a session is evicted its controller is closed, which
// cancels every pending debounce timer (arena-style teardown).
package session

import (
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ThuanNgcodelor/merier-cart/internal/http/sessioncookie"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/addresses"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/cart"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/checkout"
)

const idleTTL = 30 * time.Minute

type Session struct {
	ID       string
	Cart     *cart.Controller
	Flow     *addresses.Flow
	Checkout *checkout.Orchestrator
	Flashes  *FlashBuffer

	lastSeen time.Time
}

// Factory builds the per-session object graph. The flash buffer is created
// by the manager and handed in so it can be wired as the cart notifier.
type Factory func(id string, flashes *FlashBuffer) *Session

type Manager struct {
	codec   *sessioncookie.Codec
	factory Factory

	mu   sync.Mutex
	byID map[string]*Session
}

func NewManager(codec *sessioncookie.Codec, factory Factory) *Manager {
	return &Manager{codec: codec, factory: factory, byID: make(map[string]*Session)}
}

// Get returns the request's session, creating one (and setting the cookie)
// on first contact. Idle sessions are swept opportunistically.
func (m *Manager) Get(c *gin.Context) *Session {
	id, ok := m.codec.GetSessionID(c)
	if !ok {
		id = uuid.NewString()
		m.codec.Set(c, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()

	s, ok := m.byID[id]
	if !ok {
		flashes := &FlashBuffer{}
		s = m.factory(id, flashes)
		s.Flashes = flashes
		m.byID[id] = s
		log.Printf("session.Get: created session %s", id)
	}
	s.lastSeen = time.Now()
	return s
}

func (m *Manager) sweepLocked() {
	cutoff := time.Now().Add(-idleTTL)
	for id, s := range m.byID {
		if s.lastSeen.Before(cutoff) {
			s.Cart.Close()
			delete(m.byID, id)
			log.Printf("session.sweep: evicted idle session %s", id)
		}
	}
}

// Close tears down every live session (server shutdown).
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		s.Cart.Close()
		delete(m.byID, id)
	}
}
