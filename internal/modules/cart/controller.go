package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ThuanNgcodelor/merier-cart/internal/shared/apperr"
	"github.com/ThuanNgcodelor/merier-cart/pkg/view"
)

// API is the remote cart service the controller writes through to. The
// server recomputes totals and enforces stock; the controller only caches.
type API interface {
	FetchCart(ctx context.Context) (Snapshot, error)
	UpdateQuantity(ctx context.Context, key LineKey, quantity int) error
	RemoveLine(ctx context.Context, lineID string) (bool, error)
}

// Notifier receives user-facing notices raised outside a request cycle
// (settle failures mostly). The HTTP layer drains them into flashes.
type Notifier interface {
	Notify(kind view.FlashKind, message string)
}

const (
	defaultBounceWindow = 100 * time.Millisecond
	defaultSettleWindow = 500 * time.Millisecond
)

var ErrClosed = errors.New("cart controller is closed")

type mutationState int

const (
	mutationOptimistic mutationState = iota + 1 // local patch applied, timer armed
	mutationSettling                            // remote call in flight
)

// pendingMutation is the per-line debounce record. At most one exists per
// LineKey; a newer request replaces it, never queues behind it.
type pendingMutation struct {
	state    mutationState
	timer    Timer
	quantity int // last requested quantity, the only one ever sent
	askedAt  time.Time
	gen      uint64
}

// Controller owns one cart view's mutable state: the cached snapshot, the
// selection set and the pending-mutation map. It is constructed and torn
// down with the view's lifecycle; Close cancels every armed timer.
type Controller struct {
	api    API
	notify Notifier

	clock  Clock
	bounce time.Duration
	settle time.Duration

	mu        sync.Mutex
	snapshot  Snapshot
	selection *SelectionSet
	pending   map[LineKey]*pendingMutation
	genSeq    uint64
	closed    bool
}

func NewController(api API, notify Notifier) *Controller {
	return &Controller{
		api:       api,
		notify:    notify,
		clock:     realClock{},
		bounce:    defaultBounceWindow,
		settle:    defaultSettleWindow,
		selection: NewSelectionSet(),
		pending:   make(map[LineKey]*pendingMutation),
	}
}

// Refresh replaces the cached snapshot with a fresh fetch. Lines with a
// still-pending mutation re-apply their optimistic quantity on top of the
// new baseline, and the selection is pruned against the new line set.
func (c *Controller) Refresh(ctx context.Context) error {
	snap, err := c.api.FetchCart(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	for key, pm := range c.pending {
		snap.applyQuantity(key, pm.quantity)
	}
	c.snapshot = snap
	c.selection.Prune(snap.Keys())
	return nil
}

// Fresh reports whether a snapshot has been fetched at least once.
func (c *Controller) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.snapshot.FetchedAt.IsZero()
}

// RequestQuantityChange validates and optimistically applies a quantity edit,
// then arms (or re-arms) the settle timer for the line. Validation failures
// return before any state change.
func (c *Controller) RequestQuantityChange(key LineKey, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	line, ok := c.snapshot.Find(key)
	if !ok {
		return apperr.NotFoundErr("That item is no longer in your cart.")
	}
	if quantity < 1 {
		return apperr.InvalidErr("Quantity must be at least 1.", map[string]string{"quantity": "Quantity must be at least 1."})
	}
	if line.Stock != nil && quantity > *line.Stock {
		msg := "Only " + strconv.Itoa(*line.Stock) + " left in stock."
		return apperr.InvalidErr(msg, map[string]string{"quantity": msg})
	}

	now := c.clock.Now()
	pm := c.pending[key]
	if pm != nil {
		// Same target within the bounce window is a double-fire artifact
		// (double click, key repeat); swallow it.
		if pm.state == mutationOptimistic && pm.quantity == quantity && now.Sub(pm.askedAt) < c.bounce {
			return nil
		}
		if pm.timer != nil {
			pm.timer.Stop() // supersede: only the latest quantity is ever sent
		}
	} else {
		pm = &pendingMutation{}
		c.pending[key] = pm
	}

	c.genSeq++
	pm.state = mutationOptimistic
	pm.quantity = quantity
	pm.askedAt = now
	pm.gen = c.genSeq

	c.snapshot.applyQuantity(key, quantity)

	gen := pm.gen
	pm.timer = c.clock.AfterFunc(c.settle, func() {
		c.settleQuantity(key, gen)
	})
	return nil
}

// settleQuantity fires when a line's debounce window elapses: one remote
// call, then an unconditional resync so the client never diverges from
// server truth for longer than the window.
func (c *Controller) settleQuantity(key LineKey, gen uint64) {
	c.mu.Lock()
	pm, ok := c.pending[key]
	if c.closed || !ok || pm.gen != gen {
		c.mu.Unlock()
		return
	}
	pm.state = mutationSettling
	quantity := pm.quantity
	c.mu.Unlock()

	ctx := context.Background()
	err := c.api.UpdateQuantity(ctx, key, quantity)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	// A newer request may have replaced this record while the call was in
	// flight; only the matching generation clears it.
	if cur, ok := c.pending[key]; ok && cur.gen == gen {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("settleQuantity: update failed for %s: %v", key, err)
		c.notifyf(view.FlashError, updateFailureMessage(err))
	}
	if rerr := c.Refresh(ctx); rerr != nil && !errors.Is(rerr, ErrClosed) {
		log.Printf("settleQuantity: resync failed for %s: %v", key, rerr)
		c.notifyf(view.FlashWarning, "Could not refresh your cart. Totals may be out of date.")
	}
}

// RemoveLine removes a row by its server id, cancelling any pending edit for
// the same line first, then resyncs.
func (c *Controller) RemoveLine(ctx context.Context, key LineKey) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	line, ok := c.snapshot.Find(key)
	if !ok {
		c.mu.Unlock()
		return apperr.NotFoundErr("That item is no longer in your cart.")
	}
	if line.ID == "" {
		c.mu.Unlock()
		return apperr.ConflictErr("That item is still syncing. Try again in a moment.")
	}
	lineID := line.ID
	if pm, ok := c.pending[key]; ok {
		if pm.timer != nil {
			pm.timer.Stop()
		}
		delete(c.pending, key)
	}
	c.mu.Unlock()

	removed, err := c.api.RemoveLine(ctx, lineID)
	if err != nil {
		log.Printf("RemoveLine: remove failed for %s: %v", key, err)
		_ = c.Refresh(ctx)
		return apperr.Wrap(err)
	}
	if !removed {
		log.Printf("RemoveLine: server reported line %s already gone", lineID)
	}
	return c.Refresh(ctx)
}

// Toggle marks a line selected or unselected for checkout.
func (c *Controller) Toggle(key LineKey, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if checked {
		if _, ok := c.snapshot.Find(key); !ok {
			return apperr.NotFoundErr("That item is no longer in your cart.")
		}
	}
	c.selection.Toggle(key, checked)
	return nil
}

func (c *Controller) ToggleAll(checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.selection.ToggleAll(checked, c.snapshot.Keys())
	return nil
}

// SelectedLines returns copies of the snapshot lines currently selected, in
// snapshot order. This is the order-draft input.
func (c *Controller) SelectedLines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, 0, c.selection.Len())
	for _, ln := range c.snapshot.Lines {
		if c.selection.Has(ln.Key()) {
			out = append(out, ln)
		}
	}
	return out
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Clear()
}

// Close tears the controller down with its view: every armed timer is
// stopped and late settles become no-ops. In-flight network calls are left
// to finish; their results are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for key, pm := range c.pending {
		if pm.timer != nil {
			pm.timer.Stop()
		}
		delete(c.pending, key)
	}
}

func (c *Controller) notifyf(kind view.FlashKind, msg string) {
	if c.notify != nil {
		c.notify.Notify(kind, msg)
	}
}

func updateFailureMessage(err error) string {
	if ae, ok := apperr.As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return fmt.Sprintf("Could not update the quantity (%v). Your cart was restored.", errShort(err))
}

func errShort(err error) string {
	s := err.Error()
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
