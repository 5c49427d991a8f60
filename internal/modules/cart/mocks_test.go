package cart

import (
	"context"
	"sync"
	"time"

	"github.com/ThuanNgcodelor/merier-cart/pkg/view"
)

// --- fake clock ---

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock and fires due timers synchronously, outside the
// clock lock so callbacks may re-arm timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// --- fake remote cart service ---

type updateCall struct {
	key LineKey
	qty int
}

// fakeCartAPI holds "server truth" and applies accepted updates to it, so a
// resync after success reflects the mutation and a resync after failure
// rolls back to the pre-mutation state.
type fakeCartAPI struct {
	mu          sync.Mutex
	truth       Snapshot
	updateCalls []updateCall
	removeCalls []string
	updateErr   error
	fetchErr    error
	fetchCount  int
}

func (a *fakeCartAPI) FetchCart(_ context.Context) (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetchCount++
	if a.fetchErr != nil {
		return Snapshot{}, a.fetchErr
	}
	return copySnapshot(a.truth), nil
}

func (a *fakeCartAPI) UpdateQuantity(_ context.Context, key LineKey, qty int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updateCalls = append(a.updateCalls, updateCall{key: key, qty: qty})
	if a.updateErr != nil {
		return a.updateErr
	}
	a.truth.applyQuantity(key, qty)
	return nil
}

func (a *fakeCartAPI) RemoveLine(_ context.Context, lineID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeCalls = append(a.removeCalls, lineID)
	for i := range a.truth.Lines {
		if a.truth.Lines[i].ID == lineID {
			a.truth.Lines = append(a.truth.Lines[:i], a.truth.Lines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func copySnapshot(s Snapshot) Snapshot {
	out := s
	out.Lines = make([]Line, len(s.Lines))
	copy(out.Lines, s.Lines)
	for i := range out.Lines {
		if st := out.Lines[i].Stock; st != nil {
			v := *st
			out.Lines[i].Stock = &v
		}
	}
	out.FetchedAt = time.Now()
	return out
}

// --- recording notifier ---

type recordingNotifier struct {
	mu      sync.Mutex
	flashes []view.Flash
}

func (n *recordingNotifier) Notify(kind view.FlashKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.flashes = append(n.flashes, view.Flash{Kind: kind, Message: message})
}

func (n *recordingNotifier) all() []view.Flash {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]view.Flash(nil), n.flashes...)
}

// --- fixtures ---

func intp(v int) *int { return &v }

func serverTruth() Snapshot {
	return Snapshot{
		Lines: []Line{
			{ID: "row-1", ProductID: "p1", Name: "Salmon Kibble", Quantity: 2, UnitPriceCents: 1000, LineTotalCents: 2000, Stock: intp(5)},
			{ID: "row-2", ProductID: "p2", SizeID: "s", Name: "Harness", Quantity: 1, UnitPriceCents: 2000, LineTotalCents: 2000, Stock: intp(1)},
		},
		TotalCents: 4000,
		Currency:   "USD",
	}
}

func newTestController(api *fakeCartAPI) (*Controller, *fakeClock, *recordingNotifier) {
	n := &recordingNotifier{}
	c := NewController(api, n)
	clk := newFakeClock()
	c.clock = clk
	return c, clk, n
}
