package cart

import "time"

// Line is one row of the server-authoritative cart. ID may be empty while the
// row only exists optimistically (the server has not issued a row id yet).
type Line struct {
	ID             string
	ProductID      string
	SizeID         string // empty when the product has no size variants
	Name           string
	ImageURL       string
	Quantity       int
	UnitPriceCents int
	LineTotalCents int
	Stock          *int // nil = ceiling unknown
}

func (l Line) Key() LineKey {
	return KeyOf(l.ProductID, l.SizeID)
}

// EffectiveTotalCents prefers the server-computed line total and falls back
// to quantity × unit price (the optimistic recomputation path).
func (l Line) EffectiveTotalCents() int {
	if l.LineTotalCents > 0 {
		return l.LineTotalCents
	}
	return l.Quantity * l.UnitPriceCents
}

// Snapshot is the cached copy of the remote cart. It is always replaceable
// wholesale by a fresh fetch; nothing in it is durable client-side.
type Snapshot struct {
	Lines      []Line
	TotalCents int
	Currency   string
	FetchedAt  time.Time
}

func (s *Snapshot) Find(key LineKey) (*Line, bool) {
	for i := range s.Lines {
		if s.Lines[i].Key() == key {
			return &s.Lines[i], true
		}
	}
	return nil, false
}

func (s *Snapshot) Keys() []LineKey {
	keys := make([]LineKey, 0, len(s.Lines))
	for i := range s.Lines {
		keys = append(keys, s.Lines[i].Key())
	}
	return keys
}

// applyQuantity rewrites a line's quantity and recomputes its total locally.
// Reports whether the line was present.
func (s *Snapshot) applyQuantity(key LineKey, qty int) bool {
	ln, ok := s.Find(key)
	if !ok {
		return false
	}
	ln.Quantity = qty
	ln.LineTotalCents = qty * ln.UnitPriceCents
	return true
}
