package cart

// SelectionSet tracks which line keys are checked for checkout. It is
// client-only state, independent of cart contents, so a selection survives a
// snapshot refresh for any line whose key is unchanged.
//
// Not safe for concurrent use on its own; the Controller guards it.
type SelectionSet struct {
	members map[LineKey]struct{}
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{members: make(map[LineKey]struct{})}
}

// Toggle adds or removes a key. Idempotent in both directions.
func (s *SelectionSet) Toggle(key LineKey, checked bool) {
	if checked {
		s.members[key] = struct{}{}
		return
	}
	delete(s.members, key)
}

// ToggleAll selects or clears every key in all.
func (s *SelectionSet) ToggleAll(checked bool, all []LineKey) {
	if !checked {
		s.members = make(map[LineKey]struct{})
		return
	}
	for _, k := range all {
		s.members[k] = struct{}{}
	}
}

func (s *SelectionSet) Has(key LineKey) bool {
	_, ok := s.members[key]
	return ok
}

// IsAllSelected reports whether the set is non-empty and covers every key in
// all. An empty cart is never "all selected".
func (s *SelectionSet) IsAllSelected(all []LineKey) bool {
	if len(s.members) == 0 || len(all) == 0 {
		return false
	}
	for _, k := range all {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Prune drops members that are not in valid. Called after every snapshot
// refresh so the set never references deleted lines for long.
func (s *SelectionSet) Prune(valid []LineKey) {
	keep := make(map[LineKey]struct{}, len(valid))
	for _, k := range valid {
		if s.Has(k) {
			keep[k] = struct{}{}
		}
	}
	s.members = keep
}

func (s *SelectionSet) Len() int { return len(s.members) }

func (s *SelectionSet) Clear() {
	s.members = make(map[LineKey]struct{})
}
