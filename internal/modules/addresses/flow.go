// Package addresses holds the shipping-address picker flow: a modal-driven
// selection over the remote address book, with a tentative in-modal choice
// kept apart from the confirmed one the checkout reads.
package addresses

import (
	"context"
	"log"
	"sync"

	"github.com/ThuanNgcodelor/merier-cart/internal/shared/apperr"
)

type Address struct {
	ID            string `json:"id"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	Province      string `json:"province"`
	IsDefault     bool   `json:"is_default"`
}

type API interface {
	FetchAddresses(ctx context.Context) ([]Address, error)
}

// Flow is the picker state machine. Selecting inside the open picker only
// moves the tentative choice; nothing affects checkout until Confirm.
type Flow struct {
	api API

	mu        sync.Mutex
	list      []Address
	open      bool
	tentative string
	confirmed string
	seeded    bool // single-default auto-confirm already ran
}

func NewFlow(api API) *Flow {
	return &Flow{api: api}
}

// Load refreshes the address book. On the very first successful load, if
// exactly one address carries the default flag and nothing is confirmed yet,
// that default is confirmed automatically. The convenience never re-applies.
// A confirmed id that has vanished from the list is NOT cleared here; the
// checkout discovers that at submission time.
func (f *Flow) Load(ctx context.Context) error {
	list, err := f.api.FetchAddresses(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = list

	if !f.seeded {
		f.seeded = true
		if f.confirmed == "" {
			if def, ok := soleDefault(list); ok {
				f.confirmed = def.ID
				log.Printf("addresses.Load: auto-confirmed default address %s", def.ID)
			}
		}
	}
	return nil
}

// Open opens the picker, refreshing the list and seeding the tentative
// choice from the confirmed one.
func (f *Flow) Open(ctx context.Context) ([]Address, error) {
	if err := f.Load(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.tentative = f.confirmed
	return append([]Address(nil), f.list...), nil
}

// Reopen marks the picker open without a network round trip. Used when the
// checkout bounces the user back here (no address chosen, stale address).
func (f *Flow) Reopen() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.tentative = f.confirmed
}

// Select moves the tentative choice. The picker must be open and the id must
// exist in the loaded list.
func (f *Flow) Select(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return apperr.ConflictErr("The address picker is not open.")
	}
	if _, ok := f.find(id); !ok {
		return apperr.NotFoundErr("That address does not exist.")
	}
	f.tentative = id
	return nil
}

// Confirm commits the tentative choice and closes the picker.
func (f *Flow) Confirm() (Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return Address{}, apperr.ConflictErr("The address picker is not open.")
	}
	if f.tentative == "" {
		return Address{}, apperr.InvalidErr("Choose an address first.", nil)
	}
	addr, ok := f.find(f.tentative)
	if !ok {
		return Address{}, apperr.NotFoundErr("That address does not exist.")
	}
	f.confirmed = f.tentative
	f.open = false
	return addr, nil
}

// Cancel closes the picker leaving the confirmed choice untouched.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.tentative = ""
}

func (f *Flow) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// ConfirmedID returns the committed address id, empty when none.
func (f *Flow) ConfirmedID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmed
}

// Confirmed resolves the confirmed id against the loaded list for display.
// The bool is false when nothing is confirmed or the entry has vanished.
func (f *Flow) Confirmed() (Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmed == "" {
		return Address{}, false
	}
	return f.find(f.confirmed)
}

func (f *Flow) TentativeID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tentative
}

// Addresses returns the last loaded list.
func (f *Flow) Addresses() []Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Address(nil), f.list...)
}

func (f *Flow) find(id string) (Address, bool) {
	for _, a := range f.list {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// soleDefault tolerates zero or many default flags (races with other
// clients); auto-confirm only happens for exactly one.
func soleDefault(list []Address) (Address, bool) {
	var def Address
	n := 0
	for _, a := range list {
		if a.IsDefault {
			def = a
			n++
		}
	}
	return def, n == 1
}
