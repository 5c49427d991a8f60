// Package checkout drives the order-submission sequence:
// Idle → Validating → Submitting → Success | Error(kind) → Idle.
// Validation is synchronous and touches no network; submission issues a
// single order-creation call and branches on the typed error kinds the
// orders client decided at its boundary.
package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ThuanNgcodelor/merier-cart/internal/modules/addresses"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/cart"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/orders"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
)

// Validation verdicts. Each maps to a distinct remediation in the UI layer.
var (
	ErrBusy            = errors.New("a checkout is already in progress")
	ErrNothingSelected = errors.New("no items selected")
	ErrNoAddresses     = errors.New("address book is empty")
	ErrNoAddressChosen = errors.New("no shipping address chosen")
)

type Orchestrator struct {
	cart   *cart.Controller
	flow   *addresses.Flow
	orders orders.API

	mu     sync.Mutex
	status Status
}

func NewOrchestrator(cartCtl *cart.Controller, flow *addresses.Flow, ordersAPI orders.API) *Orchestrator {
	return &Orchestrator{cart: cartCtl, flow: flow, orders: ordersAPI, status: StatusIdle}
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Checkout runs one full pass of the sequence. Whatever happens, the
// orchestrator is back at Idle when it returns; the caller's selection is
// preserved on every failure except CartEmpty so the user can fix the cause
// and resubmit.
func (o *Orchestrator) Checkout(ctx context.Context) (*orders.Receipt, error) {
	if err := o.enter(); err != nil {
		return nil, err
	}
	defer o.leave()

	// Validating: synchronous gates, in order.
	selected := o.cart.SelectedLines()
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}
	if len(o.flow.Addresses()) == 0 {
		return nil, ErrNoAddresses
	}
	addressID := o.flow.ConfirmedID()
	if addressID == "" {
		o.flow.Reopen()
		return nil, ErrNoAddressChosen
	}

	o.setStatus(StatusSubmitting)

	draft := orders.Draft{
		Items:          make([]orders.DraftItem, 0, len(selected)),
		AddressID:      addressID,
		IdempotencyKey: uuid.NewString(),
	}
	for _, ln := range selected {
		draft.Items = append(draft.Items, orders.DraftItem{
			ProductID:      ln.ProductID,
			SizeID:         ln.SizeID,
			Quantity:       ln.Quantity,
			UnitPriceCents: ln.UnitPriceCents,
		})
	}

	receipt, err := o.orders.Create(ctx, draft)
	if err != nil {
		return nil, o.remediate(ctx, err)
	}

	// Success: the selection has been consumed and the server will have
	// dropped the purchased lines; resync to show that.
	o.cart.ClearSelection()
	if rerr := o.cart.Refresh(ctx); rerr != nil {
		log.Printf("Checkout: post-order resync failed: %v", rerr)
	}
	return receipt, nil
}

// remediate applies the side effect each typed failure demands and passes
// the error through for the UI to render.
func (o *Orchestrator) remediate(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, orders.ErrAddressNotFound):
		log.Printf("Checkout failed: address not found")
		o.flow.Reopen()
	case errors.Is(err, orders.ErrCartEmpty):
		// Raced with another client clearing the cart: the selection no
		// longer points at anything real.
		log.Printf("Checkout failed: cart empty")
		o.cart.ClearSelection()
		if rerr := o.cart.Refresh(ctx); rerr != nil {
			log.Printf("Checkout: resync after empty-cart failure failed: %v", rerr)
		}
	default:
		var oos *orders.OutOfStockError
		if errors.As(err, &oos) {
			log.Printf("Checkout failed: out of stock - %v", err)
		} else {
			log.Printf("Checkout error (unclassified): %T - %v", err, err)
		}
	}
	return err
}

func (o *Orchestrator) enter() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusIdle {
		return ErrBusy
	}
	o.status = StatusValidating
	return nil
}

func (o *Orchestrator) setStatus(s Status) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
}

func (o *Orchestrator) leave() {
	o.setStatus(StatusIdle)
}
