package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThuanNgcodelor/merier-cart/internal/http/middleware"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/session"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/validation"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/addresses"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/checkout"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/orders"
	"github.com/ThuanNgcodelor/merier-cart/internal/shared/apperr"
	"github.com/ThuanNgcodelor/merier-cart/pkg/view"
)

// CheckoutHandler exposes the address picker flow and the checkout trigger.
// Every classified failure answers with a code the client can act on, never
// a bare 500.
type CheckoutHandler struct {
	Sessions *session.Manager
}

func NewCheckoutHandler(sessions *session.Manager) *CheckoutHandler {
	return &CheckoutHandler{Sessions: sessions}
}

// OpenAddressPicker handles GET /checkout/addresses - opens the picker and
// returns the list with the tentative choice seeded from the confirmed one.
func (h *CheckoutHandler) OpenAddressPicker(c *gin.Context) {
	s := h.Sessions.Get(c)

	list, err := s.Flow.Open(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"open":      true,
		"addresses": addressOptions(s, list),
	})
}

type selectAddressInput struct {
	AddressID string `json:"address_id" binding:"required"`
}

// SelectAddress handles POST /checkout/addresses/select - tentative only.
func (h *CheckoutHandler) SelectAddress(c *gin.Context) {
	s := h.Sessions.Get(c)

	var in selectAddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid address selection.", errs))
		return
	}

	if err := s.Flow.Select(in.AddressID); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tentative_id": in.AddressID})
}

// ConfirmAddress handles POST /checkout/addresses/confirm.
func (h *CheckoutHandler) ConfirmAddress(c *gin.Context) {
	s := h.Sessions.Get(c)

	addr, err := s.Flow.Confirm()
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": addr})
}

// CancelAddressPicker handles POST /checkout/addresses/cancel.
func (h *CheckoutHandler) CancelAddressPicker(c *gin.Context) {
	s := h.Sessions.Get(c)
	s.Flow.Cancel()
	c.Status(http.StatusNoContent)
}

// Submit handles POST /checkout - runs the orchestrator once and maps each
// typed outcome to a remediation the client renders.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	s := h.Sessions.Get(c)

	receipt, err := s.Checkout.Checkout(c.Request.Context())
	if err != nil {
		h.renderCheckoutError(c, s, err)
		return
	}

	page := s.Cart.View()
	page.Flashes = s.Flashes.Drain()
	c.JSON(http.StatusCreated, gin.H{
		"receipt": view.OrderReceipt{
			ID:         receipt.ID,
			Status:     receipt.Status,
			TotalCents: receipt.TotalCents,
			Total:      view.MoneyFromCents(receipt.TotalCents, page.Currency),
			ItemCount:  receipt.ItemCount,
		},
		"cart": page,
	})
}

func (h *CheckoutHandler) renderCheckoutError(c *gin.Context, s *session.Session, err error) {
	switch {
	case errors.Is(err, checkout.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"code": "busy", "error": "A checkout is already in progress."})

	case errors.Is(err, checkout.ErrNothingSelected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "nothing_selected", "error": "Select at least one item first."})

	case errors.Is(err, checkout.ErrNoAddresses):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":  "no_addresses",
			"error": "You have no saved addresses yet.",
			"next":  "/account/addresses/new",
		})

	case errors.Is(err, checkout.ErrNoAddressChosen):
		c.JSON(http.StatusConflict, gin.H{
			"code":          "address_required",
			"error":         "Choose a shipping address first.",
			"reopen_picker": true,
		})

	case errors.Is(err, orders.ErrAddressNotFound):
		c.JSON(http.StatusConflict, gin.H{
			"code":          "address_not_found",
			"error":         "That address no longer exists. Pick another one.",
			"reopen_picker": true,
		})

	case errors.Is(err, orders.ErrCartEmpty):
		c.JSON(http.StatusConflict, gin.H{
			"code":  "cart_empty",
			"error": "Your cart is empty.",
			"next":  "/products",
		})

	default:
		var oos *orders.OutOfStockError
		if errors.As(err, &oos) {
			issues := make([]view.StockIssue, 0, len(oos.Items))
			for _, it := range oos.Items {
				issues = append(issues, view.StockIssue(it))
			}
			c.JSON(http.StatusConflict, gin.H{
				"code":  "insufficient_stock",
				"error": "Some items exceed the available stock.",
				"items": issues,
			})
			return
		}
		log.Printf("Submit: checkout failed (unclassified): %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":  "checkout_failed",
			"error": "Checkout failed. Please try again.",
			"retry": true,
		})
	}
}

func addressOptions(s *session.Session, list []addresses.Address) []view.AddressOption {
	tentative := s.Flow.TentativeID()
	confirmed := s.Flow.ConfirmedID()

	out := make([]view.AddressOption, 0, len(list))
	for _, a := range list {
		out = append(out, view.AddressOption{
			ID:            a.ID,
			RecipientName: a.RecipientName,
			Phone:         a.Phone,
			Street:        a.Street,
			Province:      a.Province,
			IsDefault:     a.IsDefault,
			Tentative:     a.ID == tentative,
			Confirmed:     a.ID == confirmed,
		})
	}
	return out
}
