package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThuanNgcodelor/merier-cart/internal/http/middleware"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/session"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/validation"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/cart"
	"github.com/ThuanNgcodelor/merier-cart/internal/shared/apperr"
)

// CartHandler exposes the cart controller's derived state and imperative
// operations as a JSON surface (GET /cart, POST /cart/...).
type CartHandler struct {
	Sessions *session.Manager
}

func NewCartHandler(sessions *session.Manager) *CartHandler {
	return &CartHandler{Sessions: sessions}
}

// Get handles GET /cart - projects the current snapshot + selection.
func (h *CartHandler) Get(c *gin.Context) {
	s := h.Sessions.Get(c)

	if !s.Cart.Fresh() {
		if err := s.Cart.Refresh(c.Request.Context()); err != nil {
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
		// Seed the address book alongside the first cart fetch so checkout's
		// gates read the user's real addresses and a sole default
		// auto-confirms before the first submit. Failure is not fatal here;
		// opening the picker retries the load.
		if err := s.Flow.Load(c.Request.Context()); err != nil {
			log.Printf("CartHandler.Get: address book load failed: %v", err)
		}
	}

	page := s.Cart.View()
	page.Flashes = s.Flashes.Drain()
	c.JSON(http.StatusOK, page)
}

// Refresh handles POST /cart/refresh - forces a resync with the server.
func (h *CartHandler) Refresh(c *gin.Context) {
	s := h.Sessions.Get(c)
	if err := s.Cart.Refresh(c.Request.Context()); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	page := s.Cart.View()
	page.Flashes = s.Flashes.Drain()
	c.JSON(http.StatusOK, page)
}

type quantityInput struct {
	Key      string `json:"key" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// UpdateQuantity handles POST /cart/items/quantity - optimistic, debounced.
// A 202 means the edit was applied locally and will settle shortly.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	s := h.Sessions.Get(c)

	var in quantityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid quantity request.", errs))
		return
	}

	key, err := cart.ParseLineKey(in.Key)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid line key.", map[string]string{"key": "Malformed line key."}))
		return
	}

	if err := s.Cart.RequestQuantityChange(key, in.Quantity); err != nil {
		middleware.Fail(c, err)
		return
	}

	page := s.Cart.View()
	page.Flashes = s.Flashes.Drain()
	c.JSON(http.StatusAccepted, page)
}

type removeInput struct {
	Key string `json:"key" binding:"required"`
}

// Remove handles POST /cart/items/remove.
func (h *CartHandler) Remove(c *gin.Context) {
	s := h.Sessions.Get(c)

	var in removeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid remove request.", errs))
		return
	}

	key, err := cart.ParseLineKey(in.Key)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid line key.", map[string]string{"key": "Malformed line key."}))
		return
	}

	if err := s.Cart.RemoveLine(c.Request.Context(), key); err != nil {
		middleware.Fail(c, err)
		return
	}

	page := s.Cart.View()
	page.Flashes = s.Flashes.Drain()
	c.JSON(http.StatusOK, page)
}

type selectInput struct {
	Key     string `json:"key" binding:"required"`
	Checked *bool  `json:"checked" binding:"required"`
}

// Select handles POST /cart/select - toggles one line's checkout mark.
func (h *CartHandler) Select(c *gin.Context) {
	s := h.Sessions.Get(c)

	var in selectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid selection request.", errs))
		return
	}

	key, err := cart.ParseLineKey(in.Key)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid line key.", map[string]string{"key": "Malformed line key."}))
		return
	}

	if err := s.Cart.Toggle(key, *in.Checked); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Cart.View())
}

type selectAllInput struct {
	Checked *bool `json:"checked" binding:"required"`
}

// SelectAll handles POST /cart/select-all.
func (h *CartHandler) SelectAll(c *gin.Context) {
	s := h.Sessions.Get(c)

	var in selectAllInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid selection request.", errs))
		return
	}

	if err := s.Cart.ToggleAll(*in.Checked); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Cart.View())
}
