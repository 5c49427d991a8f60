package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThuanNgcodelor/merier-cart/internal/http/handlers"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/middleware"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/session"
)

// NewRouter assembles the JSON surface over the per-session cart engine.
func NewRouter(logger *slog.Logger, sessions *session.Manager) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	// ErrorHandler must wrap Recovery: the recovery callback only records
	// the error, and the renderer runs on the way back out.
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Recovery(logger))

	cartH := handlers.NewCartHandler(sessions)
	checkoutH := handlers.NewCheckoutHandler(sessions)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/cart", cartH.Get)
	r.POST("/cart/refresh", cartH.Refresh)
	r.POST("/cart/items/quantity", cartH.UpdateQuantity)
	r.POST("/cart/items/remove", cartH.Remove)
	r.POST("/cart/select", cartH.Select)
	r.POST("/cart/select-all", cartH.SelectAll)

	r.GET("/checkout/addresses", checkoutH.OpenAddressPicker)
	r.POST("/checkout/addresses/select", checkoutH.SelectAddress)
	r.POST("/checkout/addresses/confirm", checkoutH.ConfirmAddress)
	r.POST("/checkout/addresses/cancel", checkoutH.CancelAddressPicker)
	r.POST("/checkout", checkoutH.Submit)

	return r
}
