package main

import (
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"

	apphttp "github.com/ThuanNgcodelor/merier-cart/internal/http"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/session"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/sessioncookie"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/addresses"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/cart"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/checkout"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/orders"
	"github.com/ThuanNgcodelor/merier-cart/internal/upstream"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	baseURL := os.Getenv("UPSTREAM_BASE_URL")
	if baseURL == "" {
		log.Fatal("UPSTREAM_BASE_URL environment variable is required")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
		logger.Warn("SESSION_SECRET not set, using dev default")
	}

	cartAPI := cart.NewClient(upstream.New(baseURL, "cart"))
	addressAPI := addresses.NewClient(upstream.New(baseURL, "addresses"))
	orderAPI := orders.NewClient(upstream.New(baseURL, "orders"))

	codec := sessioncookie.New([]byte(secret), "merier_cart", os.Getenv("COOKIE_SECURE") == "1")
	sessions := session.NewManager(codec, func(id string, flashes *session.FlashBuffer) *session.Session {
		ctl := cart.NewController(cartAPI, flashes)
		flow := addresses.NewFlow(addressAPI)
		return &session.Session{
			ID:       id,
			Cart:     ctl,
			Flow:     flow,
			Checkout: checkout.NewOrchestrator(ctl, flow, orderAPI),
		}
	})
	defer sessions.Close()

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	r := apphttp.NewRouter(logger, sessions)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
