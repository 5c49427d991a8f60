// stubapi is a throwaway in-memory stand-in for the authoritative cart,
// address and order services, so the gateway runs end to end locally:
//
//	go run ./cmd/tools/stubapi   # listens on :9090
//	UPSTREAM_BASE_URL=http://localhost:9090 go run ./cmd/web
package main

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type item struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	SizeID         string `json:"size_id,omitempty"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	LineTotalCents int    `json:"line_total_cents"`
	Stock          *int   `json:"stock,omitempty"`
}

type store struct {
	mu    sync.Mutex
	items []item
}

func intp(v int) *int { return &v }

func seed() *store {
	return &store{items: []item{
		{ID: uuid.NewString(), ProductID: "p-kibble", ProductName: "Salmon Kibble 2kg", Quantity: 2, UnitPriceCents: 1899, Stock: intp(14)},
		{ID: uuid.NewString(), ProductID: "p-harness", SizeID: "size-m", ProductName: "No-Pull Harness", Quantity: 1, UnitPriceCents: 2450, Stock: intp(3)},
		{ID: uuid.NewString(), ProductID: "p-toy", ProductName: "Rope Tug Toy", Quantity: 1, UnitPriceCents: 650, Stock: intp(1)},
	}}
}

func (s *store) cartJSON() gin.H {
	total := 0
	out := make([]item, len(s.items))
	for i, it := range s.items {
		it.LineTotalCents = it.Quantity * it.UnitPriceCents
		total += it.LineTotalCents
		out[i] = it
	}
	return gin.H{"items": out, "total_cents": total, "currency": "USD"}
}

func main() {
	st := seed()

	addrs := []gin.H{
		{"id": "addr-1", "recipient_name": "Thuan Ngo", "phone": "555-0101", "street": "12 Pine St", "province": "Da Nang", "is_default": true},
		{"id": "addr-2", "recipient_name": "Thuan Ngo", "phone": "555-0101", "street": "88 Elm Ave", "province": "Hanoi", "is_default": false},
	}

	r := gin.Default()

	r.GET("/v1/cart", func(c *gin.Context) {
		st.mu.Lock()
		defer st.mu.Unlock()
		c.JSON(http.StatusOK, st.cartJSON())
	})

	r.PUT("/v1/cart/items", func(c *gin.Context) {
		var in struct {
			ProductID string `json:"product_id"`
			SizeID    string `json:"size_id"`
			Quantity  int    `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
			return
		}
		st.mu.Lock()
		defer st.mu.Unlock()
		for i := range st.items {
			it := &st.items[i]
			if it.ProductID == in.ProductID && it.SizeID == in.SizeID {
				if it.Stock != nil && in.Quantity > *it.Stock {
					c.JSON(http.StatusConflict, gin.H{"type": "insufficient_stock", "error": "not enough stock"})
					return
				}
				it.Quantity = in.Quantity
				c.Status(http.StatusNoContent)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "line not found"})
	})

	r.DELETE("/v1/cart/items/:id", func(c *gin.Context) {
		st.mu.Lock()
		defer st.mu.Unlock()
		id := c.Param("id")
		for i := range st.items {
			if st.items[i].ID == id {
				st.items = append(st.items[:i], st.items[i+1:]...)
				c.Status(http.StatusNoContent)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "line not found"})
	})

	r.GET("/v1/addresses", func(c *gin.Context) {
		c.JSON(http.StatusOK, addrs)
	})

	r.POST("/v1/orders", func(c *gin.Context) {
		var in struct {
			Items []struct {
				ProductID string `json:"product_id"`
				SizeID    string `json:"size_id"`
				Quantity  int    `json:"quantity"`
			} `json:"selected_items"`
			AddressID string `json:"address_id"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
			return
		}

		known := false
		for _, a := range addrs {
			if a["id"] == in.AddressID {
				known = true
			}
		}
		if !known {
			c.JSON(http.StatusConflict, gin.H{"type": "address_not_found", "error": "unknown address"})
			return
		}

		st.mu.Lock()
		defer st.mu.Unlock()
		if len(in.Items) == 0 || len(st.items) == 0 {
			c.JSON(http.StatusConflict, gin.H{"type": "cart_empty", "error": "nothing to order"})
			return
		}

		var shortages []gin.H
		total, count := 0, 0
		for _, want := range in.Items {
			for i := range st.items {
				it := &st.items[i]
				if it.ProductID == want.ProductID && it.SizeID == want.SizeID {
					if it.Stock != nil && want.Quantity > *it.Stock {
						shortages = append(shortages, gin.H{
							"product_id": it.ProductID, "size_id": it.SizeID,
							"requested": want.Quantity, "available": *it.Stock,
						})
					}
					total += want.Quantity * it.UnitPriceCents
					count += want.Quantity
				}
			}
		}
		if len(shortages) > 0 {
			c.JSON(http.StatusConflict, gin.H{"type": "insufficient_stock", "error": "not enough stock", "items": shortages})
			return
		}

		// drop the purchased lines, the gateway resyncs right after
		kept := st.items[:0]
		for _, it := range st.items {
			bought := false
			for _, want := range in.Items {
				if it.ProductID == want.ProductID && it.SizeID == want.SizeID {
					bought = true
				}
			}
			if !bought {
				kept = append(kept, it)
			}
		}
		st.items = kept

		c.JSON(http.StatusCreated, gin.H{
			"id": uuid.NewString(), "status": "created",
			"total_cents": total, "item_count": count,
		})
	})

	addr := os.Getenv("STUB_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	log.Printf("stubapi listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
