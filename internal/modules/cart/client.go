package cart

import (
	"context"
	"net/url"
	"time"

	"github.com/ThuanNgcodelor/merier-cart/internal/upstream"
)

// Client implements API against the remote cart service's REST endpoints.
type Client struct {
	http *upstream.Client
}

func NewClient(http *upstream.Client) *Client {
	return &Client{http: http}
}

type wireCart struct {
	Items      []wireCartItem `json:"items"`
	TotalCents int            `json:"total_cents"`
	Currency   string         `json:"currency"`
}

type wireCartItem struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	SizeID         string `json:"size_id,omitempty"`
	ProductName    string `json:"product_name"`
	ImageURL       string `json:"image_url,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	LineTotalCents int    `json:"line_total_cents"`
	Stock          *int   `json:"stock,omitempty"`
}

func (c *Client) FetchCart(ctx context.Context) (Snapshot, error) {
	var wc wireCart
	if err := c.http.Get(ctx, "/v1/cart", &wc); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Lines:      make([]Line, 0, len(wc.Items)),
		TotalCents: wc.TotalCents,
		Currency:   wc.Currency,
		FetchedAt:  time.Now(),
	}
	for _, it := range wc.Items {
		snap.Lines = append(snap.Lines, Line{
			ID:             it.ID,
			ProductID:      it.ProductID,
			SizeID:         it.SizeID,
			Name:           it.ProductName,
			ImageURL:       it.ImageURL,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
			Stock:          it.Stock,
		})
	}
	return snap, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, key LineKey, quantity int) error {
	payload := struct {
		ProductID string `json:"product_id"`
		SizeID    string `json:"size_id,omitempty"`
		Quantity  int    `json:"quantity"`
	}{
		ProductID: key.ProductID,
		SizeID:    key.WireSizeID(),
		Quantity:  quantity,
	}
	return c.http.Put(ctx, "/v1/cart/items", payload, nil)
}

func (c *Client) RemoveLine(ctx context.Context, lineID string) (bool, error) {
	return c.http.Delete(ctx, "/v1/cart/items/"+url.PathEscape(lineID))
}
