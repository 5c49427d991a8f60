// Package orders wraps the remote order-creation endpoint. Failure payloads
// are classified into typed errors exactly once, here at the API boundary;
// callers branch with errors.Is / errors.As and never re-inspect bodies.
package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ThuanNgcodelor/merier-cart/internal/upstream"
)

type API interface {
	Create(ctx context.Context, draft Draft) (*Receipt, error)
}

type Client struct {
	http *upstream.Client
}

func NewClient(http *upstream.Client) *Client {
	return &Client{http: http}
}

func (c *Client) Create(ctx context.Context, draft Draft) (*Receipt, error) {
	var rcpt Receipt
	if err := c.http.Post(ctx, "/v1/orders", draft, &rcpt); err != nil {
		return nil, classifyCreateError(err)
	}
	return &rcpt, nil
}

// failurePayload is the error body contract. The type field is set by an
// upstream layer that is not fully reliable; when it is missing the error
// stays unclassified and the caller falls back to its generic retry path.
type failurePayload struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Items []struct {
		ProductID string `json:"product_id"`
		SizeID    string `json:"size_id"`
		Requested int    `json:"requested"`
		Available int    `json:"available"`
	} `json:"items"`
}

func classifyCreateError(err error) error {
	var he *upstream.HTTPError
	if !errors.As(err, &he) || len(he.Body) == 0 {
		return err
	}

	var p failurePayload
	if jsonErr := json.Unmarshal(he.Body, &p); jsonErr != nil {
		return err
	}

	switch p.Type {
	case "insufficient_stock":
		oos := &OutOfStockError{}
		for _, it := range p.Items {
			oos.Items = append(oos.Items, OutOfStockItem(it))
		}
		return oos
	case "address_not_found":
		return ErrAddressNotFound
	case "cart_empty":
		return ErrCartEmpty
	default:
		return err
	}
}
