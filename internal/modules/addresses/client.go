package addresses

import (
	"context"

	"github.com/ThuanNgcodelor/merier-cart/internal/upstream"
)

type Client struct {
	http *upstream.Client
}

func NewClient(http *upstream.Client) *Client {
	return &Client{http: http}
}

func (c *Client) FetchAddresses(ctx context.Context) ([]Address, error) {
	var list []Address
	if err := c.http.Get(ctx, "/v1/addresses", &list); err != nil {
		return nil, err
	}
	return list, nil
}
