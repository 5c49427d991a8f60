package orders

import (
	"errors"
	"fmt"
)

var (
	ErrCartEmpty       = errors.New("nothing eligible to order")
	ErrAddressNotFound = errors.New("shipping address no longer exists")
)

type OutOfStockItem struct {
	ProductID string
	SizeID    string
	Requested int
	Available int
}

// OutOfStockError carries the server's available-vs-requested counts when it
// provides them, so the UI can tell the user exactly what to reduce.
type OutOfStockError struct {
	Items []OutOfStockItem
}

func (e *OutOfStockError) Error() string {
	if len(e.Items) == 0 {
		return "insufficient stock"
	}
	it := e.Items[0]
	return fmt.Sprintf("insufficient stock: product=%s requested=%d available=%d", it.ProductID, it.Requested, it.Available)
}
