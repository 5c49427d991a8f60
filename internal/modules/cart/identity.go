package cart

import (
	"errors"
	"strings"
)

// NoSize is the sentinel stored in LineKey.SizeID when a product has no size
// variants. The sentinel keeps the wire form of a sizeless key from colliding
// with a real size id after truncation.
const NoSize = "no-size"

var ErrBadLineKey = errors.New("malformed line key")

// LineKey identifies a cart line by product and size variant, independent of
// the server-assigned row id (which is absent while a line is optimistic).
// Structural equality makes it usable as a map key directly.
type LineKey struct {
	ProductID string
	SizeID    string
}

func KeyOf(productID, sizeID string) LineKey {
	sizeID = strings.TrimSpace(sizeID)
	if sizeID == "" {
		sizeID = NoSize
	}
	return LineKey{ProductID: strings.TrimSpace(productID), SizeID: sizeID}
}

// String is the wire form used by the JSON surface: "productID:sizeID".
func (k LineKey) String() string {
	return k.ProductID + ":" + k.SizeID
}

// WireSizeID returns the size id as sent upstream: empty when sizeless.
func (k LineKey) WireSizeID() string {
	if k.SizeID == NoSize {
		return ""
	}
	return k.SizeID
}

func ParseLineKey(s string) (LineKey, error) {
	productID, sizeID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || productID == "" || sizeID == "" {
		return LineKey{}, ErrBadLineKey
	}
	return LineKey{ProductID: productID, SizeID: sizeID}, nil
}
