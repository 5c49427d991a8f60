package orders

// DraftItem is one selected cart line at submission time.
type DraftItem struct {
	ProductID      string `json:"product_id"`
	SizeID         string `json:"size_id,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

// Draft is built from selection ∩ snapshot plus the confirmed address and
// lives only for the duration of the create call.
type Draft struct {
	Items          []DraftItem `json:"selected_items"`
	AddressID      string      `json:"address_id"`
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
}

// Receipt is the order-creation response. The server's shape varies between
// success scenarios, so every field is optional on the wire.
type Receipt struct {
	ID         string `json:"id"`
	Status     string `json:"status,omitempty"`
	TotalCents int    `json:"total_cents,omitempty"`
	ItemCount  int    `json:"item_count,omitempty"`
}
