package view

// OrderReceipt is the read-only display value returned after a successful
// checkout.
type OrderReceipt struct {
	ID         string `json:"id"`
	Status     string `json:"status,omitempty"`
	TotalCents int    `json:"total_cents"`
	Total      string `json:"total"`
	ItemCount  int    `json:"item_count"`
}

// StockIssue is one offending line in an insufficient-stock verdict.
type StockIssue struct {
	ProductID string `json:"product_id"`
	SizeID    string `json:"size_id,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

type AddressOption struct {
	ID            string `json:"id"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	Province      string `json:"province"`
	IsDefault     bool   `json:"is_default"`
	Tentative     bool   `json:"tentative"`
	Confirmed     bool   `json:"confirmed"`
}
