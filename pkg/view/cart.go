package view

// CartRow is one displayable cart line, decorated with the client-side
// selection and updating marks.
type CartRow struct {
	Key            string `json:"key"`
	LineID         string `json:"line_id,omitempty"`
	ProductID      string `json:"product_id"`
	SizeID         string `json:"size_id,omitempty"`
	Name           string `json:"name"`
	ImageURL       string `json:"image_url,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	LineTotalCents int    `json:"line_total_cents"`
	UnitPrice      string `json:"unit_price"`
	LineTotal      string `json:"line_total"`
	Stock          *int   `json:"stock,omitempty"`
	Selected       bool   `json:"selected"`
	Updating       bool   `json:"updating"`
}

type CartPage struct {
	Rows                  []CartRow `json:"rows"`
	Currency              string    `json:"currency"`
	AllSelected           bool      `json:"all_selected"`
	SelectedCount         int       `json:"selected_count"`
	SelectedQuantity      int       `json:"selected_quantity"`
	SelectedSubtotalCents int       `json:"selected_subtotal_cents"`
	SelectedSubtotal      string    `json:"selected_subtotal"`
	TotalCents            int       `json:"total_cents"`
	Total                 string    `json:"total"`
	Flashes               []Flash   `json:"flashes,omitempty"`
}
