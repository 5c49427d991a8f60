package cart

import (
	"github.com/ThuanNgcodelor/merier-cart/pkg/view"
)

// View projects the controller's current state into a render-ready page.
func (c *Controller) View() view.CartPage {
	c.mu.Lock()
	defer c.mu.Unlock()

	updating := make(map[LineKey]bool, len(c.pending))
	for key := range c.pending {
		updating[key] = true
	}
	return project(c.snapshot, c.selection, updating)
}

// project is a pure derivation from (snapshot, selection, updating marks).
// It holds no state of its own and can be recomputed at any time.
func project(snap Snapshot, sel *SelectionSet, updating map[LineKey]bool) view.CartPage {
	page := view.CartPage{
		Rows:     make([]view.CartRow, 0, len(snap.Lines)),
		Currency: snap.Currency,
	}

	for _, ln := range snap.Lines {
		key := ln.Key()
		selected := sel.Has(key)
		lineTotal := ln.EffectiveTotalCents()

		row := view.CartRow{
			Key:            key.String(),
			LineID:         ln.ID,
			ProductID:      ln.ProductID,
			SizeID:         ln.SizeID,
			Name:           ln.Name,
			ImageURL:       ln.ImageURL,
			Quantity:       ln.Quantity,
			UnitPriceCents: ln.UnitPriceCents,
			LineTotalCents: lineTotal,
			UnitPrice:      view.MoneyFromCents(ln.UnitPriceCents, snap.Currency),
			LineTotal:      view.MoneyFromCents(lineTotal, snap.Currency),
			Stock:          ln.Stock,
			Selected:       selected,
			Updating:       updating[key],
		}
		page.Rows = append(page.Rows, row)

		if selected {
			page.SelectedQuantity += ln.Quantity
			page.SelectedSubtotalCents += lineTotal
		}
	}

	page.AllSelected = sel.IsAllSelected(snap.Keys())
	page.SelectedCount = sel.Len()
	page.SelectedSubtotal = view.MoneyFromCents(page.SelectedSubtotalCents, snap.Currency)
	page.TotalCents = snap.TotalCents
	page.Total = view.MoneyFromCents(snap.TotalCents, snap.Currency)
	return page
}
