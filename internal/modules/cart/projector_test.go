package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_SelectedAggregates(t *testing.T) {
	snap := serverTruth()
	sel := NewSelectionSet()
	sel.Toggle(keyP1, true)

	page := project(snap, sel, nil)

	require.Len(t, page.Rows, 2)
	assert.Equal(t, 1, page.SelectedCount)
	assert.Equal(t, 2, page.SelectedQuantity)
	assert.Equal(t, 2000, page.SelectedSubtotalCents)
	assert.Equal(t, "$20.00", page.SelectedSubtotal)
	assert.False(t, page.AllSelected)
	assert.Equal(t, 4000, page.TotalCents)
}

func TestProject_AllSelectedFlag(t *testing.T) {
	snap := serverTruth()
	sel := NewSelectionSet()
	sel.ToggleAll(true, snap.Keys())

	page := project(snap, sel, nil)
	assert.True(t, page.AllSelected)
	assert.Equal(t, 3, page.SelectedQuantity)
	assert.Equal(t, 4000, page.SelectedSubtotalCents)
}

func TestProject_FallsBackToUnitTimesQuantity(t *testing.T) {
	snap := Snapshot{
		Currency: "USD",
		Lines: []Line{
			// optimistic row without a server-computed total
			{ProductID: "p9", Quantity: 3, UnitPriceCents: 500},
		},
	}
	sel := NewSelectionSet()
	sel.Toggle(KeyOf("p9", ""), true)

	page := project(snap, sel, nil)
	assert.Equal(t, 1500, page.Rows[0].LineTotalCents)
	assert.Equal(t, 1500, page.SelectedSubtotalCents)
}

func TestProject_UpdatingMark(t *testing.T) {
	snap := serverTruth()
	page := project(snap, NewSelectionSet(), map[LineKey]bool{keyP1: true})

	assert.True(t, page.Rows[0].Updating)
	assert.False(t, page.Rows[1].Updating)
}

func TestProject_EmptySnapshot(t *testing.T) {
	page := project(Snapshot{Currency: "USD"}, NewSelectionSet(), nil)
	assert.Empty(t, page.Rows)
	assert.False(t, page.AllSelected)
	assert.Equal(t, 0, page.SelectedQuantity)
}
