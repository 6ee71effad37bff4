package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/eyira/storefront/pkg/errors"
)

func item(id string, price string, qty int64) LineItem {
	return LineItem{
		ID:       id,
		Name:     "Spice " + id,
		Price:    decimal.RequireFromString(price),
		Size:     "250g",
		Quantity: qty,
		Image:    "/images/" + id + ".png",
	}
}

func TestAddMergesOnIDAndKeepsPrice(t *testing.T) {
	c := New()
	c.Add(item("standard", "26.00", 0))
	repriced := item("standard", "99.00", 0)
	c.Add(repriced)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("26.00")))
}

func TestUpdateQuantityRemovesInsteadOfZero(t *testing.T) {
	c := New()
	c.Add(item("pilot", "15.00", 0))
	c.Add(item("standard", "26.00", 0))

	c.UpdateQuantity("pilot", 2)
	assert.Equal(t, int64(3), c.Items()[0].Quantity)

	c.UpdateQuantity("pilot", -3)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "standard", items[0].ID)

	c.UpdateQuantity("missing", -1)
	assert.Len(t, c.Items(), 1)
}

func TestTotals(t *testing.T) {
	c, err := FromItems([]LineItem{item("hungry-man", "48.00", 2), item("pilot", "15.00", 1)})
	require.NoError(t, err)

	assert.True(t, c.Subtotal().Equal(decimal.RequireFromString("111.00")))
	assert.Equal(t, int64(3), c.Count())

	c.Remove("hungry-man")
	assert.True(t, c.Subtotal().Equal(decimal.RequireFromString("15.00")))

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Subtotal().IsZero())
}

func TestFromItemsMergesDuplicates(t *testing.T) {
	c, err := FromItems([]LineItem{item("standard", "26.00", 1), item("standard", "30.00", 2)})
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("26.00")))
}

func TestFromItemsRejectsInvalidLines(t *testing.T) {
	cases := map[string]LineItem{
		"zero quantity": item("a", "10.00", 0),
		"negative":      item("a", "10.00", -1),
		"free":          item("a", "0", 1),
		"missing id":    item("", "10.00", 1),
	}
	for name, li := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromItems([]LineItem{li})
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	c := New()
	c.Add(item("pilot", "15.00", 0))

	raw, err := c.Encode()
	require.NoError(t, err)

	restored, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, c.Count(), restored.Count())

	empty, err := Decode(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}
