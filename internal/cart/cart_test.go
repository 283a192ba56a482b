package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kslmndz/bakery_shop/internal/models"
)

func pandesal() models.Product {
	return models.Product{ID: 1, Name: "Pandesal", Price: 10, StockQuantity: 5, IsAvailable: true}
}

func ensaymada() models.Product {
	return models.Product{ID: 2, Name: "Ensaymada", Price: 25, StockQuantity: 3, IsAvailable: true}
}

func TestAddRejectsOutOfStock(t *testing.T) {
	c := New()

	p := pandesal()
	p.StockQuantity = 0
	require.False(t, c.Add(p))
	require.True(t, c.IsEmpty())
}

func TestAddRejectsUnavailable(t *testing.T) {
	c := New()

	p := pandesal()
	p.IsAvailable = false
	require.False(t, c.Add(p))
	require.True(t, c.IsEmpty())
}

func TestAddTwiceMergesLine(t *testing.T) {
	c := New()

	p := pandesal()
	require.True(t, c.Add(p))
	require.True(t, c.Add(p))

	require.Len(t, c.Lines, 1)
	require.Equal(t, uint(2), c.Lines[p.ID].Quantity)
}

func TestAddClampsAtStock(t *testing.T) {
	c := New()

	p := pandesal()
	p.StockQuantity = 2
	require.True(t, c.Add(p))
	require.True(t, c.Add(p))
	require.True(t, c.Add(p))

	require.Equal(t, uint(2), c.Lines[p.ID].Quantity)
}

func TestAddClampsDownAfterStockShrinks(t *testing.T) {
	c := New()

	p := pandesal()
	require.True(t, c.Add(p))
	c.UpdateQuantity(1, 5)

	// Stock shrank between adds; merging with the live snapshot must
	// pull the quantity back under it.
	p.StockQuantity = 2
	require.True(t, c.Add(p))

	require.Equal(t, uint(2), c.Lines[1].Quantity)
	require.Equal(t, uint(2), c.Lines[1].Product.StockQuantity)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	c := New()
	require.True(t, c.Add(pandesal()))

	c.UpdateQuantity(1, 0)
	require.True(t, c.IsEmpty())
}

func TestUpdateQuantityClamps(t *testing.T) {
	c := New()
	require.True(t, c.Add(pandesal()))

	c.UpdateQuantity(1, 100)
	require.Equal(t, uint(5), c.Lines[1].Quantity)

	c.UpdateQuantity(1, 3)
	require.Equal(t, uint(3), c.Lines[1].Quantity)
}

func TestUpdateQuantityAbsentNoop(t *testing.T) {
	c := New()
	c.UpdateQuantity(42, 3)
	require.True(t, c.IsEmpty())
}

func TestRemoveAbsentNoop(t *testing.T) {
	c := New()
	require.True(t, c.Add(pandesal()))

	c.Remove(42)
	require.Len(t, c.Lines, 1)

	c.Remove(1)
	require.True(t, c.IsEmpty())
}

func TestClear(t *testing.T) {
	c := New()
	require.True(t, c.Add(pandesal()))
	require.True(t, c.Add(ensaymada()))

	c.Clear()
	require.True(t, c.IsEmpty())
}

func TestItemsSortedByProductID(t *testing.T) {
	c := New()
	require.True(t, c.Add(ensaymada()))
	require.True(t, c.Add(pandesal()))

	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, uint(1), items[0].Product.ID)
	require.Equal(t, uint(2), items[1].Product.ID)
}

func TestReclampDropsUnavailable(t *testing.T) {
	c := New()
	require.True(t, c.Add(pandesal()))
	require.True(t, c.Add(ensaymada()))

	gone := ensaymada()
	gone.IsAvailable = false
	c.Reclamp(map[uint]models.Product{
		1: pandesal(),
		2: gone,
	})

	require.Len(t, c.Lines, 1)
	require.Contains(t, c.Lines, uint(1))
}

func TestReclampShrinksToLiveStock(t *testing.T) {
	c := New()
	p := pandesal()
	require.True(t, c.Add(p))
	c.UpdateQuantity(1, 5)

	p.StockQuantity = 2
	c.Reclamp(map[uint]models.Product{1: p})

	require.Equal(t, uint(2), c.Lines[1].Quantity)
	require.Equal(t, uint(2), c.Lines[1].Product.StockQuantity)
}

func TestReclampDropsMissingProducts(t *testing.T) {
	c := New()
	require.True(t, c.Add(pandesal()))

	c.Reclamp(map[uint]models.Product{})
	require.True(t, c.IsEmpty())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, c.IsEmpty())

	require.True(t, c.Add(pandesal()))
	require.NoError(t, store.Save(ctx, "s1", c))

	// Mutating the saved cart must not leak into the store.
	c.Clear()

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)

	require.NoError(t, store.Delete(ctx, "s1"))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, got.IsEmpty())
}
