package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kslmndz/bakery_shop/internal/cart"
	"github.com/kslmndz/bakery_shop/internal/models"
)

func line(id uint, name string, price float64, qty uint) cart.Line {
	return cart.Line{
		Product:  models.Product{ID: id, Name: name, Price: price, StockQuantity: 100, IsAvailable: true},
		Quantity: qty,
	}
}

func TestBakeryScenario(t *testing.T) {
	lines := []cart.Line{
		line(1, "Pandesal", 10, 3),
		line(2, "Ensaymada", 25, 2),
	}

	subtotal := Subtotal(lines)
	require.InDelta(t, 80.00, subtotal, 1e-9)
	require.InDelta(t, 9.60, Tax(subtotal), 1e-9)
	require.InDelta(t, 50.00, DeliveryFee(), 1e-9)
	require.InDelta(t, 139.60, Total(subtotal), 1e-9)
}

func TestSubtotalEmpty(t *testing.T) {
	require.Zero(t, Subtotal(nil))
}

func TestSubtotalAdditive(t *testing.T) {
	a := []cart.Line{line(1, "Pandesal", 10, 3)}
	b := []cart.Line{line(2, "Ensaymada", 25, 2), line(3, "Bibingka", 35.5, 1)}

	both := append(append([]cart.Line{}, a...), b...)
	require.InDelta(t, Subtotal(a)+Subtotal(b), Subtotal(both), 1e-9)
}

func TestTotalFormula(t *testing.T) {
	carts := [][]cart.Line{
		{line(1, "Pandesal", 10, 1)},
		{line(1, "Pandesal", 10, 3), line(2, "Ensaymada", 25, 2)},
		{line(4, "Ube Roll", 120.75, 4)},
	}

	for _, lines := range carts {
		subtotal := Subtotal(lines)
		require.InDelta(t, subtotal+50.00+0.12*subtotal, Total(subtotal), 1e-9)
	}
}
