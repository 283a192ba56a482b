// Package pricing computes order totals. All functions are pure and
// recomputed on every read; carts are small enough that caching would
// buy nothing.
package pricing

import "github.com/kslmndz/bakery_shop/internal/cart"

const (
	// Flat fee per order, independent of cart size or distance.
	FlatDeliveryFee = 50.00
	// Flat tax rate, no category exemptions.
	TaxRate = 0.12
)

func Subtotal(lines []cart.Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Product.Price * float64(l.Quantity)
	}
	return sum
}

func DeliveryFee() float64 {
	return FlatDeliveryFee
}

func Tax(subtotal float64) float64 {
	return subtotal * TaxRate
}

func Total(subtotal float64) float64 {
	return subtotal + DeliveryFee() + Tax(subtotal)
}
