package orders

import "github.com/anshikasharma148/restaurant-management-metro/internal/domain"

// CalculateTotals derives the four money fields of an order from its line
// items, the tax rate and a discount percentage. Tax applies to the
// post-discount amount. No rounding happens here; presentation rounding is
// the caller's concern. An empty item list yields all zeros.
func CalculateTotals(items []domain.OrderLineItem, taxRatePercent, discountPercent float64) domain.OrderTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	discount := subtotal * (discountPercent / 100)
	taxable := subtotal - discount
	tax := taxable * (taxRatePercent / 100)

	return domain.OrderTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable + tax,
	}
}
