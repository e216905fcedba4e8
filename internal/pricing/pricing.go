// Package pricing computes the itemized totals of a cart or order. The
// computation is pure: it never touches the catalog or any store, so a
// snapshot priced at checkout stays frozen no matter how catalog prices
// move afterwards.
package pricing

import "github.com/shopspring/decimal"

const (
	freeShippingThreshold = 100
	flatShippingRate      = 10
	taxRate               = 0.15
)

type Item struct {
	Price float64
	Qty   int
}

type Totals struct {
	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64
}

// Calculate returns the four price components, each rounded to two decimal
// places half-up. Shipping is free once the items total strictly exceeds
// 100, tax is a flat 15% of the items total, and the grand total sums the
// already-rounded components.
func Calculate(items []Item) Totals {
	itemsPrice := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty)))
		itemsPrice = itemsPrice.Add(line)
	}
	itemsPrice = itemsPrice.Round(2)

	shippingPrice := decimal.NewFromInt(flatShippingRate)
	if itemsPrice.GreaterThan(decimal.NewFromInt(freeShippingThreshold)) {
		shippingPrice = decimal.Zero
	}

	taxPrice := itemsPrice.Mul(decimal.NewFromFloat(taxRate)).Round(2)

	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice).Round(2)

	return Totals{
		ItemsPrice:    itemsPrice.InexactFloat64(),
		ShippingPrice: shippingPrice.InexactFloat64(),
		TaxPrice:      taxPrice.InexactFloat64(),
		TotalPrice:    totalPrice.InexactFloat64(),
	}
}
