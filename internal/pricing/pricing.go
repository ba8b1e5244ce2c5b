// Package pricing computes the figures payment screens show before confirmation:
// cart totals, VAT breakdowns and currency conversion.
//
// Arithmetic runs on decimals and is rounded to minor units on the way out, so
// float inputs like 0.1 + 0.2 do not leak binary error into balances.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

// MinorUnits is the number of decimal places money is kept to.
const MinorUnits = 2

// CartTotals is the priced summary of a cart.
type CartTotals struct {
	Subtotal    float64
	DeliveryFee float64
	GrandTotal  float64
	Units       int
}

// Cart sums the cart lines and adds one delivery fee for the whole order.
// Lines with a non-positive quantity are ignored.
func Cart(items []models.CartItem, deliveryFee float64) CartTotals {
	subtotal := decimal.Zero
	units := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		units += item.Quantity
	}
	if units == 0 {
		return CartTotals{}
	}

	fee := decimal.NewFromFloat(deliveryFee)
	return CartTotals{
		Subtotal:    money(subtotal),
		DeliveryFee: money(fee),
		GrandTotal:  money(subtotal.Add(fee)),
		Units:       units,
	}
}

// Tax splits VAT on top of base: vat = base × rate, total = base + vat.
// A zero rate yields no breakdown.
func Tax(base, rate float64) (*models.TaxBreakdown, error) {
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("vat rate must be in [0, 1), got %v", rate)
	}
	if base < 0 {
		return nil, fmt.Errorf("base amount cannot be negative")
	}
	if rate == 0 {
		return nil, nil
	}

	b := decimal.NewFromFloat(base)
	vat := b.Mul(decimal.NewFromFloat(rate)).Round(MinorUnits)
	return &models.TaxBreakdown{
		Base:  money(b),
		Rate:  rate,
		VAT:   money(vat),
		Total: money(b.Add(vat)),
	}, nil
}

// Convert applies an exchange rate for international transfers.
func Convert(amount, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, fmt.Errorf("exchange rate must be positive")
	}
	return money(decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate))), nil
}

// Add sums amounts exactly and rounds the result to minor units.
func Add(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return money(sum)
}

// Round rounds to minor currency units.
func Round(v float64) float64 {
	return money(decimal.NewFromFloat(v))
}

func money(d decimal.Decimal) float64 {
	return d.Round(MinorUnits).InexactFloat64()
}
