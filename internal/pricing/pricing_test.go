package pricing

import (
	"math"
	"testing"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

func TestCart(t *testing.T) {
	tests := []struct {
		name        string
		items       []models.CartItem
		deliveryFee float64
		want        CartTotals
	}{
		{
			name: "two lines with delivery fee",
			items: []models.CartItem{
				{ProductID: "p1", Price: 250, Quantity: 2},
				{ProductID: "p2", Price: 99.5, Quantity: 1},
			},
			deliveryFee: 60,
			want:        CartTotals{Subtotal: 599.5, DeliveryFee: 60, GrandTotal: 659.5, Units: 3},
		},
		{
			name: "zero quantity lines are skipped",
			items: []models.CartItem{
				{ProductID: "p1", Price: 100, Quantity: 0},
				{ProductID: "p2", Price: 40, Quantity: 1},
			},
			deliveryFee: 0,
			want:        CartTotals{Subtotal: 40, GrandTotal: 40, Units: 1},
		},
		{
			name:        "empty cart has no delivery fee",
			items:       nil,
			deliveryFee: 60,
			want:        CartTotals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cart(tt.items, tt.deliveryFee)
			if got != tt.want {
				t.Errorf("Cart() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTax(t *testing.T) {
	t.Run("five percent VAT", func(t *testing.T) {
		tax, err := Tax(1200, 0.05)
		if err != nil {
			t.Fatalf("Tax failed: %v", err)
		}
		if math.Abs(tax.VAT-60) > 0.001 {
			t.Errorf("VAT = %v, want 60", tax.VAT)
		}
		if math.Abs(tax.Total-1260) > 0.001 {
			t.Errorf("Total = %v, want 1260", tax.Total)
		}
	})

	t.Run("zero rate yields no breakdown", func(t *testing.T) {
		tax, err := Tax(500, 0)
		if err != nil {
			t.Fatalf("Tax failed: %v", err)
		}
		if tax != nil {
			t.Errorf("expected nil breakdown, got %+v", tax)
		}
	})

	t.Run("invalid rate errors", func(t *testing.T) {
		if _, err := Tax(100, 1.5); err == nil {
			t.Error("expected error for rate >= 1")
		}
		if _, err := Tax(100, -0.1); err == nil {
			t.Error("expected error for negative rate")
		}
	})
}

func TestConvert(t *testing.T) {
	got, err := Convert(100, 0.0091)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != 0.91 {
		t.Errorf("Convert() = %v, want 0.91", got)
	}

	if _, err := Convert(100, 0); err == nil {
		t.Error("expected error for zero rate")
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    float64
	}{
		{name: "binary fractions", amounts: []float64{0.1, 0.2}, want: 0.3},
		{name: "debit", amounts: []float64{100, -33.33}, want: 66.67},
		{name: "rounds half away from zero", amounts: []float64{1.005}, want: 1.01},
		{name: "empty", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Add(tt.amounts...); got != tt.want {
				t.Errorf("Add(%v) = %v, want %v", tt.amounts, got, tt.want)
			}
		})
	}
}
