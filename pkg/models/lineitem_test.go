package models

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineItem_Totals(t *testing.T) {
	tests := []struct {
		name                                 string
		qty, price, tax, discount            string
		subtotal, disc, base, taxAmt, total string
	}{
		{"reference example", "2", "100", "12", "10", "200.00", "20.00", "180.00", "21.60", "201.60"},
		{"no rates", "3", "19.99", "0", "0", "59.97", "0.00", "59.97", "0.00", "59.97"},
		{"half rounds away from zero", "1", "0.125", "0", "0", "0.13", "0.00", "0.13", "0.00", "0.13"},
		{"fractional qty", "1.5", "33.33", "7.5", "0", "50.00", "0.00", "50.00", "3.75", "53.75"},
		{"full discount", "4", "25", "20", "100", "100.00", "100.00", "0.00", "0.00", "0.00"},
		{"zero qty", "0", "10", "10", "10", "0.00", "0.00", "0.00", "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := LineItem{Qty: d(tt.qty), UnitPrice: d(tt.price), TaxRate: d(tt.tax), DiscountRate: d(tt.discount)}
			got := item.Totals()
			assert.Equal(t, tt.subtotal, got.Subtotal.StringFixed(2), "subtotal")
			assert.Equal(t, tt.disc, got.Discount.StringFixed(2), "discount")
			assert.Equal(t, tt.base, got.TaxableBase.StringFixed(2), "taxable base")
			assert.Equal(t, tt.taxAmt, got.Tax.StringFixed(2), "tax")
			assert.Equal(t, tt.total, got.Total.StringFixed(2), "total")
		})
	}
}

func TestLineItem_TotalsDoNotMutate(t *testing.T) {
	item := LineItem{Qty: d("2"), UnitPrice: d("10.005"), TaxRate: d("5"), DiscountRate: d("0")}
	before := item
	first := item.Totals()
	second := item.Totals()
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, before, item)
}

// With whole quantities the subtotal is exact, leaving two half-cent roundings.
func TestLineItem_TotalsWithinACentOfExact(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cent := d("0.01")
	for i := 0; i < 500; i++ {
		item := LineItem{
			Qty:          decimal.NewFromInt(rng.Int63n(1000)),
			UnitPrice:    decimal.New(rng.Int63n(1000000), -2),
			TaxRate:      decimal.New(rng.Int63n(10001), -2),
			DiscountRate: decimal.New(rng.Int63n(10001), -2),
		}
		sub := item.Qty.Mul(item.UnitPrice)
		disc := sub.Mul(item.DiscountRate).Div(decimal.NewFromInt(100))
		exact := sub.Sub(disc).Add(sub.Sub(disc).Mul(item.TaxRate).Div(decimal.NewFromInt(100)))

		got := item.Totals().Total
		require.True(t, got.Sub(exact).Abs().LessThanOrEqual(cent),
			"item %+v: total %s drifted from exact %s", item, got, exact)
	}
}

func TestLineItem_Validate(t *testing.T) {
	valid := LineItem{Description: "Design work", Qty: d("1"), UnitPrice: d("50"), TaxRate: d("0"), DiscountRate: d("0")}

	tests := []struct {
		name   string
		mutate func(*LineItem)
		want   []string
	}{
		{"valid", func(*LineItem) {}, []string{}},
		{"blank description", func(li *LineItem) { li.Description = "  " }, []string{"Description is required"}},
		{"zero qty", func(li *LineItem) { li.Qty = d("0") }, []string{"Quantity must be greater than 0"}},
		{"negative price", func(li *LineItem) { li.UnitPrice = d("-1") }, []string{"Unit price cannot be negative"}},
		{"tax over 100", func(li *LineItem) { li.TaxRate = d("100.01") }, []string{"Tax rate must be between 0 and 100"}},
		{"negative discount", func(li *LineItem) { li.DiscountRate = d("-5") }, []string{"Discount rate must be between 0 and 100"}},
		{"boundary rates", func(li *LineItem) { li.TaxRate = d("100"); li.DiscountRate = d("0") }, []string{}},
		{
			"several violations keep order",
			func(li *LineItem) { li.Description = ""; li.Qty = d("-1") },
			[]string{"Description is required", "Quantity must be greater than 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)
			got := item.Validate()
			assert.Equal(t, len(tt.want) == 0, got.Valid)
			assert.Equal(t, tt.want, got.Errors)
		})
	}
}

func TestNewLineItem_Defaults(t *testing.T) {
	item := NewLineItem(ItemFields{Description: String("Hosting")})
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Hosting", item.Description)
	assert.Equal(t, "1", item.Qty.String())
	assert.True(t, item.UnitPrice.IsZero())
	assert.True(t, item.TaxRate.IsZero())
	assert.True(t, item.DiscountRate.IsZero())

	other := NewLineItem(ItemFields{})
	assert.NotEqual(t, item.ID, other.ID)
}
