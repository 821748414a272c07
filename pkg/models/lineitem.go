package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a single billable row of an invoice.
type LineItem struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Qty          decimal.Decimal `json:"qty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TaxRate      decimal.Decimal `json:"taxRate"`      // percentage, 0-100
	DiscountRate decimal.Decimal `json:"discountRate"` // percentage, 0-100
}

// LineTotals holds the derived amounts of a line item, each rounded to two places.
type LineTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	TaxableBase decimal.Decimal `json:"taxableBase"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// ItemFields carries optional values for creating or editing a line item.
// A nil field is left untouched on update and defaulted on create.
type ItemFields struct {
	Description  *string
	Qty          *decimal.Decimal
	UnitPrice    *decimal.Decimal
	TaxRate      *decimal.Decimal
	DiscountRate *decimal.Decimal
}

// NewLineItem creates an item with a fresh ID, qty 1 and zero price and rates,
// then applies the provided fields.
func NewLineItem(fields ItemFields) LineItem {
	item := LineItem{
		ID:           uuid.NewString(),
		Qty:          decimal.NewFromInt(1),
		UnitPrice:    decimal.Zero,
		TaxRate:      decimal.Zero,
		DiscountRate: decimal.Zero,
	}
	item.Apply(fields)
	return item
}

// Apply copies every non-nil field onto the item.
func (li *LineItem) Apply(fields ItemFields) {
	if fields.Description != nil {
		li.Description = *fields.Description
	}
	if fields.Qty != nil {
		li.Qty = *fields.Qty
	}
	if fields.UnitPrice != nil {
		li.UnitPrice = *fields.UnitPrice
	}
	if fields.TaxRate != nil {
		li.TaxRate = *fields.TaxRate
	}
	if fields.DiscountRate != nil {
		li.DiscountRate = *fields.DiscountRate
	}
}

// Totals derives the item amounts from its current fields.
// Each component is rounded from the exact product, and the total is the sum
// of the rounded components.
func (li LineItem) Totals() LineTotals {
	subtotal := li.Qty.Mul(li.UnitPrice)
	discount := Percent(subtotal, li.DiscountRate)
	taxable := subtotal.Sub(discount)
	tax := Percent(taxable, li.TaxRate)

	t := LineTotals{
		Subtotal:    Round2(subtotal),
		Discount:    Round2(discount),
		TaxableBase: Round2(taxable),
		Tax:         Round2(tax),
	}
	t.Total = Round2(t.Subtotal.Sub(t.Discount).Add(t.Tax))
	return t
}

// Validate checks the item's field rules.
func (li LineItem) Validate() ValidationResult {
	var errs []string
	if strings.TrimSpace(li.Description) == "" {
		errs = append(errs, "Description is required")
	}
	if !li.Qty.IsPositive() {
		errs = append(errs, "Quantity must be greater than 0")
	}
	if li.UnitPrice.IsNegative() {
		errs = append(errs, "Unit price cannot be negative")
	}
	if !inPercentRange(li.TaxRate) {
		errs = append(errs, "Tax rate must be between 0 and 100")
	}
	if !inPercentRange(li.DiscountRate) {
		errs = append(errs, "Discount rate must be between 0 and 100")
	}
	return newResult(errs)
}

// String returns a pointer to s, for building ItemFields.
func String(s string) *string { return &s }

// Dec returns a pointer to d, for building ItemFields.
func Dec(d decimal.Decimal) *decimal.Decimal { return &d }
