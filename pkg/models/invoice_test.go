package models

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) civil.Date {
	dt, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return dt
}

func fixClock(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestNewInvoice(t *testing.T) {
	inv := NewInvoice(date("2024-03-10"))

	assert.Empty(t, inv.ID)
	assert.Equal(t, StatusUnpaid, inv.Status)
	assert.Equal(t, DefaultTerms, inv.Terms)
	assert.Equal(t, date("2024-04-09"), inv.DueDate)
	require.Len(t, inv.Items, 1)
	assert.Empty(t, inv.Items[0].Description)
	assert.Equal(t, "1", inv.Items[0].Qty.String())
}

func TestInvoice_ReferenceTotals(t *testing.T) {
	inv := &Invoice{Shipping: d("50")}
	inv.AddItem(ItemFields{
		Description:  String("Consulting"),
		Qty:          Dec(d("2")),
		UnitPrice:    Dec(d("100")),
		TaxRate:      Dec(d("12")),
		DiscountRate: Dec(d("10")),
	})

	lt := inv.Items[0].Totals()
	assert.Equal(t, "200.00", lt.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", lt.Discount.StringFixed(2))
	assert.Equal(t, "180.00", lt.TaxableBase.StringFixed(2))
	assert.Equal(t, "21.60", lt.Tax.StringFixed(2))
	assert.Equal(t, "201.60", lt.Total.StringFixed(2))

	assert.Equal(t, "200.00", inv.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", inv.Totals.Discount.StringFixed(2))
	assert.Equal(t, "21.60", inv.Totals.Tax.StringFixed(2))
	assert.Equal(t, "50.00", inv.Totals.Shipping.StringFixed(2))
	assert.Equal(t, "251.60", inv.Totals.Grand.StringFixed(2))
}

func TestInvoice_TotalsSumRoundedItems(t *testing.T) {
	inv := &Invoice{}
	for i := 0; i < 3; i++ {
		inv.AddItem(ItemFields{Description: String("Sticker"), UnitPrice: Dec(d("0.005"))})
	}

	// Each item rounds 0.005 up to 0.01; the unrounded sum 0.015 would round to 0.02.
	assert.Equal(t, "0.03", inv.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "0.03", inv.Totals.Grand.StringFixed(2))

	unrounded := d("0.005").Mul(d("3"))
	assert.Equal(t, "0.02", Round2(unrounded).StringFixed(2))
}

func TestInvoice_GrandIdentity(t *testing.T) {
	inv := &Invoice{Shipping: d("7.255")}
	inv.AddItem(ItemFields{Description: String("A"), Qty: Dec(d("3")), UnitPrice: Dec(d("9.99")), TaxRate: Dec(d("8.25"))})
	inv.AddItem(ItemFields{Description: String("B"), Qty: Dec(d("0.5")), UnitPrice: Dec(d("120")), DiscountRate: Dec(d("15")), TaxRate: Dec(d("20"))})

	tot := inv.CalculateTotals()
	want := tot.Subtotal.Sub(tot.Discount).Add(tot.Tax).Add(tot.Shipping)
	assert.True(t, want.Equal(tot.Grand), "grand %s, want %s", tot.Grand, want)
	assert.Equal(t, "7.26", tot.Shipping.StringFixed(2))
}

func TestInvoice_ItemEditing(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	fixClock(t, ts)

	inv := &Invoice{}
	first := inv.AddItem(ItemFields{Description: String("Widget"), UnitPrice: Dec(d("10"))})
	firstID := first.ID
	second := inv.AddItem(ItemFields{Description: String("Gadget"), UnitPrice: Dec(d("5"))})
	secondID := second.ID
	assert.Equal(t, "15.00", inv.Totals.Grand.StringFixed(2))
	assert.Equal(t, ts, inv.UpdatedAt)

	updated := inv.UpdateItem(firstID, ItemFields{Qty: Dec(d("3"))})
	require.NotNil(t, updated)
	assert.Equal(t, "Widget", updated.Description, "unset fields are left alone")
	assert.Equal(t, "35.00", inv.Totals.Grand.StringFixed(2))

	assert.Nil(t, inv.UpdateItem("missing", ItemFields{Qty: Dec(d("9"))}))

	assert.False(t, inv.RemoveItem("missing"))
	assert.True(t, inv.RemoveItem(firstID))
	require.Len(t, inv.Items, 1)
	assert.Equal(t, secondID, inv.Items[0].ID)
	assert.Equal(t, "5.00", inv.Totals.Grand.StringFixed(2))
	assert.Nil(t, inv.Item(firstID))
}

func TestDueDateFromTerms(t *testing.T) {
	issue := date("2024-01-01")
	tests := []struct {
		terms string
		want  string
	}{
		{"Net 30", "2024-01-31"},
		{"net 15", "2024-01-16"},
		{"NET45", "2024-02-15"},
		{"Payment due Net 60 days", "2024-03-01"},
		{"garbage", "2024-01-31"},
		{"", "2024-01-31"},
		{"Due on receipt", "2024-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.terms, func(t *testing.T) {
			assert.Equal(t, tt.want, DueDateFromTerms(issue, tt.terms).String())
		})
	}

	inv := &Invoice{Terms: "Net 7", DueDate: date("2030-01-01")}
	assert.Equal(t, "2024-01-08", inv.CalculateDueDateFromTerms(issue).String())
	assert.Equal(t, "2030-01-01", inv.DueDate.String(), "due date is not written back")
}

func validInvoice() *Invoice {
	inv := NewInvoice(date("2024-01-01"))
	inv.UpdateItem(inv.Items[0].ID, ItemFields{Description: String("Audit"), UnitPrice: Dec(d("400"))})
	inv.ClientID = "client-1"
	return inv
}

func TestInvoice_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invoice)
		want   []string
	}{
		{"valid", func(*Invoice) {}, []string{}},
		{"due equals issue", func(inv *Invoice) { inv.DueDate = inv.IssueDate }, []string{"Due date must be after issue date"}},
		{"due before issue", func(inv *Invoice) { inv.DueDate = inv.IssueDate.AddDays(-1) }, []string{"Due date must be after issue date"}},
		{"no items", func(inv *Invoice) { inv.Items = nil }, []string{"At least one line item is required"}},
		{"negative shipping", func(inv *Invoice) { inv.Shipping = d("-0.01") }, []string{"Shipping cannot be negative"}},
		{"missing dates", func(inv *Invoice) { inv.IssueDate = civil.Date{}; inv.DueDate = civil.Date{} }, []string{"Issue date is required", "Due date is required"}},
		{
			"item errors are prefixed",
			func(inv *Invoice) {
				inv.AddItem(ItemFields{Qty: Dec(d("0"))})
			},
			[]string{"Item 2: Description is required", "Item 2: Quantity must be greater than 0"},
		},
		{
			"terms past the last storable year",
			func(inv *Invoice) {
				inv.Terms = "Net 3000000"
				inv.DueDate = inv.CalculateDueDateFromTerms(inv.IssueDate)
			},
			[]string{"Due date is out of range"},
		},
		{
			"far future recurring run",
			func(inv *Invoice) {
				next := civil.Date{Year: 10000, Month: time.January, Day: 1}
				inv.Recurring = &Recurring{Enabled: true, Interval: IntervalMonthly, NextRun: &next}
			},
			[]string{"Recurring next run date is invalid"},
		},
		{"derived status", func(inv *Invoice) { inv.Status = StatusDueSoon }, []string{`Status "due-soon" cannot be stored`}},
		{
			"bad recurring interval",
			func(inv *Invoice) { inv.Recurring = &Recurring{Enabled: true, Interval: "daily"} },
			[]string{`Recurring interval "daily" is not supported`},
		},
		{
			"disabled recurring is ignored",
			func(inv *Invoice) { inv.Recurring = &Recurring{Interval: "daily"} },
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(inv)
			got := inv.Validate()
			assert.Equal(t, len(tt.want) == 0, got.Valid)
			assert.Equal(t, tt.want, got.Errors)
		})
	}
}

func TestInvoice_DisplayStatus(t *testing.T) {
	due := date("2024-06-20")
	tests := []struct {
		name   string
		status Status
		today  string
		want   Status
	}{
		{"far from due", StatusUnpaid, "2024-06-01", StatusUnpaid},
		{"six days out", StatusUnpaid, "2024-06-14", StatusUnpaid},
		{"five days out", StatusUnpaid, "2024-06-15", StatusDueSoon},
		{"due today", StatusUnpaid, "2024-06-20", StatusDueSoon},
		{"one day late", StatusUnpaid, "2024-06-21", StatusOverdue},
		{"paid and late", StatusPaid, "2024-07-30", StatusPaid},
		{"sticky overdue", StatusOverdue, "2024-06-01", StatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{Status: tt.status, DueDate: due}
			assert.Equal(t, tt.want, inv.DisplayStatus(date(tt.today)))
		})
	}
}

func TestAdvanceOverdue(t *testing.T) {
	inv := Invoice{Status: StatusUnpaid, DueDate: date("2024-06-20")}

	same, changed := AdvanceOverdue(inv, date("2024-06-20"))
	assert.False(t, changed)
	assert.Equal(t, StatusUnpaid, same.Status)

	late, changed := AdvanceOverdue(inv, date("2024-06-21"))
	assert.True(t, changed)
	assert.Equal(t, StatusOverdue, late.Status)
	assert.Equal(t, StatusUnpaid, inv.Status, "input is not modified")

	paid := Invoice{Status: StatusPaid, DueDate: date("2024-01-01")}
	_, changed = AdvanceOverdue(paid, date("2024-06-21"))
	assert.False(t, changed)
}

func TestInvoice_MarkPaid(t *testing.T) {
	inv := &Invoice{Status: StatusOverdue}
	inv.MarkPaid()
	assert.True(t, inv.IsPaid())
	assert.Equal(t, StatusPaid, inv.DisplayStatus(date("2099-01-01")))
}

func TestInvoice_Duplicate(t *testing.T) {
	ts := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	fixClock(t, ts)

	next := date("2024-09-01")
	src := validInvoice()
	src.ID = "INV-202401-001"
	src.Terms = "Net 14"
	src.Status = StatusPaid
	src.Notes = "Thanks"
	src.Shipping = d("12.5")
	src.Recurring = &Recurring{Enabled: true, Interval: IntervalMonthly, NextRun: &next}
	src.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	dup := src.Duplicate(date("2024-08-15"))

	assert.Empty(t, dup.ID)
	assert.Equal(t, StatusUnpaid, dup.Status)
	assert.Equal(t, "2024-08-15", dup.IssueDate.String())
	assert.Equal(t, "2024-08-29", dup.DueDate.String())
	assert.Equal(t, ts, dup.CreatedAt)
	assert.Equal(t, ts, dup.UpdatedAt)
	assert.Equal(t, src.ClientID, dup.ClientID)
	assert.Equal(t, src.Notes, dup.Notes)
	assert.True(t, src.Shipping.Equal(dup.Shipping))
	require.Len(t, dup.Items, len(src.Items))

	dup.Items[0].Description = "Changed"
	dup.UpdateItem(dup.Items[0].ID, ItemFields{UnitPrice: Dec(d("1"))})
	assert.Equal(t, "Audit", src.Items[0].Description)
	assert.Equal(t, "400", src.Items[0].UnitPrice.String())

	*dup.Recurring.NextRun = date("2030-01-01")
	assert.Equal(t, next, *src.Recurring.NextRun)
}

func TestRecurring_Next(t *testing.T) {
	from := date("2024-01-15")
	tests := []struct {
		interval Interval
		want     string
	}{
		{IntervalWeekly, "2024-01-22"},
		{IntervalMonthly, "2024-02-15"},
		{IntervalQuarterly, "2024-04-15"},
		{IntervalYearly, "2025-01-15"},
	}
	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			assert.Equal(t, tt.want, Recurring{Interval: tt.interval}.Next(from).String())
		})
	}

	run := date("2024-02-01")
	r := &Recurring{Enabled: true, Interval: IntervalMonthly, NextRun: &run}
	assert.False(t, r.Due(date("2024-01-31")))
	assert.True(t, r.Due(date("2024-02-01")))
	var none *Recurring
	assert.False(t, none.Due(date("2024-02-01")))
}
