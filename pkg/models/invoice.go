package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// now is swapped in tests.
var now = time.Now

// Totals is the cached snapshot of an invoice's derived amounts.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Grand    decimal.Decimal `json:"grand"`
}

// Invoice is a bill issued to a client.
type Invoice struct {
	// ID is the business-visible invoice number, empty until first saved.
	ID       string `json:"id"`
	ClientID string `json:"clientId"`

	IssueDate civil.Date `json:"issueDate"`
	DueDate   civil.Date `json:"dueDate"`
	Terms     string     `json:"terms"`

	// Items are kept in entry order.
	Items    []LineItem      `json:"items"`
	Shipping decimal.Decimal `json:"shipping"`
	Notes    string          `json:"notes"`

	Status    Status     `json:"status"`
	Recurring *Recurring `json:"recurring"`
	Totals    Totals     `json:"totals"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewInvoice creates an unsaved draft issued on today with a single blank item.
func NewInvoice(today civil.Date) *Invoice {
	inv := &Invoice{
		IssueDate: today,
		Terms:     DefaultTerms,
		Items:     []LineItem{},
		Shipping:  decimal.Zero,
		Status:    StatusUnpaid,
	}
	inv.DueDate = inv.CalculateDueDateFromTerms(today)
	inv.AddItem(ItemFields{})
	return inv
}

// AddItem appends a new line item built from fields and returns it.
func (inv *Invoice) AddItem(fields ItemFields) *LineItem {
	inv.Items = append(inv.Items, NewLineItem(fields))
	inv.UpdateTotals()
	return &inv.Items[len(inv.Items)-1]
}

// RemoveItem deletes the item with id, reporting whether it existed.
func (inv *Invoice) RemoveItem(id string) bool {
	idx := inv.itemIndex(id)
	if idx < 0 {
		return false
	}
	inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
	inv.UpdateTotals()
	return true
}

// UpdateItem applies the set fields to the item with id.
// It returns nil when no such item exists.
func (inv *Invoice) UpdateItem(id string, fields ItemFields) *LineItem {
	idx := inv.itemIndex(id)
	if idx < 0 {
		return nil
	}
	inv.Items[idx].Apply(fields)
	inv.UpdateTotals()
	return &inv.Items[idx]
}

// Item returns the item with id, or nil.
func (inv *Invoice) Item(id string) *LineItem {
	idx := inv.itemIndex(id)
	if idx < 0 {
		return nil
	}
	return &inv.Items[idx]
}

func (inv *Invoice) itemIndex(id string) int {
	for i := range inv.Items {
		if inv.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// CalculateDueDateFromTerms returns the due date implied by the invoice's
// terms for the given issue date. It does not modify the invoice.
func (inv *Invoice) CalculateDueDateFromTerms(issue civil.Date) civil.Date {
	return DueDateFromTerms(issue, inv.Terms)
}

// CalculateTotals derives the invoice totals from its items and shipping.
// Item components are rounded first and then summed.
func (inv *Invoice) CalculateTotals() Totals {
	t := Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: Round2(inv.Shipping),
	}
	for _, item := range inv.Items {
		lt := item.Totals()
		t.Subtotal = t.Subtotal.Add(lt.Subtotal)
		t.Discount = t.Discount.Add(lt.Discount)
		t.Tax = t.Tax.Add(lt.Tax)
	}
	t.Grand = t.Subtotal.Sub(t.Discount).Add(t.Tax).Add(t.Shipping)
	return t
}

// UpdateTotals refreshes the cached totals and stamps UpdatedAt.
func (inv *Invoice) UpdateTotals() {
	inv.Totals = inv.CalculateTotals()
	inv.UpdatedAt = now()
}

// Validate checks the invoice-level invariants and every line item.
func (inv *Invoice) Validate() ValidationResult {
	var errs []string
	if !inv.IssueDate.IsValid() {
		errs = append(errs, "Issue date is required")
	}
	if !inv.DueDate.IsValid() {
		errs = append(errs, "Due date is required")
	}
	if inv.IssueDate.IsValid() && !storableDate(inv.IssueDate) {
		errs = append(errs, "Issue date is out of range")
	}
	if inv.DueDate.IsValid() && !storableDate(inv.DueDate) {
		errs = append(errs, "Due date is out of range")
	}
	if inv.IssueDate.IsValid() && inv.DueDate.IsValid() && !inv.DueDate.After(inv.IssueDate) {
		errs = append(errs, "Due date must be after issue date")
	}
	if len(inv.Items) == 0 {
		errs = append(errs, "At least one line item is required")
	}
	if inv.Shipping.IsNegative() {
		errs = append(errs, "Shipping cannot be negative")
	}
	switch inv.Status {
	case "", StatusUnpaid, StatusPaid, StatusOverdue:
	default:
		errs = append(errs, fmt.Sprintf("Status %q cannot be stored", inv.Status))
	}
	errs = append(errs, inv.Recurring.validate()...)
	for i, item := range inv.Items {
		if r := item.Validate(); !r.Valid {
			errs = append(errs, r.prefixed("Item %d: ", i+1)...)
		}
	}
	return newResult(errs)
}

// Clone returns a deep copy of the invoice.
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	c.Items = make([]LineItem, len(inv.Items))
	copy(c.Items, inv.Items)
	c.Recurring = inv.Recurring.clone()
	return &c
}

// Duplicate returns an unsaved copy reissued on today: blank ID, unpaid,
// due date recomputed from the terms and fresh timestamps. Items, client,
// notes, shipping and recurrence are copied.
func (inv *Invoice) Duplicate(today civil.Date) *Invoice {
	d := inv.Clone()
	d.ID = ""
	d.Status = StatusUnpaid
	d.IssueDate = today
	d.DueDate = d.CalculateDueDateFromTerms(today)
	ts := now()
	d.CreatedAt = ts
	d.UpdatedAt = ts
	d.Totals = d.CalculateTotals()
	return d
}

// String implements fmt.Stringer for logging.
func (inv *Invoice) String() string {
	id := inv.ID
	if id == "" {
		id = "draft"
	}
	return fmt.Sprintf("%s (%s, %s)", id, inv.Status, inv.Totals.Grand.StringFixed(MoneyPlaces))
}
