package models

import "cloud.google.com/go/civil"

// Status is the payment state of an invoice.
//
// Only StatusUnpaid, StatusPaid and StatusOverdue are ever persisted.
// StatusDueSoon is a read-time label derived from the due date.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusDueSoon Status = "due-soon"
)

// DueSoonDays is the inclusive window before the due date labelled due-soon.
const DueSoonDays = 5

// DisplayStatus derives the label shown for the invoice on the given day.
// Paid short-circuits every other check.
func (inv *Invoice) DisplayStatus(today civil.Date) Status {
	if inv.Status == StatusPaid {
		return StatusPaid
	}
	if inv.Status == StatusOverdue || inv.DueDate.Before(today) {
		return StatusOverdue
	}
	if inv.DueDate.DaysSince(today) <= DueSoonDays {
		return StatusDueSoon
	}
	return StatusUnpaid
}

// IsPaid reports whether the invoice has been marked paid.
func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

// MarkPaid moves the invoice into the terminal paid state.
func (inv *Invoice) MarkPaid() {
	inv.Status = StatusPaid
}

// AdvanceOverdue returns inv with its persisted status moved from unpaid to
// overdue when the due date has passed. The bool reports whether it changed.
func AdvanceOverdue(inv Invoice, today civil.Date) (Invoice, bool) {
	if inv.Status != StatusUnpaid || !inv.DueDate.Before(today) {
		return inv, false
	}
	inv.Status = StatusOverdue
	return inv, true
}
