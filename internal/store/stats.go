package store

import (
	"context"

	"github.com/shopspring/decimal"
	"invoicer/pkg/models"
)

// Stats summarizes the invoice collection.
type Stats struct {
	Total int `json:"total"`
	// Unpaid counts open invoices that are not overdue, due-soon included.
	Unpaid  int `json:"unpaid"`
	DueSoon int `json:"dueSoon"`
	Overdue int `json:"overdue"`
	Paid    int `json:"paid"`

	// Outstanding is the grand total of every invoice not yet paid.
	Outstanding decimal.Decimal `json:"outstanding"`
	// PaidThisMonth sums grand totals of invoices paid (by UpdatedAt) in the
	// current calendar month.
	PaidThisMonth decimal.Decimal `json:"paidThisMonth"`
}

// InvoiceStats computes Stats from the stored invoices without modifying them.
// Overdue is derived from the due date; use AdvanceOverdue to persist it.
func (s *Store) InvoiceStats(ctx context.Context) (Stats, error) {
	stats := Stats{Outstanding: decimal.Zero, PaidThisMonth: decimal.Zero}
	err := s.view(ctx, func(doc *Document) error {
		now := s.now()
		today := s.today()
		year, month, _ := now.Date()

		for i := range doc.Invoices {
			inv := &doc.Invoices[i]
			stats.Total++

			switch inv.DisplayStatus(today) {
			case models.StatusPaid:
				stats.Paid++
				y, m, _ := inv.UpdatedAt.In(now.Location()).Date()
				if y == year && m == month {
					stats.PaidThisMonth = stats.PaidThisMonth.Add(inv.Totals.Grand)
				}
				continue
			case models.StatusOverdue:
				stats.Overdue++
			case models.StatusDueSoon:
				stats.DueSoon++
				stats.Unpaid++
			default:
				stats.Unpaid++
			}
			stats.Outstanding = stats.Outstanding.Add(inv.Totals.Grand)
		}
		return nil
	})
	return stats, err
}
