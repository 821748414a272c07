package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"invoicer/pkg/models"
)

// Invoices returns every invoice in stored order.
func (s *Store) Invoices(ctx context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	err := s.view(ctx, func(doc *Document) error {
		out = doc.Invoices
		return nil
	})
	return out, err
}

// GetInvoice returns the invoice numbered id.
func (s *Store) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var out *models.Invoice
	err := s.view(ctx, func(doc *Document) error {
		idx := doc.invoiceIndex(id)
		if idx < 0 {
			return notFound("GetInvoice", "invoice", id)
		}
		out = &doc.Invoices[idx]
		return nil
	})
	return out, err
}

// InvoicesForClient returns the invoices referencing clientID. Callers use it
// to refuse deleting clients that are still billed.
func (s *Store) InvoicesForClient(ctx context.Context, clientID string) ([]models.Invoice, error) {
	out := []models.Invoice{}
	err := s.view(ctx, func(doc *Document) error {
		for _, inv := range doc.Invoices {
			if inv.ClientID == clientID {
				out = append(out, inv)
			}
		}
		return nil
	})
	return out, err
}

// SaveInvoice validates and persists inv, returning the stored record.
//
// An empty ID creates a new invoice: it is numbered from the settings seed,
// stamped and appended, and the seed advances by one. A set ID replaces the
// stored invoice with that number, keeping its CreatedAt.
func (s *Store) SaveInvoice(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	const op = "SaveInvoice"
	if inv == nil {
		return nil, NewError(op, errors.New("nil invoice"), "")
	}

	rec := inv.Clone()
	if rec.Status == "" {
		rec.Status = models.StatusUnpaid
	}
	rec.Totals = rec.CalculateTotals()
	if result := rec.Validate(); !result.Valid {
		s.log.Debug().
			Str("invoice", rec.ID).
			Strs("errors", result.Errors).
			Msg("Invoice rejected by validation")
		return nil, &ValidationError{Op: op, Result: result}
	}

	created := rec.ID == ""
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		ts := s.now()
		if created {
			s.createInvoice(doc, rec, ts)
			return true, nil
		}

		idx := doc.invoiceIndex(rec.ID)
		if idx < 0 {
			return false, notFound(op, "invoice", rec.ID)
		}
		rec.CreatedAt = doc.Invoices[idx].CreatedAt
		rec.UpdatedAt = ts
		doc.Invoices[idx] = *rec
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice", rec.ID).
		Bool("created", created).
		Str("grand", rec.Totals.Grand.StringFixed(models.MoneyPlaces)).
		Msg("Invoice saved")
	return rec.Clone(), nil
}

// createInvoice numbers, stamps and appends rec.
func (s *Store) createInvoice(doc *Document, rec *models.Invoice, ts time.Time) {
	s.assignNumber(doc, rec, ts)
	rec.CreatedAt = ts
	rec.UpdatedAt = ts
	doc.Invoices = append(doc.Invoices, *rec.Clone())
}

// DeleteInvoice removes the invoice numbered id, reporting whether it existed.
func (s *Store) DeleteInvoice(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		idx := doc.invoiceIndex(id)
		if idx < 0 {
			return false, nil
		}
		doc.Invoices = append(doc.Invoices[:idx], doc.Invoices[idx+1:]...)
		deleted = true
		return true, nil
	})
	if deleted {
		s.log.Info().Str("invoice", id).Msg("Invoice deleted")
	}
	return deleted, err
}

// DuplicateInvoice stores a copy of invoice id reissued today under a new number.
func (s *Store) DuplicateInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var dup *models.Invoice
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		idx := doc.invoiceIndex(id)
		if idx < 0 {
			return false, notFound("DuplicateInvoice", "invoice", id)
		}
		ts := s.now()
		dup = doc.Invoices[idx].Duplicate(civil.DateOf(ts))
		s.createInvoice(doc, dup, ts)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("source", id).
		Str("invoice", dup.ID).
		Msg("Invoice duplicated")
	return dup, nil
}

// MarkPaid sets invoice id to paid and stamps UpdatedAt.
func (s *Store) MarkPaid(ctx context.Context, id string) (*models.Invoice, error) {
	var out *models.Invoice
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		idx := doc.invoiceIndex(id)
		if idx < 0 {
			return false, notFound("MarkPaid", "invoice", id)
		}
		inv := &doc.Invoices[idx]
		inv.MarkPaid()
		inv.UpdatedAt = s.now()
		out = inv.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice", id).Msg("Invoice marked paid")
	return out, nil
}

// AdvanceOverdue persists the unpaid-to-overdue transition for every invoice
// whose due date has passed, returning how many changed.
func (s *Store) AdvanceOverdue(ctx context.Context) (int, error) {
	var count int
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		today := s.today()
		for i := range doc.Invoices {
			next, changed := models.AdvanceOverdue(doc.Invoices[i], today)
			if changed {
				doc.Invoices[i] = next
				count++
			}
		}
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info().Int("count", count).Msg("Invoices moved to overdue")
	}
	return count, nil
}

// GenerateRecurring issues the next invoice for every enabled recurring
// invoice whose next run is today or earlier. Generated invoices carry no
// schedule of their own. The source's next run moves past today, so missed
// periods produce a single invoice.
func (s *Store) GenerateRecurring(ctx context.Context) ([]models.Invoice, error) {
	generated := []models.Invoice{}
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		ts := s.now()
		today := civil.DateOf(ts)
		sources := len(doc.Invoices)
		for i := 0; i < sources; i++ {
			src := &doc.Invoices[i]
			if !src.Recurring.Due(today) {
				continue
			}

			inv := src.Duplicate(today)
			inv.Recurring = nil

			next := *src.Recurring.NextRun
			for !next.After(today) {
				next = src.Recurring.Next(next)
			}
			src.Recurring.NextRun = &next

			// createInvoice may grow doc.Invoices; src is not used after this.
			s.createInvoice(doc, inv, ts)
			generated = append(generated, *inv)

			s.log.Info().
				Str("source", doc.Invoices[i].ID).
				Str("invoice", inv.ID).
				Str("next_run", next.String()).
				Msg("Recurring invoice generated")
		}
		return len(generated) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return generated, nil
}
