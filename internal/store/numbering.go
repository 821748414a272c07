package store

import (
	"context"
	"fmt"
	"time"

	"invoicer/pkg/models"
)

// GenerateInvoiceNumber formats PREFIX-YYYYMM-NNN from the settings seed and
// the month of at. The seed is not reset when the month changes.
func GenerateInvoiceNumber(settings models.Settings, at time.Time) string {
	return fmt.Sprintf("%s-%s-%03d", settings.InvoicePrefix, at.Format("200601"), settings.NumberSeed)
}

// NextInvoiceNumber previews the number the next created invoice will get.
func (s *Store) NextInvoiceNumber(ctx context.Context) (string, error) {
	var number string
	err := s.view(ctx, func(doc *Document) error {
		number = GenerateInvoiceNumber(doc.Settings, s.now())
		return nil
	})
	return number, err
}

// assignNumber gives inv the next number and consumes the seed.
// A number already taken (possible after importing an older seed) is skipped.
func (s *Store) assignNumber(doc *Document, inv *models.Invoice, at time.Time) {
	skipped := 0
	for {
		inv.ID = GenerateInvoiceNumber(doc.Settings, at)
		doc.Settings.NumberSeed++
		if doc.invoiceIndex(inv.ID) < 0 {
			break
		}
		skipped++
		s.log.Warn().
			Str("number", inv.ID).
			Msg("Invoice number already in use, skipping seed")
	}
	if skipped > 0 {
		s.log.Warn().
			Str("number", inv.ID).
			Int("skipped", skipped).
			Int("seed", doc.Settings.NumberSeed).
			Msg("Seed advanced past numbers in use")
	}
}
