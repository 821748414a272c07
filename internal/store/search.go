package store

import (
	"context"
	"strings"

	"invoicer/pkg/models"
)

// SearchInvoices returns invoices whose number, client name and company, or
// notes contain query, ignoring case. An empty query returns every invoice.
func (s *Store) SearchInvoices(ctx context.Context, query string) ([]models.Invoice, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Invoice
	err := s.view(ctx, func(doc *Document) error {
		if q == "" {
			out = doc.Invoices
			return nil
		}

		names := make(map[string]string, len(doc.Clients))
		for i := range doc.Clients {
			names[doc.Clients[i].ID] = doc.Clients[i].DisplayName()
		}

		out = []models.Invoice{}
		for _, inv := range doc.Invoices {
			if containsFold(q, inv.ID, names[inv.ClientID], inv.Notes) {
				out = append(out, inv)
			}
		}
		return nil
	})
	return out, err
}

// SearchClients returns clients whose name, company or email contains query,
// ignoring case. An empty query returns every client.
func (s *Store) SearchClients(ctx context.Context, query string) ([]models.Client, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Client
	err := s.view(ctx, func(doc *Document) error {
		if q == "" {
			out = doc.Clients
			return nil
		}
		out = []models.Client{}
		for _, c := range doc.Clients {
			if containsFold(q, c.Name, c.Company, c.Email) {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

// containsFold reports whether any field contains the lowercased query.
func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
