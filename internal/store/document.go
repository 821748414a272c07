package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"invoicer/pkg/models"
)

// Document is the whole persisted state.
type Document struct {
	Clients  []models.Client  `json:"clients"`
	Invoices []models.Invoice `json:"invoices"`
	Settings models.Settings  `json:"settings"`
}

// DefaultDocument returns the empty state.
func DefaultDocument() *Document {
	return &Document{
		Clients:  []models.Client{},
		Invoices: []models.Invoice{},
		Settings: models.DefaultSettings(),
	}
}

func (d *Document) normalize() {
	if d.Clients == nil {
		d.Clients = []models.Client{}
	}
	if d.Invoices == nil {
		d.Invoices = []models.Invoice{}
	}
	for i := range d.Invoices {
		if d.Invoices[i].Items == nil {
			d.Invoices[i].Items = []models.LineItem{}
		}
	}
}

func (d *Document) invoiceIndex(id string) int {
	for i := range d.Invoices {
		if d.Invoices[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) clientIndex(id string) int {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			return i
		}
	}
	return -1
}

// ExportJSON serializes the whole state.
func (s *Store) ExportJSON(ctx context.Context) ([]byte, error) {
	var out []byte
	err := s.view(ctx, func(doc *Document) error {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return WrapError("ExportJSON", err, "document encoding failed")
		}
		out = data
		return nil
	})
	return out, err
}

// ImportJSON replaces the whole state with data. The document must have
// clients and invoices arrays and a settings object; settings keys that are
// missing take their defaults. Malformed input is rejected with
// ErrInvalidImport and leaves the state untouched.
func (s *Store) ImportJSON(ctx context.Context, data []byte) error {
	doc, err := parseImport(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("Import rejected")
		return err
	}

	err = s.mutate(ctx, func(current *Document) (bool, error) {
		*current = *doc
		return true, nil
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Int("clients", len(doc.Clients)).
		Int("invoices", len(doc.Invoices)).
		Msg("Data imported")
	return nil
}

func parseImport(data []byte) (*Document, error) {
	const op = "ImportJSON"

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewError(op, ErrInvalidImport, err.Error())
	}
	for _, key := range []string{"clients", "invoices"} {
		if !hasPrefix(raw[key], '[') {
			return nil, NewError(op, ErrInvalidImport, fmt.Sprintf("%q must be an array", key))
		}
	}
	if !hasPrefix(raw["settings"], '{') {
		return nil, NewError(op, ErrInvalidImport, `"settings" must be an object`)
	}

	doc := DefaultDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, NewError(op, ErrInvalidImport, err.Error())
	}
	doc.normalize()
	return doc, nil
}

func hasPrefix(raw json.RawMessage, c byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == c
}
