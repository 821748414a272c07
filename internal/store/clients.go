package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"invoicer/pkg/models"
)

// Clients returns every client in stored order.
func (s *Store) Clients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	err := s.view(ctx, func(doc *Document) error {
		out = doc.Clients
		return nil
	})
	return out, err
}

// GetClient returns the client with id.
func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var out *models.Client
	err := s.view(ctx, func(doc *Document) error {
		idx := doc.clientIndex(id)
		if idx < 0 {
			return notFound("GetClient", "client", id)
		}
		out = &doc.Clients[idx]
		return nil
	})
	return out, err
}

// SaveClient validates and persists c. An empty ID creates the client with a
// fresh ID; otherwise the stored client is replaced, keeping CreatedAt.
func (s *Store) SaveClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	const op = "SaveClient"
	if c == nil {
		return nil, NewError(op, errors.New("nil client"), "")
	}
	if result := c.Validate(); !result.Valid {
		return nil, &ValidationError{Op: op, Result: result}
	}

	rec := *c
	created := rec.ID == ""
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		ts := s.now()
		if created {
			rec.ID = uuid.NewString()
			rec.CreatedAt = ts
			rec.UpdatedAt = ts
			doc.Clients = append(doc.Clients, rec)
			return true, nil
		}

		idx := doc.clientIndex(rec.ID)
		if idx < 0 {
			return false, notFound(op, "client", rec.ID)
		}
		rec.CreatedAt = doc.Clients[idx].CreatedAt
		rec.UpdatedAt = ts
		doc.Clients[idx] = rec
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("client", rec.ID).
		Bool("created", created).
		Msg("Client saved")
	return &rec, nil
}

// DeleteClient removes the client with id, reporting whether it existed.
// Invoices referencing the client are left untouched; refusing the delete
// while such invoices exist is the caller's job (see InvoicesForClient).
func (s *Store) DeleteClient(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		idx := doc.clientIndex(id)
		if idx < 0 {
			return false, nil
		}
		doc.Clients = append(doc.Clients[:idx], doc.Clients[idx+1:]...)
		deleted = true
		return true, nil
	})
	if deleted {
		s.log.Info().Str("client", id).Msg("Client deleted")
	}
	return deleted, err
}

// Settings returns the current settings.
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	var out models.Settings
	err := s.view(ctx, func(doc *Document) error {
		out = doc.Settings
		return nil
	})
	return out, err
}

// UpdateSettings validates and replaces the settings.
func (s *Store) UpdateSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	if result := settings.Validate(); !result.Valid {
		return models.Settings{}, &ValidationError{Op: "UpdateSettings", Result: result}
	}
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		doc.Settings = settings
		return true, nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	s.log.Info().
		Str("prefix", settings.InvoicePrefix).
		Str("currency", string(settings.Currency)).
		Int("seed", settings.NumberSeed).
		Msg("Settings updated")
	return settings, nil
}
