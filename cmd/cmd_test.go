package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

func TestParseItemSpec(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		wantErr  bool
		wantDesc string
		wantQty  string
		wantTax  string
	}{
		{name: "minimal", spec: "Consulting:2:100", wantDesc: "Consulting", wantQty: "2"},
		{name: "with tax", spec: "Hosting:1:40:12", wantDesc: "Hosting", wantQty: "1", wantTax: "12"},
		{name: "all fields", spec: " Travel : 1.5 : 80 : 0 : 10 ", wantDesc: "Travel", wantQty: "1.5", wantTax: "0"},
		{name: "too few", spec: "Consulting:2", wantErr: true},
		{name: "too many", spec: "a:1:2:3:4:5", wantErr: true},
		{name: "bad qty", spec: "Consulting:two:100", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := parseItemSpec(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDesc, *fields.Description)
			assert.Equal(t, tt.wantQty, fields.Qty.String())
			if tt.wantTax == "" {
				assert.Nil(t, fields.TaxRate)
			} else {
				require.NotNil(t, fields.TaxRate)
				assert.Equal(t, tt.wantTax, fields.TaxRate.String())
			}
		})
	}
}

func TestHandleStoreError(t *testing.T) {
	log := zerolog.Nop()

	verr := &store.ValidationError{Op: "SaveInvoice", Result: models.ValidationResult{
		Errors: []string{"At least one line item is required"},
	}}
	err := handleStoreError(verr, log)
	assert.Contains(t, err.Error(), "- At least one line item is required")

	err = handleStoreError(store.NewError("GetInvoice", store.ErrNotFound, `invoice "x"`), log)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = handleStoreError(store.NewError("ImportJSON", store.ErrInvalidImport, "bad"), log)
	assert.True(t, errors.Is(err, store.ErrInvalidImport))
	assert.Contains(t, err.Error(), "left untouched")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "state.json"))
	t.Setenv("LOG_LEVEL", "disabled")

	prev := nowFunc
	nowFunc = func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = prev })

	out, err := execute(t, "client", "add", "--name", "Ada Lovelace", "--email", "ada@example.com", "--json")
	require.NoError(t, err)
	var client models.Client
	require.NoError(t, json.Unmarshal([]byte(out), &client))
	require.NotEmpty(t, client.ID)

	out, err = execute(t, "invoice", "create", "--client", client.ID,
		"--item", "Consulting:2:100:12:10", "--shipping", "50", "--issue-date", "2024-03-10", "--json")
	require.NoError(t, err)
	var inv models.Invoice
	require.NoError(t, json.Unmarshal([]byte(out), &inv))
	assert.Equal(t, "251.60", inv.Totals.Grand.StringFixed(2))
	assert.Equal(t, "2024-04-09", inv.DueDate.String())

	_, err = execute(t, "client", "delete", client.ID)
	require.ErrorIs(t, err, store.ErrClientInUse)

	out, err = execute(t, "export")
	require.NoError(t, err)
	var doc store.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Clients, 1)
	assert.Len(t, doc.Invoices, 1)
	assert.Equal(t, 2, doc.Settings.NumberSeed)
}
