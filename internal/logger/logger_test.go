package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONFile(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Setup(LogConfig{Level: "info", Format: "json", Output: path}))

	l := WithComponent("store")
	l.Debug().Msg("hidden")
	l.Info().Str("invoice", "INV-202401-001").Msg("Invoice created")
	f := WithFields(map[string]interface{}{"component": "storage-file", "path": "state.json"})
	f.Info().Msg("Document saved")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"component":"store"`)
	assert.Contains(t, out, `"invoice":"INV-202401-001"`)
	assert.Contains(t, out, `"path":"state.json"`)
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestSetup_BadLevel(t *testing.T) {
	assert.Error(t, Setup(LogConfig{Level: "loud"}))
}
