package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"sleep-observer/src/helpers"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "prefs.db")}}
	store, err := NewSQLiteDB(cfg, logger.NewLoggerWithWriter(nil, "Storage", io.Discard))
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLitePreferenceLifecycle(t *testing.T) {
	store := openSQLite(t)

	_, ok, err := store.GetPreference(PreferenceFeedURL)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetPreference(PreferenceFeedURL, "ws://hub.local:8765/env"))
	require.NoError(t, store.SetPreference(PreferenceFeedURL, "wss://hub.local/env"))

	value, ok, err := store.GetPreference(PreferenceFeedURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "wss://hub.local/env", value)

	require.NoError(t, store.DeletePreference(PreferenceFeedURL))
	require.NoError(t, store.DeletePreference(PreferenceFeedURL))
	_, ok, err = store.GetPreference(PreferenceFeedURL)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePreferencesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: path}}
	log := logger.NewLoggerWithWriter(nil, "Storage", io.Discard)

	first, _ := NewSQLiteDB(cfg, log)
	require.NoError(t, first.Initialize())
	require.NoError(t, first.SetPreference("theme", "dark"))
	require.NoError(t, first.Close())

	second, _ := NewSQLiteDB(cfg, log)
	require.NoError(t, second.Initialize())
	defer second.Close()
	value, ok, err := second.GetPreference("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey(PreferenceFeedURL))
	assert.True(t, helpers.IsValidation(ValidateKey(" ")))
	assert.True(t, helpers.IsValidation(ValidateKey(strings.Repeat("k", 129))))

	store := openSQLite(t)
	assert.True(t, helpers.IsValidation(store.SetPreference("", "x")))
}

func TestNewPreferenceStoreSelectsBackend(t *testing.T) {
	log := logger.NewLoggerWithWriter(nil, "Storage", io.Discard)

	store, err := NewPreferenceStore(&models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteDB{}, store)

	store, err = NewPreferenceStore(&models.MConfig{Storage: models.MStorageConfig{DBType: "postgres"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &PostgresDB{}, store)

	_, err = NewPreferenceStore(&models.MConfig{Storage: models.MStorageConfig{DBType: "mongo"}}, log)
	var cfgErr *helpers.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
