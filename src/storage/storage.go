package storage

import (
	"fmt"
	"strings"

	"sleep-observer/src/helpers"
	"sleep-observer/src/interfaces"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
)

// Well-known preference keys.
const (
	PreferenceFeedURL = "feed_url"
)

const maxKeyLength = 128

// -----------------------------------------------------------------------------

// NewPreferenceStore returns the backend selected by storage.db_type.
// The store is not initialized yet.
func NewPreferenceStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IPreferenceStore, error) {
	switch cfg.Storage.DBType {
	case "sqlite":
		return NewSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unsupported database type: %s", cfg.Storage.DBType), nil)
	}
}

// -----------------------------------------------------------------------------

// ValidateKey rejects keys the HTTP layer should never have passed through.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return helpers.NewValidationError("preference key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return helpers.NewValidationError(fmt.Sprintf("preference key longer than %d characters", maxKeyLength))
	}
	return nil
}
