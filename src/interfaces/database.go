package interfaces

// -----------------------------------------------------------------------------
// IPreferenceStore defines the contract for persisted per-installation
// overrides such as the live-feed URL.
// -----------------------------------------------------------------------------

type IPreferenceStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// GetPreference returns the stored value; ok is false when the key is unset.
	GetPreference(key string) (value string, ok bool, err error)

	// -----------------------------------------------------------------------------

	// SetPreference inserts or replaces a value.
	SetPreference(key, value string) error

	// -----------------------------------------------------------------------------

	// DeletePreference removes a key; deleting an unset key is not an error.
	DeletePreference(key string) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
