package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sleep-observer/src/helpers"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewStorageError("failed to open sqlite database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStorageError(fmt.Sprintf("failed to reach sqlite database %s", dsn), err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables() error {
	// Preferences survive restarts, so the table is never dropped
	query := `
		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewStorageError("failed to create preferences", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetPreference(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := d.DB.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, helpers.NewStorageError(fmt.Sprintf("failed to read preference %s", key), err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SetPreference(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := d.DB.Exec(query, key, value, time.Now().Unix()); err != nil {
		return helpers.NewStorageError(fmt.Sprintf("failed to store preference %s", key), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DeletePreference(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := d.DB.Exec("DELETE FROM preferences WHERE key = ?", key); err != nil {
		return helpers.NewStorageError(fmt.Sprintf("failed to delete preference %s", key), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
