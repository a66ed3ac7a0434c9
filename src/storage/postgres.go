package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sleep-observer/src/helpers"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Schema named after the executable so several services can share one database
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewStorageError("failed to open postgres database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStorageError("failed to reach postgres database", err)
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewStorageError(fmt.Sprintf("failed to create schema %s", d.Schema), err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewStorageError("failed to create preferences", err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

func (d *PostgresDB) table() string {
	return fmt.Sprintf(`"%s"."preferences"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetPreference(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := d.DB.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE key = $1", d.table()), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, helpers.NewStorageError(fmt.Sprintf("failed to read preference %s", key), err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SetPreference(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, d.table())
	if _, err := d.DB.Exec(query, key, value, time.Now().Unix()); err != nil {
		return helpers.NewStorageError(fmt.Sprintf("failed to store preference %s", key), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) DeletePreference(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE key = $1", d.table()), key); err != nil {
		return helpers.NewStorageError(fmt.Sprintf("failed to delete preference %s", key), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
