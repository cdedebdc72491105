// Package store provides the relational sink for sampled profiles.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/floatchat/floatchat/internal/models"
)

// ProfileStore persists sampled profiles in SQLite for structured lookups
// by float id, independent of the vector path.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewProfileStore(dbPath string) (*ProfileStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initProfileSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &ProfileStore{db: db}, nil
}

func initProfileSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS argo_profiles (
		float_id TEXT PRIMARY KEY,
		datetime TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		surface_temp REAL NOT NULL,
		surface_sal REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_datetime ON argo_profiles(datetime);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveProfiles upserts profiles in a single transaction. Re-running
// ingestion over the same grid replaces rows instead of duplicating them.
func (s *ProfileStore) SaveProfiles(ctx context.Context, profiles []models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO argo_profiles
		 (float_id, datetime, latitude, longitude, surface_temp, surface_sal)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		if _, err := stmt.ExecContext(ctx,
			p.FloatID, p.Timestamp.Format(models.TimestampLayout),
			p.Latitude, p.Longitude, p.SurfaceTemp, p.SurfaceSal,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert profile %s: %w", p.FloatID, err)
		}
	}
	return tx.Commit()
}

// GetProfile returns a profile by float id.
func (s *ProfileStore) GetProfile(ctx context.Context, floatID string) (*models.Profile, error) {
	var p models.Profile
	var datetime string
	err := s.db.QueryRowContext(ctx,
		`SELECT float_id, datetime, latitude, longitude, surface_temp, surface_sal
		 FROM argo_profiles WHERE float_id = ?`, floatID,
	).Scan(&p.FloatID, &datetime, &p.Latitude, &p.Longitude, &p.SurfaceTemp, &p.SurfaceSal)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile not found: %s", floatID)
	}
	if err != nil {
		return nil, err
	}
	p.Timestamp, err = time.Parse(models.TimestampLayout, datetime)
	if err != nil {
		return nil, fmt.Errorf("parse stored datetime %q: %w", datetime, err)
	}
	return &p, nil
}

// CountProfiles returns the number of stored profiles.
func (s *ProfileStore) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM argo_profiles`).Scan(&count)
	return count, err
}

// Close closes the database.
func (s *ProfileStore) Close() error {
	return s.db.Close()
}
