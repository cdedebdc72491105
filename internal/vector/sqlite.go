package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteIndex is a persistent brute-force index backed by SQLite. Vectors
// live in a named collection so several indexes can share one database file.
// All entries are mirrored in memory; SQLite is the durability layer, search
// never touches the database.
type SQLiteIndex struct {
	db         *sql.DB
	collection string
	dimensions int

	mu      sync.RWMutex
	entries []Entry
}

// NewSQLiteIndex opens or creates the database at dbPath and loads the named
// collection into memory. Parent directories are created if they do not exist.
func NewSQLiteIndex(dbPath, collection string, dimensions int) (*SQLiteIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
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
	if err := initVectorSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	idx := &SQLiteIndex{db: db, collection: collection, dimensions: dimensions}
	if err := idx.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func initVectorSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS vectors (
		id TEXT NOT NULL,
		collection TEXT NOT NULL,
		position INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		text TEXT NOT NULL,
		metadata TEXT,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_vectors_collection ON vectors(collection, position);
	`
	_, err := db.Exec(schema)
	return err
}

// load reads the collection into the in-memory mirror, in insertion order.
func (s *SQLiteIndex) load() error {
	rows, err := s.db.Query(
		`SELECT id, embedding, text, metadata FROM vectors
		 WHERE collection = ? ORDER BY position`, s.collection)
	if err != nil {
		return &IndexError{Backend: "sqlite", Op: "load", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var blob []byte
		var metadataJSON sql.NullString
		if err := rows.Scan(&e.ID, &blob, &e.Text, &metadataJSON); err != nil {
			return &IndexError{Backend: "sqlite", Op: "load", Err: err}
		}
		vec := bytesToFloat32(blob)
		if len(vec) != s.dimensions {
			return &IndexError{Backend: "sqlite", Op: "load",
				Err: fmt.Errorf("stored vector %s has dimension %d, index expects %d", e.ID, len(vec), s.dimensions)}
		}
		e.Vector = vec
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &e.Metadata); err != nil {
				return &IndexError{Backend: "sqlite", Op: "load",
					Err: fmt.Errorf("unmarshal metadata for %s: %w", e.ID, err)}
			}
		}
		s.entries = append(s.entries, e)
	}
	return rows.Err()
}

// Add persists entries in a single transaction and appends them to the
// in-memory mirror. On transaction failure the mirror is unchanged.
func (s *SQLiteIndex) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if len(e.Vector) != s.dimensions {
			return &IndexError{Backend: "sqlite", Op: "add",
				Err: fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), s.dimensions)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &IndexError{Backend: "sqlite", Op: "add", Err: err}
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO vectors (id, collection, position, embedding, text, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return &IndexError{Backend: "sqlite", Op: "add", Err: err}
	}
	defer stmt.Close()

	position := len(s.entries)
	for i, e := range entries {
		metadataJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return &IndexError{Backend: "sqlite", Op: "add",
				Err: fmt.Errorf("marshal metadata for %s: %w", e.ID, err)}
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, s.collection, position+i, float32ToBytes(e.Vector), e.Text, string(metadataJSON),
		); err != nil {
			_ = tx.Rollback()
			return &IndexError{Backend: "sqlite", Op: "add", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &IndexError{Backend: "sqlite", Op: "add", Err: err}
	}

	for _, e := range entries {
		vec := make([]float32, s.dimensions)
		copy(vec, e.Vector)
		e.Vector = vec
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search runs brute-force cosine search over the in-memory mirror.
func (s *SQLiteIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != s.dimensions {
		return nil, &IndexError{Backend: "sqlite", Op: "search",
			Err: fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), s.dimensions)}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return searchEntries(s.entries, query, k), nil
}

// Count returns the number of entries in the collection.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func float32ToBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func bytesToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
