// Package vector provides vector index backends and similarity search.
package vector

import (
	"context"
	"fmt"
)

// Entry is a chunk embedding with its payload, as stored in an index.
type Entry struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]any
}

// Result is a single search hit. Rank is 1-based position in the result
// list; Score is cosine similarity of normalized vectors.
type Result struct {
	Rank     int
	Score    float64
	Text     string
	Metadata map[string]any
}

// Index defines vector storage and similarity search. Implementations
// preserve insertion order for equal scores so repeated searches over the
// same data return the same ranking.
type Index interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// IndexError reports a failed index operation for a named backend.
type IndexError struct {
	Backend string
	Op      string
	Err     error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vector index %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// Config selects and parameterizes an index backend.
type Config struct {
	// Type is one of "sqlite" (default), "qdrant", "memory".
	Type string
	// Collection names the vector set inside the backend.
	Collection string
	// Dimensions is the embedding dimension.
	Dimensions int

	// DatabasePath is the SQLite file for the sqlite backend.
	DatabasePath string

	// Qdrant backend settings.
	QdrantURL    string
	QdrantAPIKey string
}

// New creates an index of the configured type.
func New(cfg Config) (Index, error) {
	switch cfg.Type {
	case "sqlite", "":
		return NewSQLiteIndex(cfg.DatabasePath, cfg.Collection, cfg.Dimensions)
	case "qdrant":
		return NewQdrantIndex(QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.Collection,
			Dimensions: cfg.Dimensions,
		})
	case "memory":
		return NewMemoryIndex(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: sqlite, qdrant, memory)", cfg.Type)
	}
}
