package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory index using brute-force inner product search.
// Suitable for tests and small datasets.
type MemoryIndex struct {
	dimensions int
	entries    []Entry
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Add appends entries in order.
func (m *MemoryIndex) Add(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != m.dimensions {
			return &IndexError{Backend: "memory", Op: "add",
				Err: fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), m.dimensions)}
		}
		vec := make([]float32, m.dimensions)
		copy(vec, e.Vector)
		e.Vector = vec
		m.entries = append(m.entries, e)
	}
	return nil
}

// Search returns the top-k entries by inner product (cosine similarity for
// normalized vectors). Equal scores keep insertion order.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != m.dimensions {
		return nil, &IndexError{Backend: "memory", Op: "search",
			Err: fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return searchEntries(m.entries, query, k), nil
}

// Count returns the number of stored entries.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error { return nil }

// searchEntries scores every entry against query and returns the top k as
// ranked results. Stable sort keeps insertion order for equal scores.
func searchEntries(entries []Entry, query []float32, k int) []Result {
	if k <= 0 || len(entries) == 0 {
		return []Result{}
	}
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(entries))
	for i, e := range entries {
		var dot float64
		for j := range query {
			dot += float64(query[j] * e.Vector[j])
		}
		scores[i] = scored{idx: i, score: dot}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	results := make([]Result, k)
	for i := 0; i < k; i++ {
		e := entries[scores[i].idx]
		results[i] = Result{
			Rank:     i + 1,
			Score:    scores[i].score,
			Text:     e.Text,
			Metadata: e.Metadata,
		}
	}
	return results
}
