// Package embedding provides text embedding backends and caching.
package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
)

// Embedder produces vector embeddings for text. Batch output corresponds
// positionally and exactly to the input; a backend that cannot embed one
// input fails the whole batch.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// EmbeddingError reports an unavailable or misconfigured embedding backend.
// It fails the batch that hit it; retrying the whole batch is safe.
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding: %s: %v", e.Reason, e.Err)
	}
	return "embedding: " + e.Reason
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// HashString returns a stable hash of s, used for cache keys and the mock embedder.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32())
}
