// Package chunker splits knowledge-unit text into overlapping fixed-size
// windows for embedding.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/floatchat/floatchat/internal/models"
)

// ConfigError reports invalid chunking parameters. It is fatal: the caller
// must fix the configuration before retrying.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "chunker config: " + e.Reason
}

// Chunker produces character-based sliding windows. Windows are measured in
// runes, not tokens; downstream embedding backends tolerate slightly
// over-length input.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Returns a ConfigError unless
// 0 <= overlap < size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("chunk size must be positive, got %d", size)}
	}
	if overlap < 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("chunk overlap must not be negative, got %d", overlap)}
	}
	if overlap >= size {
		return nil, &ConfigError{Reason: fmt.Sprintf("chunk overlap %d must be smaller than chunk size %d", overlap, size)}
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits the unit's text into windows of at most size runes, each
// overlapping the previous by overlap runes. Window i starts at
// i*(size-overlap); the last window is truncated to the remaining text.
// Chunks inherit the unit's metadata unchanged. Empty text yields no chunks.
func (c *Chunker) Chunk(unit models.KnowledgeUnit) []models.Chunk {
	runes := []rune(unit.Text)
	if len(runes) == 0 {
		return nil
	}
	step := c.size - c.overlap
	var chunks []models.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			ID:       uuid.New().String(),
			Index:    len(chunks),
			Text:     string(runes[start:end]),
			Metadata: unit.Metadata,
		})
		if end >= len(runes) {
			break
		}
	}
	return chunks
}

// Reassemble concatenates chunks with the overlap removed, reconstructing
// the original text. Chunks must be in index order.
func (c *Chunker) Reassemble(chunks []models.Chunk) string {
	var runes []rune
	for i, ch := range chunks {
		r := []rune(ch.Text)
		if i > 0 {
			// Every non-first chunk extends past the previous window, so it
			// is always longer than the overlap.
			r = r[c.overlap:]
		}
		runes = append(runes, r...)
	}
	return string(runes)
}
