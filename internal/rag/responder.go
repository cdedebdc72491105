// Package rag answers questions from the vector index with grounded generation.
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/floatchat/floatchat/internal/embedding"
	"github.com/floatchat/floatchat/internal/vector"
)

// NoInformationAnswer is returned when retrieval finds nothing. The
// generator is never called in that case.
const NoInformationAnswer = "No relevant information found in the ingested data."

// GenerationError reports a generation provider failure or timeout. It is
// not retried automatically.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator produces a completion for a system prompt and user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Context is one piece of evidence behind an answer.
type Context struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Answer is a generated answer with the retrieved evidence, in ranked order.
type Answer struct {
	Answer   string    `json:"answer"`
	Contexts []Context `json:"contexts"`
}

// Options bound a single answer call.
type Options struct {
	// TopK is the number of chunks to retrieve. Zero means DefaultTopK.
	TopK int
	// MaxContextChars truncates the concatenated context. Zero disables.
	MaxContextChars int
}

// DefaultTopK is the retrieval depth when the caller does not set one.
const DefaultTopK = 8

// Responder answers questions: embed, retrieve, then generate from the
// retrieved context only. Stateless per call, safe for concurrent use.
type Responder struct {
	embedder  embedding.Embedder
	index     vector.Index
	generator Generator
	logger    *zap.Logger
}

// NewResponder wires the retrieval and generation components.
func NewResponder(embedder embedding.Embedder, index vector.Index, generator Generator, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		embedder:  embedder,
		index:     index,
		generator: generator,
		logger:    logger,
	}
}

// Answer retrieves the chunks nearest to question and generates an answer
// constrained to them. An empty retrieval is terminal: the fixed
// no-information answer is returned without calling the generator.
func (r *Responder) Answer(ctx context.Context, question string, opts Options) (*Answer, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryVector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := r.index.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(results) == 0 {
		r.logger.Debug("retrieval returned nothing", zap.String("question", question))
		return &Answer{Answer: NoInformationAnswer, Contexts: []Context{}}, nil
	}

	texts := make([]string, len(results))
	contexts := make([]Context, len(results))
	for i, res := range results {
		texts[i] = res.Text
		source := "unknown"
		if s, ok := res.Metadata["source"].(string); ok && s != "" {
			source = s
		}
		contexts[i] = Context{Source: source, Text: res.Text}
	}

	prompt := renderUser(question, strings.Join(texts, "\n\n"), opts.MaxContextChars)
	answer, err := r.generator.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	r.logger.Debug("answered question",
		zap.String("question", question),
		zap.Int("contexts", len(contexts)),
		zap.Float64("top_score", results[0].Score))

	return &Answer{Answer: answer, Contexts: contexts}, nil
}
