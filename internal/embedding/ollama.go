package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/floatchat/floatchat/pkg/utils"
)

// OllamaEmbedder embeds text through a local Ollama server's embeddings API.
// Vectors are L2-normalized so that inner product equals cosine similarity.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	httpClient *http.Client

	mu         sync.Mutex
	dimensions int
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder creates an embedder for the given Ollama base URL and
// model. dimensions may be zero; it is then learned from the first response.
func NewOllamaEmbedder(baseURL, model string, dimensions int, timeout time.Duration) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &OllamaEmbedder{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		dimensions: dimensions,
	}
}

// Embed returns the normalized embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, &EmbeddingError{Reason: "marshal request", Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, &EmbeddingError{Reason: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, &EmbeddingError{Reason: "embedding backend unreachable", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &EmbeddingError{Reason: fmt.Sprintf("backend status %d: %s", resp.StatusCode, body)}
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, &EmbeddingError{Reason: "decode response", Err: err}
	}
	vec := embedResp.Embedding
	if len(vec) == 0 {
		return nil, &EmbeddingError{Reason: fmt.Sprintf("model %q returned an empty vector; check the Ollama model", e.model)}
	}
	if err := e.checkDimensions(len(vec)); err != nil {
		return nil, err
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order. A failure on any text fails the
// whole batch: a partially embedded batch must never reach the index.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *OllamaEmbedder) checkDimensions(got int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimensions == 0 {
		e.dimensions = got
		return nil
	}
	if got != e.dimensions {
		return &EmbeddingError{Reason: fmt.Sprintf("vector dimension changed: got %d, expected %d", got, e.dimensions)}
	}
	return nil
}

// Dimensions returns the embedding dimension (zero until the first embed
// when not configured).
func (e *OllamaEmbedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimensions
}

// Close is a no-op for the HTTP client.
func (e *OllamaEmbedder) Close() error {
	return nil
}
