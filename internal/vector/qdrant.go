package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// QdrantConfig configures the Qdrant REST backend.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimensions int
	Timeout    time.Duration
}

// QdrantIndex is a minimal REST client to Qdrant. It assumes cosine distance
// and creates the collection on first use if missing.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	dimensions int
	client     *http.Client
}

// NewQdrantIndex creates the client and ensures the collection exists.
func NewQdrantIndex(cfg QdrantConfig) (*QdrantIndex, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	q := &QdrantIndex{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: timeout},
	}
	if err := q.ensureCollection(); err != nil {
		return nil, &IndexError{Backend: "qdrant", Op: "init", Err: err}
	}
	return q, nil
}

func (q *QdrantIndex) ensureCollection() error {
	// Qdrant returns 200 if the collection already exists with the same schema.
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimensions,
			"distance": "Cosine",
		},
	}
	return q.putJSON(context.Background(),
		fmt.Sprintf("%s/collections/%s", q.url, q.collection), body)
}

// Add upserts entries as points. wait=true so a following search sees them.
func (q *QdrantIndex) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		if len(e.Vector) != q.dimensions {
			return &IndexError{Backend: "qdrant", Op: "add",
				Err: fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), q.dimensions)}
		}
		payload := map[string]any{"text": e.Text}
		for k, v := range e.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      e.ID,
			"vector":  e.Vector,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection)
	if err := q.putJSON(ctx, url, body); err != nil {
		return &IndexError{Backend: "qdrant", Op: "add", Err: err}
	}
	return nil
}

// Search queries the collection and maps payloads back to results.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return []Result{}, nil
	}
	req := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.postJSON(ctx, url, req, &resp); err != nil {
		return nil, &IndexError{Backend: "qdrant", Op: "search", Err: err}
	}
	results := make([]Result, 0, len(resp.Result))
	for i, r := range resp.Result {
		text, _ := r.Payload["text"].(string)
		metadata := make(map[string]any, len(r.Payload))
		for key, v := range r.Payload {
			if key == "text" {
				continue
			}
			metadata[key] = v
		}
		results = append(results, Result{
			Rank:     i + 1,
			Score:    r.Score,
			Text:     text,
			Metadata: metadata,
		})
	}
	return results, nil
}

// Count returns the number of points in the collection.
func (q *QdrantIndex) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", q.url, q.collection)
	if err := q.postJSON(ctx, url, map[string]any{"exact": true}, &resp); err != nil {
		return 0, &IndexError{Backend: "qdrant", Op: "count", Err: err}
	}
	return resp.Result.Count, nil
}

// Close is a no-op; the HTTP client holds no persistent connections worth draining.
func (q *QdrantIndex) Close() error { return nil }

func (q *QdrantIndex) putJSON(ctx context.Context, url string, body any) error {
	return q.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (q *QdrantIndex) postJSON(ctx context.Context, url string, body any, out any) error {
	return q.doJSON(ctx, http.MethodPost, url, body, out)
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
