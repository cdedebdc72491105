// Package llm provides text generation through a local Ollama server.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaGenerator generates completions through a local Ollama server.
type OllamaGenerator struct {
	baseURL     string
	model       string
	temperature float32
	httpClient  *http.Client
}

// OllamaConfig configures the Ollama generation backend.
type OllamaConfig struct {
	URL         string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaGenerator creates a generator for the given model.
func NewOllamaGenerator(cfg OllamaConfig) *OllamaGenerator {
	url := cfg.URL
	if url == "" {
		url = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &OllamaGenerator{
		baseURL:     strings.TrimRight(url, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Generate sends the prompt to /api/generate and concatenates the streamed
// response chunks (one JSON object per line) into the full completion.
func (g *OllamaGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		System:  system,
		Stream:  true,
		Options: generateOptions{Temperature: g.temperature},
	}
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, body)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", fmt.Errorf("failed to parse response chunk: %w", err)
		}
		full.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading response stream: %w", err)
	}
	return full.String(), nil
}

// Close cleans up any resources.
func (g *OllamaGenerator) Close() error { return nil }
