// Package hf wraps the HuggingFace Inference API: the feature-extraction
// pipeline for embeddings and the OpenAI-compatible chat completions
// endpoint for text generation.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultEmbedBaseURL = "https://router.huggingface.co/hf-inference/models"

	// Dimension produced by sentence-transformers/all-MiniLM-L6-v2.
	defaultDimension = 384
)

// Embedder calls the HF feature-extraction pipeline for a fixed model.
// Embeddings are deterministic for a given model and input.
type Embedder struct {
	token      string
	model      string
	baseURL    string
	dimension  int
	httpClient *http.Client
}

// NewEmbedder builds an embedder for the given model. A missing token is a
// configuration error reported before any network call.
func NewEmbedder(token, model string) (*Embedder, error) {
	if token == "" {
		return nil, fmt.Errorf("huggingface token is required")
	}
	if model == "" {
		model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	return &Embedder{
		token:     token,
		model:     model,
		baseURL:   defaultEmbedBaseURL,
		dimension: defaultDimension,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Dimension returns the vector length the model produces.
func (e *Embedder) Dimension() int {
	return e.dimension
}

type embedRequest struct {
	Inputs string `json:"inputs"`
}

// Embed maps text to a fixed-dimension vector. Failures are not retried.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/pipeline/feature-extraction", e.baseURL, e.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("huggingface embeddings: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface embeddings status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return parseVector(respBody, e.dimension)
}

// parseVector accepts both response shapes the pipeline produces: a flat
// vector for a single input, or a single-element batch.
func parseVector(data []byte, dimension int) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(data, &flat); err == nil {
		return checkDimension(flat, dimension)
	}

	var batch [][]float32
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return checkDimension(batch[0], dimension)
}

func checkDimension(vec []float32, dimension int) ([]float32, error) {
	if len(vec) != dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), dimension)
	}
	return vec, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
