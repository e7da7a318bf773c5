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

const defaultChatBaseURL = "https://router.huggingface.co/v1"

// Generator calls the HF chat completions endpoint with fixed generation
// parameters.
type Generator struct {
	token       string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	stats       *Stats
}

// NewGenerator builds a chat client. A missing token is a configuration
// error reported before any network call.
func NewGenerator(token, model string, maxTokens int, temperature float64) (*Generator, error) {
	if token == "" {
		return nil, fmt.Errorf("huggingface token is required")
	}
	if model == "" {
		model = "meta-llama/Llama-3.2-3B-Instruct"
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Generator{
		token:       token,
		model:       model,
		baseURL:     defaultChatBaseURL,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		stats: NewStats(time.Hour),
	}, nil
}

// Stats exposes the rolling latency aggregate for this client.
func (g *Generator) Stats() *Stats {
	return g.stats
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the rendered prompt as a single user message and returns
// the model's text verbatim.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.token)

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("huggingface chat: %w", err)
	}
	defer resp.Body.Close()
	g.stats.Record(time.Since(start).Milliseconds())

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface chat status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("huggingface chat error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return apiResp.Choices[0].Message.Content, nil
}

// Close releases resources.
func (g *Generator) Close() {
	g.httpClient.CloseIdleConnections()
}
