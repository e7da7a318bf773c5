// Package pinecone is a minimal REST client for the Pinecone serverless
// API: index management on the control plane, upsert and query on the
// per-index data plane host.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultControlURL = "https://api.pinecone.io"
	apiVersion        = "2025-01"
)

// Client communicates with the Pinecone HTTP API.
type Client struct {
	apiKey     string
	controlURL string
	httpClient *http.Client
}

// Config configures the Pinecone client.
type Config struct {
	APIKey     string
	ControlURL string // Defaults to the public control plane.
	Timeout    time.Duration
}

func NewClient(cfg Config) *Client {
	controlURL := cfg.ControlURL
	if controlURL == "" {
		controlURL = defaultControlURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		controlURL: controlURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IndexSpec describes an index to create.
type IndexSpec struct {
	Name      string
	Dimension int
	Metric    string // "cosine", "euclidean" or "dotproduct".
	Cloud     string
	Region    string
}

// IndexDescription is the control plane's view of an index.
type IndexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
}

// Vector is one record in the index.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Match is one query result, highest similarity first.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// DescribeIndex fetches an index description, or nil if the index does not
// exist.
func (c *Client) DescribeIndex(ctx context.Context, name string) (*IndexDescription, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.controlURL+"/indexes/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("describe index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("describe index %s: status %d: %s", name, resp.StatusCode, readBody(resp.Body))
	}

	var desc IndexDescription
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("decode index description: %w", err)
	}
	return &desc, nil
}

type createIndexRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Spec      struct {
		Serverless struct {
			Cloud  string `json:"cloud"`
			Region string `json:"region"`
		} `json:"serverless"`
	} `json:"spec"`
}

// CreateIndex creates a serverless index.
func (c *Client) CreateIndex(ctx context.Context, spec IndexSpec) (*IndexDescription, error) {
	req := createIndexRequest{
		Name:      spec.Name,
		Dimension: spec.Dimension,
		Metric:    spec.Metric,
	}
	req.Spec.Serverless.Cloud = spec.Cloud
	req.Spec.Serverless.Region = spec.Region

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.controlURL+"/indexes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create index %s: status %d: %s", spec.Name, resp.StatusCode, readBody(resp.Body))
	}

	var desc IndexDescription
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("decode index description: %w", err)
	}
	return &desc, nil
}

// EnsureIndex returns the data plane host for the named index, creating the
// index first if it does not exist. An existing index is used as-is; its
// dimension is not verified.
func (c *Client) EnsureIndex(ctx context.Context, spec IndexSpec) (string, error) {
	desc, err := c.DescribeIndex(ctx, spec.Name)
	if err != nil {
		return "", err
	}
	if desc == nil {
		desc, err = c.CreateIndex(ctx, spec)
		if err != nil {
			return "", err
		}
	}
	if desc.Host == "" {
		return "", fmt.Errorf("index %s has no host", spec.Name)
	}
	return desc.Host, nil
}

type upsertRequest struct {
	Vectors []Vector `json:"vectors"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// Upsert writes vectors to the index at host, returning the count written.
func (c *Client) Upsert(ctx context.Context, host string, vectors []Vector) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	var resp upsertResponse
	if err := c.postJSON(ctx, hostURL(host)+"/vectors/upsert", upsertRequest{Vectors: vectors}, &resp); err != nil {
		return 0, err
	}
	return resp.UpsertedCount, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

// Query runs a nearest-neighbor search and returns up to topK matches
// ranked by descending similarity.
func (c *Client) Query(ctx context.Context, host string, vector []float32, topK int) ([]Match, error) {
	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}
	var resp queryResponse
	if err := c.postJSON(ctx, hostURL(host)+"/query", req, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("pinecone POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone POST %s: status %d: %s", url, resp.StatusCode, readBody(resp.Body))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
}

// hostURL normalizes a data plane host to a full URL. The control plane
// reports bare hostnames; tests may pass full URLs.
func hostURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1024))
	return string(b)
}
