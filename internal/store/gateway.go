// Package store is the gateway to the remote vector index. It owns the
// index handle: ensuring the index exists, embedding and upserting chunks,
// and retrieving the nearest chunks for a query.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talentsift/screener/internal/domain"
	"github.com/talentsift/screener/internal/pinecone"
)

// Pinecone's upsert endpoint caps batch sizes; stay well under it.
const upsertBatchSize = 100

// indexClient is the slice of the Pinecone client the gateway uses.
type indexClient interface {
	EnsureIndex(ctx context.Context, spec pinecone.IndexSpec) (string, error)
	Upsert(ctx context.Context, host string, vectors []pinecone.Vector) (int, error)
	Query(ctx context.Context, host string, vector []float32, topK int) ([]pinecone.Match, error)
}

// Gateway implements domain.VectorIndex on top of Pinecone.
type Gateway struct {
	embedder domain.Embedder
	client   indexClient
	spec     pinecone.IndexSpec
	host     string
	log      *slog.Logger
}

func NewGateway(embedder domain.Embedder, client indexClient, indexName, cloud, region string, log *slog.Logger) *Gateway {
	return &Gateway{
		embedder: embedder,
		client:   client,
		spec: pinecone.IndexSpec{
			Name:      indexName,
			Dimension: embedder.Dimension(),
			Metric:    "cosine",
			Cloud:     cloud,
			Region:    region,
		},
		log: log,
	}
}

// EnsureIndex creates the index if missing and resolves its data plane
// host. Idempotent; a second call is a no-op.
func (g *Gateway) EnsureIndex(ctx context.Context) error {
	if g.host != "" {
		return nil
	}
	host, err := g.client.EnsureIndex(ctx, g.spec)
	if err != nil {
		return fmt.Errorf("ensure index %s: %w", g.spec.Name, err)
	}
	g.host = host
	g.log.Info("index ready", "index", g.spec.Name, "host", host)
	return nil
}

// Upsert embeds each chunk and writes the records to the index, returning
// the count written. Any failure surfaces immediately; there is no
// partial-success masking.
func (g *Gateway) Upsert(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if err := g.EnsureIndex(ctx); err != nil {
		return 0, err
	}

	written := 0
	batch := make([]pinecone.Vector, 0, upsertBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := g.client.Upsert(ctx, g.host, batch)
		if err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		written += n
		batch = batch[:0]
		return nil
	}

	for _, chunk := range chunks {
		vec, err := g.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return written, fmt.Errorf("embed chunk from %s: %w", chunk.Metadata.Source, err)
		}
		batch = append(batch, pinecone.Vector{
			ID:     uuid.NewString(),
			Values: vec,
			Metadata: map[string]any{
				"text":   chunk.Content,
				"source": chunk.Metadata.Source,
				"page":   chunk.Metadata.Page,
			},
		})
		if len(batch) == upsertBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

// Retrieve embeds the query and returns the top k chunks ranked by
// descending similarity. Fewer than k come back only when the index holds
// fewer records.
func (g *Gateway) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if err := g.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	vec, err := g.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := g.client.Query(ctx, g.host, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", g.spec.Name, err)
	}

	results := make([]domain.ScoredChunk, 0, len(matches))
	for _, m := range matches {
		chunk := domain.Chunk{}
		if v, ok := m.Metadata["text"].(string); ok {
			chunk.Content = v
		}
		if v, ok := m.Metadata["source"].(string); ok {
			chunk.Metadata.Source = v
		}
		if v, ok := m.Metadata["page"].(float64); ok {
			chunk.Metadata.Page = int(v)
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: m.Score})
	}
	return results, nil
}
