// Package ingest runs the one-shot ingestion pipeline: load resume files,
// split them into chunks, embed and upsert them into the vector index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talentsift/screener/internal/domain"
	"github.com/talentsift/screener/internal/splitter"
)

// Result summarizes one ingestion run.
type Result struct {
	Documents int
	Chunks    int
	Upserted  int
}

// Run loads documents from dir and upserts their chunks. An empty directory
// is not an error: the result reports zero documents and the index is left
// untouched.
func Run(ctx context.Context, dir string, cfg splitter.Config, src domain.DocumentSource, index domain.VectorIndex, log *slog.Logger) (Result, error) {
	docs, err := src.Load(dir)
	if err != nil {
		return Result{}, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return Result{}, nil
	}
	log.Info("loaded documents", "dir", dir, "documents", len(docs))

	chunks, err := splitter.Split(docs, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("split documents: %w", err)
	}
	log.Info("split documents", "chunks", len(chunks))

	if err := index.EnsureIndex(ctx); err != nil {
		return Result{}, err
	}
	n, err := index.Upsert(ctx, chunks)
	if err != nil {
		return Result{Documents: len(docs), Chunks: len(chunks), Upserted: n}, fmt.Errorf("upsert chunks: %w", err)
	}

	return Result{Documents: len(docs), Chunks: len(chunks), Upserted: n}, nil
}
