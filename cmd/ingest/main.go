// Command ingest embeds and uploads every resume in RESUMES_DIR to the
// configured Pinecone index. Run it once, or whenever resumes change.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/talentsift/screener/internal/config"
	"github.com/talentsift/screener/internal/hf"
	"github.com/talentsift/screener/internal/ingest"
	"github.com/talentsift/screener/internal/loader"
	"github.com/talentsift/screener/internal/pinecone"
	"github.com/talentsift/screener/internal/splitter"
	"github.com/talentsift/screener/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	embedder, err := hf.NewEmbedder(cfg.HFToken, cfg.EmbeddingModel)
	if err != nil {
		log.Error("embedder setup failed", "error", err)
		os.Exit(1)
	}
	pc := pinecone.NewClient(pinecone.Config{APIKey: cfg.PineconeAPIKey})
	gateway := store.NewGateway(embedder, pc, cfg.IndexName, cfg.PineconeCloud, cfg.PineconeRegion, log)

	src := &loader.Loader{FallbackPdftotext: cfg.PDFFallbackPdftotext}
	splitCfg := splitter.Config{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap}

	res, err := ingest.Run(context.Background(), cfg.ResumesDir, splitCfg, src, gateway, log)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
	if res.Documents == 0 {
		log.Error("no resume files found, put your resumes there and re-run", "dir", cfg.ResumesDir)
		os.Exit(1)
	}

	log.Info("done",
		"documents", res.Documents,
		"chunks", res.Chunks,
		"upserted", res.Upserted,
		"index", cfg.IndexName,
	)
}
