package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentsift/screener/internal/config"
	"github.com/talentsift/screener/internal/hf"
	"github.com/talentsift/screener/internal/ingest"
	"github.com/talentsift/screener/internal/loader"
	"github.com/talentsift/screener/internal/pinecone"
	"github.com/talentsift/screener/internal/rag"
	"github.com/talentsift/screener/internal/splitter"
	"github.com/talentsift/screener/internal/store"
	"github.com/talentsift/screener/internal/web"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	embedder, err := hf.NewEmbedder(cfg.HFToken, cfg.EmbeddingModel)
	if err != nil {
		log.Error("embedder setup failed", "error", err)
		os.Exit(1)
	}
	generator, err := hf.NewGenerator(cfg.HFToken, cfg.ChatModel, cfg.MaxNewTokens, cfg.Temperature)
	if err != nil {
		log.Error("chat model setup failed", "error", err)
		os.Exit(1)
	}
	pc := pinecone.NewClient(pinecone.Config{APIKey: cfg.PineconeAPIKey})
	gateway := store.NewGateway(embedder, pc, cfg.IndexName, cfg.PineconeCloud, cfg.PineconeRegion, log)

	// Ingest whatever is in the resumes directory; an empty directory just
	// means we serve against the existing index contents.
	src := &loader.Loader{FallbackPdftotext: cfg.PDFFallbackPdftotext}
	splitCfg := splitter.Config{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap}
	res, err := ingest.Run(ctx, cfg.ResumesDir, splitCfg, src, gateway, log)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
	if res.Documents == 0 {
		log.Warn("no resumes found, serving existing index", "dir", cfg.ResumesDir, "index", cfg.IndexName)
		if err := gateway.EnsureIndex(ctx); err != nil {
			log.Error("index setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("ingestion complete", "documents", res.Documents, "chunks", res.Chunks, "upserted", res.Upserted)
	}

	orch := rag.NewOrchestrator(gateway, generator, cfg.RetrieveK, log)
	srv := web.NewServer(orch, generator.Stats(), log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		generator.Close()
	}()

	log.Info("starting resume screener", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
