package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Pinecone connection
	PineconeAPIKey string
	IndexName      string
	PineconeCloud  string
	PineconeRegion string

	// HuggingFace models
	HFToken        string
	EmbeddingModel string
	ChatModel      string
	MaxNewTokens   int
	Temperature    float64

	// Ingestion
	ResumesDir   string
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	RetrieveK int

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment, after merging in a .env
// file if one is present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		PineconeAPIKey: os.Getenv("PINECONE_API_KEY"),
		IndexName:      envOr("PINECONE_INDEX_NAME", "resumes-index"),
		PineconeCloud:  envOr("PINECONE_CLOUD", "aws"),
		PineconeRegion: envOr("PINECONE_REGION", "us-east-1"),

		HFToken:        os.Getenv("HUGGINGFACEHUB_API_TOKEN"),
		EmbeddingModel: envOr("EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
		ChatModel:      envOr("CHAT_MODEL", "meta-llama/Llama-3.2-3B-Instruct"),
		MaxNewTokens:   envInt("MAX_NEW_TOKENS", 512),
		Temperature:    envFloat("TEMPERATURE", 0.1),

		ResumesDir:   envOr("RESUMES_DIR", "./resumes"),
		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 100),

		RetrieveK: envInt("RETRIEVE_K", 5),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = 512
	}
	if cfg.RetrieveK <= 0 {
		cfg.RetrieveK = 5
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PineconeAPIKey == "" {
		return fmt.Errorf("PINECONE_API_KEY is required")
	}
	if c.HFToken == "" {
		return fmt.Errorf("HUGGINGFACEHUB_API_TOKEN is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
