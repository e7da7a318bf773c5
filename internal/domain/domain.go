package domain

import "context"

// Document is a unit of loaded resume text, one per source page.
type Document struct {
	Content  string
	Metadata Metadata
}

// Metadata travels with a document through splitting, storage and retrieval.
type Metadata struct {
	Source string // Originating file path.
	Page   int    // Page index within the source (0-based).
}

// Chunk is a windowed slice of a document's content. It inherits the parent
// document's metadata so retrieved text stays traceable to a resume file.
type Chunk struct {
	Content  string
	Metadata Metadata
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// DocumentSource loads documents from somewhere, typically a directory of
// resume files.
type DocumentSource interface {
	Load(dir string) ([]Document, error)
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorIndex is the remote nearest-neighbor index.
type VectorIndex interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, chunks []Chunk) (int, error)
	Retrieve(ctx context.Context, query string, k int) ([]ScoredChunk, error)
}

// TextGenerator produces text from a rendered prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
