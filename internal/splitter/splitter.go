package splitter

import (
	"fmt"

	"github.com/talentsift/screener/internal/domain"
)

// Config controls splitting behavior.
type Config struct {
	ChunkSize    int // Max characters per chunk.
	ChunkOverlap int // Characters shared between consecutive chunks.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 100,
	}
}

// Validate rejects configurations the splitter cannot honor.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Split windows each document's content into chunks of at most ChunkSize
// characters, consecutive chunks of the same document sharing ChunkOverlap
// characters. Every chunk inherits its parent document's metadata unchanged.
func Split(docs []domain.Document, cfg Config) ([]domain.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for _, d := range docs {
		for _, piece := range splitText(d.Content, cfg.ChunkSize, cfg.ChunkOverlap) {
			chunks = append(chunks, domain.Chunk{
				Content:  piece,
				Metadata: d.Metadata,
			})
		}
	}
	return chunks, nil
}

// splitText slides a window of size chars over the text, stepping by
// size-overlap. Splitting is character-exact, not semantic.
func splitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
