package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser extracts the text pages of a resume file. Formats without a page
// concept return a single page.
type Parser interface {
	Parse(r io.Reader, filename string) ([]string, error)
}

// SupportedExtensions lists file extensions the loader can handle. PDF is
// the primary resume format; the rest are accepted as a convenience.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".md":   true,
	".txt":  true,
	".html": true,
	".htm":  true,
}

// ForFile returns the appropriate parser for a filename.
func (l *Loader) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: l.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
