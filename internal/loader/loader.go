package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/talentsift/screener/internal/domain"
)

// Loader reads resume files from a directory and produces one Document per
// page of text.
type Loader struct {
	FallbackPdftotext bool
}

// Load scans dir recursively for supported resume files. A missing directory
// is created and yields an empty result; so does an existing directory with
// no matching files. Parser errors propagate to the caller.
func (l *Loader) Load(dir string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create resumes dir: %w", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat resumes dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var docs []domain.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSupportedExtension(d.Name()) {
			return nil
		}
		fileDocs, err := l.loadFile(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		docs = append(docs, fileDocs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (l *Loader) loadFile(path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := l.ForFile(path)
	if err != nil {
		return nil, err
	}
	pages, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Content:  page,
			Metadata: domain.Metadata{Source: path, Page: i},
		})
	}
	return docs, nil
}
