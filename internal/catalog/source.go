package catalog

import (
	"context"
	"fmt"
	"os"

	"resource-workers/internal/common/errors"
)

// Source fetches the raw resource guide document.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads the guide from a JSON file on disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return "file"
}

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewCatalogNotFoundError(s.Name(), fmt.Sprintf("path: %s", s.Path))
		}
		return nil, errors.NewCatalogLoadFailedError(s.Name(), err)
	}
	return data, nil
}

// StaticSource serves a fixed document; used by tools and tests.
type StaticSource struct {
	Label    string
	Document []byte
}

func (s *StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s *StaticSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Document == nil {
		return nil, errors.NewCatalogNotFoundError(s.Name(), "no document")
	}
	return s.Document, nil
}
