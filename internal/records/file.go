package records

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSource reads the JSON asset files (employees.json, keycardentries.json,
// images.json, categories.json) from a directory.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Employees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := s.read(ctx, CollectionEmployees, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileSource) KeyCardEntries(ctx context.Context) ([]KeyCardEntry, error) {
	var out []KeyCardEntry
	if err := s.read(ctx, CollectionEntries, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileSource) Images(ctx context.Context) ([]Image, error) {
	var out []Image
	if err := s.read(ctx, CollectionImages, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileSource) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.read(ctx, CollectionCategories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileSource) read(ctx context.Context, collection string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, collection+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
