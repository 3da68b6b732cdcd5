package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/kmathys/orgcanvas/pkg/chart"
)

// FileStore is a file-based store for CLI usage.
// Charts are stored as JSON files in a directory, one file per name.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// If dir is empty, defaults to ~/.config/orgcanvas/charts/.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "orgcanvas", "charts")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the base directory for chart files.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) chartPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Save(ctx context.Context, name string, c chart.Chart) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return chart.Export(c, s.chartPath(name))
}

func (s *FileStore) Load(ctx context.Context, name string) (chart.Chart, error) {
	if err := ValidateName(name); err != nil {
		return chart.Chart{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := chart.Import(s.chartPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return chart.Chart{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return chart.Chart{}, err
	}
	return c, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read chart dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.chartPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove chart file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
