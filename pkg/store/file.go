package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
)

// FileStore keeps one JSON file per chart in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

type fileRecord struct {
	Chart     json.RawMessage `json:"chart"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewFileStore creates a file-based store rooted at baseDir.
// If baseDir is empty, defaults to ~/.local/share/lanechart/charts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "lanechart", "charts")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) chartPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) read(id string) (*fileRecord, error) {
	data, err := os.ReadFile(s.chartPath(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read chart %s", id)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse chart %s", id)
	}
	return &rec, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Document, error) {
	if errors.ValidateID(id) != nil {
		return nil, notFound(id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.read(id)
	if err != nil {
		return nil, err
	}
	c, err := decode(id, rec.Chart)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Chart: c, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}, nil
}

func (s *FileStore) Put(ctx context.Context, doc *Document) (*Document, error) {
	id, err := prepare(doc)
	if err != nil {
		return nil, err
	}
	body, err := encode(id, doc.Chart)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := now()
	rec := fileRecord{Chart: body, CreatedAt: t, UpdatedAt: t}
	if prev, err := s.read(id); err == nil {
		rec.CreatedAt = prev.CreatedAt
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "marshal chart %s", id)
	}
	if err := os.WriteFile(s.chartPath(id), data, 0600); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "write chart %s", id)
	}

	c, err := decode(id, body)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Chart: c, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if errors.ValidateID(id) != nil {
		return notFound(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.chartPath(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove chart %s", id)
	}
	return nil
}

// List skips files that cannot be parsed.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read store dir")
	}

	out := []Summary{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := s.read(id)
		if err != nil {
			continue
		}
		var c chart.Chart
		if err := json.Unmarshal(rec.Chart, &c); err != nil {
			continue
		}
		out = append(out, summarize(id, &c, rec.CreatedAt, rec.UpdatedAt))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

// Path returns the directory holding chart files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
