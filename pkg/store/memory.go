package store

import (
	"context"
	"sort"
	"sync"
)

type memoryRecord struct {
	data []byte
	meta Summary
}

// MemoryStore keeps charts in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.RLock()
	rec, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	c, err := decode(id, rec.data)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Chart: c, CreatedAt: rec.meta.CreatedAt, UpdatedAt: rec.meta.UpdatedAt}, nil
}

func (s *MemoryStore) Put(ctx context.Context, doc *Document) (*Document, error) {
	id, err := prepare(doc)
	if err != nil {
		return nil, err
	}
	data, err := encode(id, doc.Chart)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := now()
	created := t
	if prev, ok := s.docs[id]; ok {
		created = prev.meta.CreatedAt
	}
	meta := summarize(id, doc.Chart, created, t)
	s.docs[id] = memoryRecord{data: data, meta: meta}

	c, err := decode(id, data)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Chart: c, CreatedAt: created, UpdatedAt: t}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return notFound(id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.docs))
	for _, rec := range s.docs {
		out = append(out, rec.meta)
	}
	s.mu.RUnlock()
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func sortSummaries(out []Summary) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

var _ Store = (*MemoryStore)(nil)
