package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/awantoch/flowviz/model"
	"github.com/google/uuid"
)

// MemoryStorage implements Storage in-memory (for fallback/dev mode)
type MemoryStorage struct {
	mu      sync.Mutex
	renders map[uuid.UUID]*model.Render
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{renders: make(map[uuid.UUID]*model.Render)}
}

func (m *MemoryStorage) SaveRender(ctx context.Context, r *model.Render) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.renders[r.ID] = &cp
	return nil
}

func (m *MemoryStorage) GetRender(ctx context.Context, id uuid.UUID) (*model.Render, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.renders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryStorage) ListRenders(ctx context.Context) ([]*model.Render, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Render, 0, len(m.renders))
	for _, r := range m.renders {
		cp := *r
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStorage) DeleteRender(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.renders[id]; !ok {
		return ErrNotFound
	}
	delete(m.renders, id)
	return nil
}

func (m *MemoryStorage) Close() error { return nil }

func sortNewestFirst(rs []*model.Render) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.After(rs[j].CreatedAt)
		}
		return rs[i].ID.String() < rs[j].ID.String()
	})
}
