package catalog

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryRepository keeps templates in process memory.
type MemoryRepository struct {
	mu        sync.RWMutex
	templates []Template
	nextID    int64
	now       func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, now: time.Now}
}

func (r *MemoryRepository) Insert(_ context.Context, t Template) (Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = r.now().UTC()
	t.Tags = slices.Clone(t.Tags)
	r.templates = append(r.templates, t)
	return t, nil
}

func (r *MemoryRepository) ListByLanguage(_ context.Context, language string) ([]Template, error) {
	return r.filter(func(t Template) bool { return t.Language == language }), nil
}

func (r *MemoryRepository) ListByCategoryAndLanguage(_ context.Context, category, language string) ([]Template, error) {
	return r.filter(func(t Template) bool { return t.Category == category && t.Language == language }), nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.templates)), nil
}

func (r *MemoryRepository) filter(match func(Template) bool) []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Template{}
	for _, t := range r.templates {
		if match(t) {
			t.Tags = slices.Clone(t.Tags)
			out = append(out, t)
		}
	}
	return out
}
