package cardstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"HabitCards_V0.1/internal/generator"
)

// Memory keeps cards in process memory. It backs DB_DRIVER=memory and tests.
type Memory struct {
	mu     sync.RWMutex
	cards  []GeneratedCard
	nextID int64
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, now: time.Now}
}

func (m *Memory) Save(_ context.Context, draft generator.Draft, sc SaveContext) (GeneratedCard, error) {
	if err := validateDraft(draft); err != nil {
		return GeneratedCard{}, &PersistenceError{Op: "save", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := newCard(draft, sc)
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = m.now().UTC()
	m.cards = append(m.cards, c)
	return cloneCard(c), nil
}

func (m *Memory) ListRecent(_ context.Context, userID string, limit int) ([]GeneratedCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []GeneratedCard{}
	// Insertion order is creation order; walk backwards for newest first.
	for i := len(m.cards) - 1; i >= 0 && len(out) < limit; i-- {
		c := m.cards[i]
		if userID != "" && (c.UserID == nil || *c.UserID != userID) {
			continue
		}
		out = append(out, cloneCard(c))
	}
	return out, nil
}

func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.cards)), nil
}

func cloneCard(c GeneratedCard) GeneratedCard {
	c.Tags = slices.Clone(c.Tags)
	return c
}
