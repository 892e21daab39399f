/*
Package cardstore persists generated cards as immutable audit records and
answers history queries. Cards are only ever inserted.
*/
package cardstore

import (
	"context"
	"fmt"
	"time"

	"HabitCards_V0.1/internal/generator"
	"HabitCards_V0.1/internal/utility"
)

// GeneratedCard is a persisted card.
type GeneratedCard struct {
	ID              int64     `json:"id"`
	TemplateID      *int64    `json:"templateId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Difficulty      string    `json:"difficulty"`
	DurationSeconds int       `json:"duration"`
	Tags            []string  `json:"tags"`
	Language        string    `json:"language"`
	IsAiGenerated   bool      `json:"isAiGenerated"`
	UserGoal        *string   `json:"userGoal"`
	EnergyLevel     *string   `json:"energyLevel,omitempty"`
	UserID          *string   `json:"userId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SaveContext carries everything stored alongside a draft: the fields
// copied from the source template and the caller's context. TemplateID
// is zero when no template was used.
type SaveContext struct {
	TemplateID  int64
	Category    string
	Difficulty  string
	Tags        []string
	Language    string
	UserGoal    string
	EnergyLevel string
	UserID      string
}

// Store is the card persistence contract.
type Store interface {
	// Save writes draft as a new card and returns it with ID and CreatedAt set.
	Save(ctx context.Context, draft generator.Draft, sc SaveContext) (GeneratedCard, error)
	// ListRecent returns at most limit cards, newest first, restricted to
	// userID when it is non-empty.
	ListRecent(ctx context.Context, userID string, limit int) ([]GeneratedCard, error)
	Count(ctx context.Context) (int64, error)
}

// PersistenceError wraps a storage-layer failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cardstore %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ClampLimit maps a requested history size into [1, max], using def for
// non-positive requests.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// writeContext detaches a write from the caller's cancellation so a
// started insert runs to completion, bounded by timeout.
func writeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// newCard builds the card fields shared by every backend.
func newCard(draft generator.Draft, sc SaveContext) GeneratedCard {
	tags := append([]string{}, sc.Tags...)
	c := GeneratedCard{
		Title:           draft.Title,
		Description:     draft.Description,
		Category:        sc.Category,
		Difficulty:      sc.Difficulty,
		DurationSeconds: draft.DurationSeconds,
		Tags:            tags,
		Language:        sc.Language,
		IsAiGenerated:   draft.IsAiGenerated,
		UserGoal:        utility.StringPtr(sc.UserGoal),
		EnergyLevel:     utility.StringPtr(sc.EnergyLevel),
		UserID:          utility.StringPtr(sc.UserID),
	}
	if sc.TemplateID != 0 {
		id := sc.TemplateID
		c.TemplateID = &id
	}
	return c
}

func validateDraft(draft generator.Draft) error {
	if draft.Title == "" || draft.Description == "" {
		return fmt.Errorf("draft must have a title and a description")
	}
	return nil
}
