package cardstore

import (
	"context"
	"time"

	"HabitCards_V0.1/internal/database"
	"HabitCards_V0.1/internal/generator"
	"HabitCards_V0.1/internal/utility"
	"github.com/jackc/pgx/v5/pgtype"
)

// Postgres stores cards in the generated_cards table through the pool
// behind q. Each call holds one pooled connection for the duration of a
// single statement.
type Postgres struct {
	q            *database.Queries
	queryTimeout time.Duration
}

func NewPostgres(q *database.Queries, queryTimeout time.Duration) *Postgres {
	return &Postgres{q: q, queryTimeout: queryTimeout}
}

func (p *Postgres) Save(ctx context.Context, draft generator.Draft, sc SaveContext) (GeneratedCard, error) {
	if err := validateDraft(draft); err != nil {
		return GeneratedCard{}, &PersistenceError{Op: "save", Err: err}
	}
	c := newCard(draft, sc)

	ctx, cancel := writeContext(ctx, p.queryTimeout)
	defer cancel()

	row, err := p.q.CreateGeneratedCard(ctx, database.CreateGeneratedCardParams{
		TemplateID:      pgtype.Int8{Int64: sc.TemplateID, Valid: sc.TemplateID != 0},
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		Difficulty:      c.Difficulty,
		DurationSeconds: int32(c.DurationSeconds),
		Tags:            c.Tags,
		Language:        c.Language,
		IsAiGenerated:   c.IsAiGenerated,
		UserGoal:        utility.TextFromString(sc.UserGoal),
		EnergyLevel:     utility.TextFromString(sc.EnergyLevel),
		UserID:          utility.TextFromString(sc.UserID),
	})
	if err != nil {
		return GeneratedCard{}, &PersistenceError{Op: "save", Err: err}
	}
	return cardFromRow(row), nil
}

func (p *Postgres) ListRecent(ctx context.Context, userID string, limit int) ([]GeneratedCard, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	var (
		rows []database.GeneratedCard
		err  error
	)
	if userID == "" {
		rows, err = p.q.ListRecentCards(ctx, int32(limit))
	} else {
		rows, err = p.q.ListRecentCardsByUser(ctx, database.ListRecentCardsByUserParams{
			UserID:     utility.TextFromString(userID),
			LimitCount: int32(limit),
		})
	}
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	out := make([]GeneratedCard, 0, len(rows))
	for _, row := range rows {
		out = append(out, cardFromRow(row))
	}
	return out, nil
}

func (p *Postgres) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	n, err := p.q.CountGeneratedCards(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return n, nil
}

func (p *Postgres) timeout() time.Duration {
	if p.queryTimeout <= 0 {
		return 5 * time.Second
	}
	return p.queryTimeout
}

func cardFromRow(row database.GeneratedCard) GeneratedCard {
	c := GeneratedCard{
		ID:              row.CardID,
		Title:           row.Title,
		Description:     row.Description,
		Category:        row.Category,
		Difficulty:      row.Difficulty,
		DurationSeconds: int(row.DurationSeconds),
		Tags:            row.Tags,
		Language:        row.Language,
		IsAiGenerated:   row.IsAiGenerated,
		UserGoal:        utility.TextPtr(row.UserGoal),
		EnergyLevel:     utility.TextPtr(row.EnergyLevel),
		UserID:          utility.TextPtr(row.UserID),
		CreatedAt:       row.CreatedAt.Time,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if row.TemplateID.Valid {
		id := row.TemplateID.Int64
		c.TemplateID = &id
	}
	return c
}
