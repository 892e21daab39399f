package cardstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"HabitCards_V0.1/internal/database"
	"HabitCards_V0.1/internal/generator"
)

// SQLite stores cards in a SQLite generated_cards table.
type SQLite struct {
	db           *sql.DB
	queryTimeout time.Duration
	now          func() time.Time
}

func NewSQLite(db *sql.DB, queryTimeout time.Duration) *SQLite {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &SQLite{db: db, queryTimeout: queryTimeout, now: time.Now}
}

const cardColumns = `card_id, template_id, title, description, category, difficulty, duration_seconds,
	tags, language, is_ai_generated, user_goal, energy_level, user_id, created_at`

func (s *SQLite) Save(ctx context.Context, draft generator.Draft, sc SaveContext) (GeneratedCard, error) {
	if err := validateDraft(draft); err != nil {
		return GeneratedCard{}, &PersistenceError{Op: "save", Err: err}
	}
	c := newCard(draft, sc)
	c.CreatedAt = s.now().UTC()

	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return GeneratedCard{}, &PersistenceError{Op: "save", Err: fmt.Errorf("encode tags: %w", err)}
	}

	ctx, cancel := writeContext(ctx, s.queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_cards (template_id, title, description, category, difficulty, duration_seconds,
			tags, language, is_ai_generated, user_goal, energy_level, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.TemplateID, c.Title, c.Description, c.Category, c.Difficulty, c.DurationSeconds,
		string(tags), c.Language, c.IsAiGenerated, c.UserGoal, c.EnergyLevel, c.UserID,
		c.CreatedAt.Format(database.SQLiteTimeLayout),
	)
	if err != nil {
		return GeneratedCard{}, &PersistenceError{Op: "save", Err: err}
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return GeneratedCard{}, &PersistenceError{Op: "save", Err: err}
	}
	return c, nil
}

func (s *SQLite) ListRecent(ctx context.Context, userID string, limit int) ([]GeneratedCard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cardColumns+` FROM generated_cards ORDER BY created_at DESC, card_id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cardColumns+` FROM generated_cards WHERE user_id = ? ORDER BY created_at DESC, card_id DESC LIMIT ?`,
			userID, limit)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	out := []GeneratedCard{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return out, nil
}

func (s *SQLite) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM generated_cards`).Scan(&n); err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return n, nil
}

func scanCard(rows *sql.Rows) (GeneratedCard, error) {
	var (
		c                           GeneratedCard
		templateID                  sql.NullInt64
		tags, createdAt             string
		userGoal, energyLevel, user sql.NullString
	)
	if err := rows.Scan(&c.ID, &templateID, &c.Title, &c.Description, &c.Category, &c.Difficulty,
		&c.DurationSeconds, &tags, &c.Language, &c.IsAiGenerated, &userGoal, &energyLevel, &user, &createdAt); err != nil {
		return GeneratedCard{}, err
	}
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return GeneratedCard{}, fmt.Errorf("decode tags of card %d: %w", c.ID, err)
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	created, err := time.Parse(database.SQLiteTimeLayout, createdAt)
	if err != nil {
		return GeneratedCard{}, fmt.Errorf("parse created_at of card %d: %w", c.ID, err)
	}
	c.CreatedAt = created
	if templateID.Valid {
		id := templateID.Int64
		c.TemplateID = &id
	}
	c.UserGoal = nullString(userGoal)
	c.EnergyLevel = nullString(energyLevel)
	c.UserID = nullString(user)
	return c, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
