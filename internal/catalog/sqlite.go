package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"HabitCards_V0.1/internal/database"
)

// SQLiteRepository stores templates in a SQLite exercise_templates table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const templateColumns = `template_id, category, body_text, difficulty, duration_seconds, tags, language, created_at`

func (r *SQLiteRepository) Insert(ctx context.Context, t Template) (Template, error) {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return Template{}, fmt.Errorf("encode tags: %w", err)
	}
	t.CreatedAt = r.now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO exercise_templates (category, body_text, difficulty, duration_seconds, tags, language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Category, t.BodyText, t.Difficulty, t.DurationSeconds, string(tags), t.Language,
		t.CreatedAt.Format(database.SQLiteTimeLayout),
	)
	if err != nil {
		return Template{}, err
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) ListByLanguage(ctx context.Context, language string) ([]Template, error) {
	return r.query(ctx,
		`SELECT `+templateColumns+` FROM exercise_templates WHERE language = ? ORDER BY template_id`,
		language)
}

func (r *SQLiteRepository) ListByCategoryAndLanguage(ctx context.Context, category, language string) ([]Template, error) {
	return r.query(ctx,
		`SELECT `+templateColumns+` FROM exercise_templates WHERE category = ? AND language = ? ORDER BY template_id`,
		category, language)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM exercise_templates`).Scan(&n)
	return n, err
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Template, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Template{}
	for rows.Next() {
		var (
			t         Template
			tags      string
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Category, &t.BodyText, &t.Difficulty, &t.DurationSeconds, &tags, &t.Language, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of template %d: %w", t.ID, err)
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if t.CreatedAt, err = time.Parse(database.SQLiteTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of template %d: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
