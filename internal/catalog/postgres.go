package catalog

import (
	"context"

	"HabitCards_V0.1/internal/database"
)

// PostgresRepository stores templates in the exercise_templates table.
type PostgresRepository struct {
	q *database.Queries
}

func NewPostgresRepository(q *database.Queries) *PostgresRepository {
	return &PostgresRepository{q: q}
}

func (r *PostgresRepository) Insert(ctx context.Context, t Template) (Template, error) {
	row, err := r.q.CreateTemplate(ctx, database.CreateTemplateParams{
		Category:        t.Category,
		BodyText:        t.BodyText,
		Difficulty:      t.Difficulty,
		DurationSeconds: int32(t.DurationSeconds),
		Tags:            t.Tags,
		Language:        t.Language,
	})
	if err != nil {
		return Template{}, err
	}
	return fromRow(row), nil
}

func (r *PostgresRepository) ListByLanguage(ctx context.Context, language string) ([]Template, error) {
	rows, err := r.q.ListTemplatesByLanguage(ctx, language)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *PostgresRepository) ListByCategoryAndLanguage(ctx context.Context, category, language string) ([]Template, error) {
	rows, err := r.q.ListTemplatesByCategoryAndLanguage(ctx, database.ListTemplatesByCategoryAndLanguageParams{
		Category: category,
		Language: language,
	})
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	return r.q.CountTemplates(ctx)
}

func fromRow(row database.ExerciseTemplate) Template {
	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	return Template{
		ID:              row.TemplateID,
		Category:        row.Category,
		BodyText:        row.BodyText,
		Difficulty:      row.Difficulty,
		DurationSeconds: int(row.DurationSeconds),
		Tags:            tags,
		Language:        row.Language,
		CreatedAt:       row.CreatedAt.Time,
	}
}

func fromRows(rows []database.ExerciseTemplate) []Template {
	out := make([]Template, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out
}
