package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTemplate = `INSERT INTO exercise_templates (category, body_text, difficulty, duration_seconds, tags, language)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING template_id, category, body_text, difficulty, duration_seconds, tags, language, created_at
`

type CreateTemplateParams struct {
	Category        string   `json:"category"`
	BodyText        string   `json:"body_text"`
	Difficulty      string   `json:"difficulty"`
	DurationSeconds int32    `json:"duration_seconds"`
	Tags            []string `json:"tags"`
	Language        string   `json:"language"`
}

func (q *Queries) CreateTemplate(ctx context.Context, arg CreateTemplateParams) (ExerciseTemplate, error) {
	row := q.db.QueryRow(ctx, createTemplate,
		arg.Category,
		arg.BodyText,
		arg.Difficulty,
		arg.DurationSeconds,
		arg.Tags,
		arg.Language,
	)
	var i ExerciseTemplate
	err := row.Scan(
		&i.TemplateID,
		&i.Category,
		&i.BodyText,
		&i.Difficulty,
		&i.DurationSeconds,
		&i.Tags,
		&i.Language,
		&i.CreatedAt,
	)
	return i, err
}

const listTemplatesByLanguage = `SELECT template_id, category, body_text, difficulty, duration_seconds, tags, language, created_at
FROM exercise_templates
WHERE language = $1
ORDER BY template_id
`

func (q *Queries) ListTemplatesByLanguage(ctx context.Context, language string) ([]ExerciseTemplate, error) {
	rows, err := q.db.Query(ctx, listTemplatesByLanguage, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExerciseTemplate{}
	for rows.Next() {
		var i ExerciseTemplate
		if err := rows.Scan(
			&i.TemplateID,
			&i.Category,
			&i.BodyText,
			&i.Difficulty,
			&i.DurationSeconds,
			&i.Tags,
			&i.Language,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTemplatesByCategoryAndLanguage = `SELECT template_id, category, body_text, difficulty, duration_seconds, tags, language, created_at
FROM exercise_templates
WHERE category = $1 AND language = $2
ORDER BY template_id
`

type ListTemplatesByCategoryAndLanguageParams struct {
	Category string `json:"category"`
	Language string `json:"language"`
}

func (q *Queries) ListTemplatesByCategoryAndLanguage(ctx context.Context, arg ListTemplatesByCategoryAndLanguageParams) ([]ExerciseTemplate, error) {
	rows, err := q.db.Query(ctx, listTemplatesByCategoryAndLanguage, arg.Category, arg.Language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExerciseTemplate{}
	for rows.Next() {
		var i ExerciseTemplate
		if err := rows.Scan(
			&i.TemplateID,
			&i.Category,
			&i.BodyText,
			&i.Difficulty,
			&i.DurationSeconds,
			&i.Tags,
			&i.Language,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTemplates = `SELECT count(*) FROM exercise_templates
`

func (q *Queries) CountTemplates(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countTemplates)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createGeneratedCard = `INSERT INTO generated_cards (
    template_id, title, description, category, difficulty, duration_seconds,
    tags, language, is_ai_generated, user_goal, energy_level, user_id
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING card_id, template_id, title, description, category, difficulty, duration_seconds,
    tags, language, is_ai_generated, user_goal, energy_level, user_id, created_at
`

type CreateGeneratedCardParams struct {
	TemplateID      pgtype.Int8 `json:"template_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Difficulty      string      `json:"difficulty"`
	DurationSeconds int32       `json:"duration_seconds"`
	Tags            []string    `json:"tags"`
	Language        string      `json:"language"`
	IsAiGenerated   bool        `json:"is_ai_generated"`
	UserGoal        pgtype.Text `json:"user_goal"`
	EnergyLevel     pgtype.Text `json:"energy_level"`
	UserID          pgtype.Text `json:"user_id"`
}

func (q *Queries) CreateGeneratedCard(ctx context.Context, arg CreateGeneratedCardParams) (GeneratedCard, error) {
	row := q.db.QueryRow(ctx, createGeneratedCard,
		arg.TemplateID,
		arg.Title,
		arg.Description,
		arg.Category,
		arg.Difficulty,
		arg.DurationSeconds,
		arg.Tags,
		arg.Language,
		arg.IsAiGenerated,
		arg.UserGoal,
		arg.EnergyLevel,
		arg.UserID,
	)
	var i GeneratedCard
	err := row.Scan(
		&i.CardID,
		&i.TemplateID,
		&i.Title,
		&i.Description,
		&i.Category,
		&i.Difficulty,
		&i.DurationSeconds,
		&i.Tags,
		&i.Language,
		&i.IsAiGenerated,
		&i.UserGoal,
		&i.EnergyLevel,
		&i.UserID,
		&i.CreatedAt,
	)
	return i, err
}

const listRecentCards = `SELECT card_id, template_id, title, description, category, difficulty, duration_seconds,
    tags, language, is_ai_generated, user_goal, energy_level, user_id, created_at
FROM generated_cards
ORDER BY created_at DESC, card_id DESC
LIMIT $1
`

func (q *Queries) ListRecentCards(ctx context.Context, limitCount int32) ([]GeneratedCard, error) {
	rows, err := q.db.Query(ctx, listRecentCards, limitCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGeneratedCards(rows)
}

const listRecentCardsByUser = `SELECT card_id, template_id, title, description, category, difficulty, duration_seconds,
    tags, language, is_ai_generated, user_goal, energy_level, user_id, created_at
FROM generated_cards
WHERE user_id = $1
ORDER BY created_at DESC, card_id DESC
LIMIT $2
`

type ListRecentCardsByUserParams struct {
	UserID     pgtype.Text `json:"user_id"`
	LimitCount int32       `json:"limit_count"`
}

func (q *Queries) ListRecentCardsByUser(ctx context.Context, arg ListRecentCardsByUserParams) ([]GeneratedCard, error) {
	rows, err := q.db.Query(ctx, listRecentCardsByUser, arg.UserID, arg.LimitCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGeneratedCards(rows)
}

const countGeneratedCards = `SELECT count(*) FROM generated_cards
`

func (q *Queries) CountGeneratedCards(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countGeneratedCards)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type cardRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanGeneratedCards(rows cardRows) ([]GeneratedCard, error) {
	items := []GeneratedCard{}
	for rows.Next() {
		var i GeneratedCard
		if err := rows.Scan(
			&i.CardID,
			&i.TemplateID,
			&i.Title,
			&i.Description,
			&i.Category,
			&i.Difficulty,
			&i.DurationSeconds,
			&i.Tags,
			&i.Language,
			&i.IsAiGenerated,
			&i.UserGoal,
			&i.EnergyLevel,
			&i.UserID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
