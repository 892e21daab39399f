package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ExerciseTemplate struct {
	TemplateID      int64              `json:"template_id"`
	Category        string             `json:"category"`
	BodyText        string             `json:"body_text"`
	Difficulty      string             `json:"difficulty"`
	DurationSeconds int32              `json:"duration_seconds"`
	Tags            []string           `json:"tags"`
	Language        string             `json:"language"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

type GeneratedCard struct {
	CardID          int64              `json:"card_id"`
	TemplateID      pgtype.Int8        `json:"template_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Category        string             `json:"category"`
	Difficulty      string             `json:"difficulty"`
	DurationSeconds int32              `json:"duration_seconds"`
	Tags            []string           `json:"tags"`
	Language        string             `json:"language"`
	IsAiGenerated   bool               `json:"is_ai_generated"`
	UserGoal        pgtype.Text        `json:"user_goal"`
	EnergyLevel     pgtype.Text        `json:"energy_level"`
	UserID          pgtype.Text        `json:"user_id"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}
