package database

import (
	"context"
	"fmt"
)

// Cards keep template_id without a foreign key so removing a template never
// touches historical cards.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS exercise_templates (
		template_id      BIGSERIAL PRIMARY KEY,
		category         TEXT        NOT NULL,
		body_text        TEXT        NOT NULL,
		difficulty       TEXT        NOT NULL DEFAULT 'easy',
		duration_seconds INTEGER     NOT NULL DEFAULT 60 CHECK (duration_seconds > 0),
		tags             TEXT[]      NOT NULL DEFAULT '{}',
		language         TEXT        NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS exercise_templates_language_category_idx
		ON exercise_templates (language, category)`,
	`CREATE TABLE IF NOT EXISTS generated_cards (
		card_id          BIGSERIAL PRIMARY KEY,
		template_id      BIGINT,
		title            TEXT        NOT NULL,
		description      TEXT        NOT NULL,
		category         TEXT        NOT NULL DEFAULT '',
		difficulty       TEXT        NOT NULL DEFAULT '',
		duration_seconds INTEGER     NOT NULL DEFAULT 0,
		tags             TEXT[]      NOT NULL DEFAULT '{}',
		language         TEXT        NOT NULL,
		is_ai_generated  BOOLEAN     NOT NULL DEFAULT false,
		user_goal        TEXT,
		energy_level     TEXT,
		user_id          TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS generated_cards_created_at_idx
		ON generated_cards (created_at DESC, card_id DESC)`,
	`CREATE INDEX IF NOT EXISTS generated_cards_user_created_at_idx
		ON generated_cards (user_id, created_at DESC)`,
}

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	for _, stmt := range postgresSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
