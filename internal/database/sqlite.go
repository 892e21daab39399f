package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteTimeLayout is a fixed-width UTC layout, so stored timestamps sort
// lexically in the same order as chronologically.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Tags are stored as a JSON array in TEXT columns, timestamps in
// SQLiteTimeLayout.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS exercise_templates (
		template_id      INTEGER PRIMARY KEY AUTOINCREMENT,
		category         TEXT    NOT NULL,
		body_text        TEXT    NOT NULL,
		difficulty       TEXT    NOT NULL DEFAULT 'easy',
		duration_seconds INTEGER NOT NULL DEFAULT 60 CHECK (duration_seconds > 0),
		tags             TEXT    NOT NULL DEFAULT '[]',
		language         TEXT    NOT NULL,
		created_at       TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS exercise_templates_language_category_idx
		ON exercise_templates (language, category)`,
	`CREATE TABLE IF NOT EXISTS generated_cards (
		card_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		template_id      INTEGER,
		title            TEXT    NOT NULL,
		description      TEXT    NOT NULL,
		category         TEXT    NOT NULL DEFAULT '',
		difficulty       TEXT    NOT NULL DEFAULT '',
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		tags             TEXT    NOT NULL DEFAULT '[]',
		language         TEXT    NOT NULL,
		is_ai_generated  INTEGER NOT NULL DEFAULT 0,
		user_goal        TEXT,
		energy_level     TEXT,
		user_id          TEXT,
		created_at       TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS generated_cards_created_at_idx
		ON generated_cards (created_at DESC, card_id DESC)`,
	`CREATE INDEX IF NOT EXISTS generated_cards_user_created_at_idx
		ON generated_cards (user_id, created_at DESC)`,
}

// OpenSQLite opens (or creates) a SQLite database at path and applies the
// schema. The handle is limited to one open connection; SQLite serializes
// writers anyway and a single connection keeps ":memory:" databases shared.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := MigrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("Opened sqlite database")
	return db, nil
}

// MigrateSQLite creates the SQLite tables when they do not exist yet.
func MigrateSQLite(db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}

// SQLiteHealth reports the state of a SQLite handle in the same shape as
// Service.Health.
func SQLiteHealth(db *sql.DB) map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := map[string]string{"driver": "sqlite"}
	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("sqlite down")
		return stats
	}

	dbStats := db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration_ms"] = strconv.FormatInt(dbStats.WaitDuration.Milliseconds(), 10)
	return stats
}
