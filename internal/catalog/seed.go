package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// DefaultTemplates is the built-in catalog installed into an empty store.
var DefaultTemplates = []TemplateFields{
	{Category: "breathing", Language: "RU", Difficulty: "легко", DurationSeconds: 60, Tags: []string{"стресс", "дыхание"},
		BodyText: "Сделай {N} медленных вдохов: вдох на 4 счёта, выдох на 6."},
	{Category: "breathing", Language: "RU", Difficulty: "средне", DurationSeconds: 120, Tags: []string{"сон", "дыхание"},
		BodyText: "Дыши по квадрату: вдох, пауза, выдох, пауза по 4 счёта. Повтори {N} раз."},
	{Category: "posture", Language: "RU", Difficulty: "легко", DurationSeconds: 45, Tags: []string{"спина", "офис"},
		BodyText: "Выпрямись, сведи лопатки и удержи положение {N} секунд."},
	{Category: "movement", Language: "RU", Difficulty: "средне", DurationSeconds: 90, Tags: []string{"энергия"},
		BodyText: "Встань и сделай {N} приседаний в спокойном темпе."},
	{Category: "focus", Language: "RU", Difficulty: "легко", DurationSeconds: 60, Tags: []string{"внимание"},
		BodyText: "Назови {N} предметов вокруг себя, которые ты видишь прямо сейчас."},
	{Category: "hydration", Language: "RU", Difficulty: "легко", DurationSeconds: 30, Tags: []string{"вода"},
		BodyText: "Выпей стакан воды маленькими глотками, сделав {N} пауз."},

	{Category: "breathing", Language: "EN", Difficulty: "easy", DurationSeconds: 60, Tags: []string{"stress", "breathing"},
		BodyText: "Take {N} slow breaths: inhale for 4 counts, exhale for 6."},
	{Category: "breathing", Language: "EN", Difficulty: "medium", DurationSeconds: 120, Tags: []string{"sleep", "breathing"},
		BodyText: "Try box breathing: inhale, hold, exhale, hold for 4 counts each. Repeat {N} times."},
	{Category: "posture", Language: "EN", Difficulty: "easy", DurationSeconds: 45, Tags: []string{"back", "office"},
		BodyText: "Sit tall, draw your shoulder blades together and hold for {N} seconds."},
	{Category: "movement", Language: "EN", Difficulty: "medium", DurationSeconds: 90, Tags: []string{"energy"},
		BodyText: "Stand up and do {N} slow squats."},
	{Category: "focus", Language: "EN", Difficulty: "easy", DurationSeconds: 60, Tags: []string{"attention"},
		BodyText: "Name {N} things you can see around you right now."},
	{Category: "hydration", Language: "EN", Difficulty: "easy", DurationSeconds: 30, Tags: []string{"water"},
		BodyText: "Drink a glass of water in small sips, pausing {N} times."},
}

// Seed installs DefaultTemplates when the catalog is empty. It returns the
// number of templates inserted.
func Seed(ctx context.Context, c *Catalog) (int, error) {
	n, err := c.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	if n > 0 {
		log.Info().Int64("templates", n).Msg("Template catalog already populated, skipping seed")
		return 0, nil
	}

	for i, fields := range DefaultTemplates {
		if _, err := c.Add(ctx, fields); err != nil {
			return i, fmt.Errorf("seed template %d: %w", i, err)
		}
	}
	log.Info().Int("templates", len(DefaultTemplates)).Msg("Seeded template catalog")
	return len(DefaultTemplates), nil
}
