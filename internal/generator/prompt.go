package generator

import (
	"fmt"
	"strings"

	"HabitCards_V0.1/internal/catalog"
)

// Directives returned by LanguageInstruction.
const (
	RussianInstruction = "Пиши текст только на русском языке."
	EnglishInstruction = "Write text only in English."
)

// SystemPrompt frames every generation call.
const SystemPrompt = `You write short, warm texts for a mobile app about healthy habits.
You never give medical advice and never mention diagnoses.
You always answer with exactly one JSON object and nothing else.`

const jsonDirective = `Return exactly one JSON object, with no markdown and no text around it, of the form:
{"title": "...", "description": "...", "duration": <seconds as an integer>}
The title must be at most 40 characters.`

const templatePromptTemplate = `%s

Rewrite the exercise below as a short motivating card for the user.

=== EXERCISE ===
Category: %s
Exercise: %s
Difficulty: %s
Default duration: %d seconds
Repetition hint: %d

=== USER ===
Goal: %s
Energy: %s

%s`

const freeformPromptTemplate = `%s

Write a short motivating card for a health app.

Given:
- Action type: %s
- User goal: %s
- Energy: %s
- Engagement: %s
- Session type: %s
- Base meaning: %s
- Repetition hint: %d

%s`

// LanguageInstruction returns the Russian directive when language is "RU"
// in any letter case, and the English one for every other value.
func LanguageInstruction(language string) string {
	if IsRussian(language) {
		return RussianInstruction
	}
	return EnglishInstruction
}

// IsRussian reports whether language normalizes to "RU".
func IsRussian(language string) bool {
	return catalog.NormalizeLanguage(language) == "RU"
}

// BuildTemplatePrompt renders the user instruction for a template card.
func BuildTemplatePrompt(tpl catalog.Template, uc UserContext, n int) string {
	return fmt.Sprintf(templatePromptTemplate,
		LanguageInstruction(uc.Language),
		tpl.Category,
		catalog.RenderBody(tpl.BodyText, n),
		tpl.Difficulty,
		tpl.DurationSeconds,
		n,
		orDash(uc.Goal),
		orDash(uc.Energy),
		jsonDirective,
	)
}

// BuildFreeformPrompt renders the user instruction for a card without a template.
func BuildFreeformPrompt(in FreeformInput, n int) string {
	return fmt.Sprintf(freeformPromptTemplate,
		LanguageInstruction(in.Language),
		orDash(in.ActionType),
		orDash(in.Goal),
		orDash(in.Energy),
		orDash(in.Engagement),
		orDash(in.SessionType),
		orDash(in.BaseMeaning),
		n,
		jsonDirective,
	)
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}
