package generator

import (
	"strings"
	"testing"

	"HabitCards_V0.1/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func TestLanguageInstruction(t *testing.T) {
	russian := []string{"RU", "ru", " Ru ", "rU"}
	for _, lang := range russian {
		assert.Equal(t, RussianInstruction, LanguageInstruction(lang), lang)
	}

	english := []string{"EN", "en", "", "DE", "RUS", "ru-RU", "uk"}
	for _, lang := range english {
		assert.Equal(t, EnglishInstruction, LanguageInstruction(lang), lang)
	}
}

func TestBuildTemplatePrompt(t *testing.T) {
	tpl := catalog.Template{
		Category:        "breathing",
		BodyText:        "Take {N} breaths.",
		Difficulty:      "easy",
		DurationSeconds: 60,
	}
	prompt := BuildTemplatePrompt(tpl, UserContext{Goal: "reduce stress", Language: "EN"}, 7)

	assert.True(t, strings.HasPrefix(prompt, EnglishInstruction))
	assert.Contains(t, prompt, "Category: breathing")
	assert.Contains(t, prompt, "Take 7 breaths.")
	assert.Contains(t, prompt, "Default duration: 60 seconds")
	assert.Contains(t, prompt, "Repetition hint: 7")
	assert.Contains(t, prompt, "Goal: reduce stress")
	assert.Contains(t, prompt, "Energy: -")
	assert.Contains(t, prompt, `{"title": "...", "description": "...", "duration"`)
	assert.NotContains(t, prompt, "{N}")
}

func TestBuildFreeformPrompt(t *testing.T) {
	prompt := BuildFreeformPrompt(FreeformInput{
		ActionType:  "walk",
		Goal:        "more energy",
		Energy:      "low",
		Engagement:  "high",
		SessionType: "morning",
		BaseMeaning: "Go outside for a bit",
		Language:    "ru",
	}, 4)

	assert.True(t, strings.HasPrefix(prompt, RussianInstruction))
	for _, want := range []string{"Action type: walk", "User goal: more energy", "Energy: low",
		"Engagement: high", "Session type: morning", "Base meaning: Go outside for a bit", "Repetition hint: 4"} {
		assert.Contains(t, prompt, want)
	}
}
