package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"HabitCards_V0.1/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	raw    string
	err    error
	block  bool
	system string
	user   string
	calls  int
}

func (f *fakeBackend) Generate(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	if f.block {
		<-ctx.Done()
		return "", &BackendError{Provider: "fake", Err: ctx.Err()}
	}
	return f.raw, f.err
}

var breathingTemplate = catalog.Template{
	ID:              1,
	Category:        "breathing",
	BodyText:        "Take {N} slow breaths.",
	Difficulty:      "easy",
	DurationSeconds: 60,
	Tags:            []string{"stress"},
	Language:        "EN",
}

func fixedGenerator(backend TextBackend, n int) *Generator {
	g := New(backend, Options{Timeout: time.Second})
	g.intn = func(int) int { return n - MinSubstitution }
	return g
}

func TestSubstitution_Bounded(t *testing.T) {
	g := New(nil, Options{})
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		n := g.Substitution()
		require.GreaterOrEqual(t, n, MinSubstitution)
		require.LessOrEqual(t, n, MaxSubstitution)
		seen[n] = true
	}
	assert.Len(t, seen, MaxSubstitution-MinSubstitution+1)
}

func TestGenerateFromTemplate_UsesModelOutput(t *testing.T) {
	backend := &fakeBackend{raw: `Here you go: {"title":"Calm down","description":"Breathe in slowly.","duration":90}`}
	g := fixedGenerator(backend, 5)

	d := g.GenerateFromTemplate(context.Background(), breathingTemplate, UserContext{Goal: "reduce stress", Language: "EN"})

	assert.True(t, d.IsAiGenerated)
	assert.Equal(t, "Calm down", d.Title)
	assert.Equal(t, "Breathe in slowly.", d.Description)
	assert.Equal(t, 90, d.DurationSeconds)
	assert.Equal(t, 5, d.Substitution)
	assert.Empty(t, d.FallbackReason)

	assert.Equal(t, SystemPrompt, backend.system)
	assert.Contains(t, backend.user, "Take 5 slow breaths.")
	assert.True(t, strings.HasPrefix(backend.user, EnglishInstruction))
}

func TestGenerateFromTemplate_MissingFieldsFallBack(t *testing.T) {
	backend := &fakeBackend{raw: `{"title":"Only a title"}`}
	g := fixedGenerator(backend, 4)

	d := g.GenerateFromTemplate(context.Background(), breathingTemplate, UserContext{Goal: "reduce stress", Language: "EN"})

	assert.True(t, d.IsAiGenerated)
	assert.Equal(t, "Only a title", d.Title)
	assert.Equal(t, "Take 4 slow breaths.", d.Description)
	assert.Equal(t, 60, d.DurationSeconds)
}

func TestGenerateFromTemplate_DurationPolicy(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     int
	}{
		{"positive integer wins", `120`, 120},
		{"numeric string wins", `"45"`, 45},
		{"zero ignored", `0`, 60},
		{"negative ignored", `-30`, 60},
		{"fraction ignored", `12.5`, 60},
		{"too long ignored", `86400`, 60},
		{"text ignored", `"two minutes"`, 60},
		{"null ignored", `null`, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{raw: `{"title":"T","description":"D","duration":` + tt.duration + `}`}
			d := fixedGenerator(backend, 3).GenerateFromTemplate(context.Background(), breathingTemplate, UserContext{Language: "EN"})
			assert.Equal(t, tt.want, d.DurationSeconds)
		})
	}
}

func TestGenerate_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		backend TextBackend
		reason  string
	}{
		{"no backend", nil, ReasonNoBackend},
		{"backend error", &fakeBackend{err: &BackendError{Provider: "fake", StatusCode: 500, Err: errors.New("boom")}}, ReasonBackend},
		{"plain error", &fakeBackend{err: errors.New("dial tcp: refused")}, ReasonBackend},
		{"empty output", &fakeBackend{raw: "  \n"}, ReasonEmpty},
		{"no json", &fakeBackend{raw: "I cannot help with that."}, ReasonUnparseable},
		{"malformed json", &fakeBackend{raw: `{"title":"A","description":"B",}`}, ReasonUnparseable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fixedGenerator(tt.backend, 6)

			d := g.GenerateFromTemplate(context.Background(), breathingTemplate, UserContext{Goal: "reduce stress", Language: "EN"})
			assert.False(t, d.IsAiGenerated)
			assert.Equal(t, tt.reason, d.FallbackReason)
			assert.Equal(t, "reduce stress", d.Title)
			assert.Equal(t, "Take 6 slow breaths.", d.Description)
			assert.Equal(t, 60, d.DurationSeconds)

			f := g.GenerateFreeform(context.Background(), FreeformInput{BaseMeaning: "Stretch your arms", Language: "RU"})
			assert.False(t, f.IsAiGenerated)
			assert.Equal(t, "Stretch your arms", f.Title)
			assert.Equal(t, "Stretch your arms", f.Description)
		})
	}
}

func TestGenerate_TimeoutFallsBack(t *testing.T) {
	backend := &fakeBackend{block: true}
	g := New(backend, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	d := g.GenerateFreeform(context.Background(), FreeformInput{Goal: "sleep better", Language: "EN"})

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, d.IsAiGenerated)
	assert.Equal(t, ReasonBackend, d.FallbackReason)
	assert.Equal(t, "sleep better", d.Title)
}

func TestFallback_AlwaysNonEmpty(t *testing.T) {
	g := New(&fakeBackend{err: errors.New("down")}, Options{Timeout: time.Second})
	inputs := []FreeformInput{
		{},
		{Language: "RU"},
		{Language: "EN", BaseMeaning: "   "},
		{Language: "xx", Goal: "walk"},
		{Language: "RU", BaseMeaning: strings.Repeat("очень длинный текст ", 10)},
	}
	for _, in := range inputs {
		d := g.GenerateFreeform(context.Background(), in)
		assert.NotEmpty(t, strings.TrimSpace(d.Title), "%+v", in)
		assert.NotEmpty(t, strings.TrimSpace(d.Description), "%+v", in)
		assert.LessOrEqual(t, utf8.RuneCountInString(d.Title), FallbackTitleRunes)
	}

	empty := catalog.Template{Category: "focus", BodyText: "   ", DurationSeconds: 30}
	d := g.GenerateFromTemplate(context.Background(), empty, UserContext{Language: "RU"})
	assert.Equal(t, "Совет", d.Title)
	assert.Equal(t, "Сделай небольшой шаг.", d.Description)

	d = g.GenerateFromTemplate(context.Background(), empty, UserContext{Language: "EN"})
	assert.Equal(t, "Advice", d.Title)
	assert.Equal(t, "Take one small step.", d.Description)
}

func TestGenerateFreeform_PrefersBaseMeaning(t *testing.T) {
	g := fixedGenerator(nil, 3)
	d := g.GenerateFreeform(context.Background(), FreeformInput{Goal: "goal text", BaseMeaning: "base text"})
	assert.Equal(t, "base text", d.Title)

	d = g.GenerateFreeform(context.Background(), FreeformInput{Goal: "goal text"})
	assert.Equal(t, "goal text", d.Title)
}

func TestMerge_TruncatesLongTitle(t *testing.T) {
	long := strings.Repeat("я", MaxTitleRunes+50)
	backend := &fakeBackend{raw: `{"title":"` + long + `","description":"d"}`}
	d := fixedGenerator(backend, 3).GenerateFreeform(context.Background(), FreeformInput{})
	assert.Equal(t, MaxTitleRunes, utf8.RuneCountInString(d.Title))
}
