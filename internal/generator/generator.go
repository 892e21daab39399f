/*
Package generator turns a template or a set of free-form hints into a card
draft. The text backend is best effort: any failure, timeout or
unparseable answer yields a deterministic fallback draft instead of an
error, so a caller always gets a card.
*/
package generator

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"HabitCards_V0.1/internal/catalog"
	"github.com/rs/zerolog"
)

// Bounds of the placeholder substitution number, inclusive.
const (
	MinSubstitution = 3
	MaxSubstitution = 10
)

const (
	// FallbackTitleRunes is the length of a title cut from user text.
	FallbackTitleRunes = 40
	// MaxTitleRunes caps titles returned by the model.
	MaxTitleRunes = 200
	// MaxDurationSeconds is the longest duration accepted from the model.
	MaxDurationSeconds = catalog.MaxDurationSeconds
)

// Fallback reasons, logged when the deterministic draft is used.
const (
	ReasonNoBackend   = "no_backend"
	ReasonBackend     = "backend_error"
	ReasonEmpty       = "empty_output"
	ReasonUnparseable = "unparseable_output"
)

// UserContext is the caller-supplied context of a template card.
type UserContext struct {
	Goal     string
	Energy   string
	Language string
	UserID   string
}

// FreeformInput drives a card generated without a template.
type FreeformInput struct {
	ActionType  string
	Goal        string
	Energy      string
	Engagement  string
	SessionType string
	BaseMeaning string
	Language    string
}

// Draft is a generated card before persistence.
type Draft struct {
	Title           string
	Description     string
	DurationSeconds int
	IsAiGenerated   bool
	// Substitution is the number drawn for the template placeholder.
	Substitution int
	// FallbackReason is empty when the model output was used.
	FallbackReason string
}

// Options tunes backend calls.
type Options struct {
	// Timeout bounds one generation including retries.
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Generator builds drafts. It holds no mutable state; concurrent use is safe.
type Generator struct {
	backend TextBackend
	opts    Options
	intn    func(n int) int
}

// New returns a Generator over backend. A nil backend makes every draft a
// fallback draft.
func New(backend TextBackend, opts Options) *Generator {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 200
	}
	return &Generator{backend: backend, opts: opts, intn: rand.IntN}
}

// Substitution draws the placeholder number uniformly from
// [MinSubstitution, MaxSubstitution].
func (g *Generator) Substitution() int {
	return MinSubstitution + g.intn(MaxSubstitution-MinSubstitution+1)
}

// GenerateFromTemplate produces a card draft derived from tpl.
func (g *Generator) GenerateFromTemplate(ctx context.Context, tpl catalog.Template, uc UserContext) Draft {
	n := g.Substitution()

	fallback := Draft{
		Title:           fallbackTitle(uc.Goal, uc.Language),
		Description:     fallbackDescription(catalog.RenderBody(tpl.BodyText, n), uc.Language),
		DurationSeconds: tpl.DurationSeconds,
		Substitution:    n,
	}

	prompt := BuildTemplatePrompt(tpl, uc, n)
	return g.complete(ctx, prompt, fallback)
}

// GenerateFreeform produces a card draft from free-form hints only.
func (g *Generator) GenerateFreeform(ctx context.Context, in FreeformInput) Draft {
	n := g.Substitution()

	base := strings.TrimSpace(in.BaseMeaning)
	if base == "" {
		base = strings.TrimSpace(in.Goal)
	}
	fallback := Draft{
		Title:        fallbackTitle(base, in.Language),
		Description:  fallbackDescription(base, in.Language),
		Substitution: n,
	}

	prompt := BuildFreeformPrompt(in, n)
	return g.complete(ctx, prompt, fallback)
}

// complete calls the backend and merges its answer over fallback.
func (g *Generator) complete(ctx context.Context, prompt string, fallback Draft) Draft {
	log := zerolog.Ctx(ctx)

	if g.backend == nil {
		fallback.FallbackReason = ReasonNoBackend
		log.Info().Str("reason", fallback.FallbackReason).Msg("Using fallback card")
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.backend.Generate(callCtx, SystemPrompt, prompt, g.opts.MaxTokens, g.opts.Temperature)
	elapsed := time.Since(start)

	if err != nil {
		var berr *BackendError
		if !errors.As(err, &berr) {
			err = &BackendError{Provider: "unknown", Err: err}
		}
		fallback.FallbackReason = ReasonBackend
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("Text backend failed, using fallback card")
		return fallback
	}
	if strings.TrimSpace(raw) == "" {
		fallback.FallbackReason = ReasonEmpty
		log.Info().Str("reason", fallback.FallbackReason).Dur("elapsed", elapsed).Msg("Using fallback card")
		return fallback
	}

	obj, err := ExtractJSONObject(raw)
	if err != nil {
		fallback.FallbackReason = ReasonUnparseable
		log.Info().Str("reason", fallback.FallbackReason).Int("raw_len", len(raw)).Dur("elapsed", elapsed).Msg("Using fallback card")
		return fallback
	}

	log.Debug().Dur("elapsed", elapsed).Msg("Generated card text")
	return merge(obj, fallback)
}

// merge overrides fallback fields with well-typed fields of obj.
func merge(obj map[string]any, fallback Draft) Draft {
	d := fallback
	d.IsAiGenerated = true
	d.FallbackReason = ""

	if title, ok := obj["title"].(string); ok && strings.TrimSpace(title) != "" {
		d.Title = truncateRunes(strings.TrimSpace(title), MaxTitleRunes)
	}
	if desc, ok := obj["description"].(string); ok && strings.TrimSpace(desc) != "" {
		d.Description = strings.TrimSpace(desc)
	}
	if secs, ok := parseDuration(obj["duration"]); ok {
		d.DurationSeconds = secs
	}
	return d
}

// parseDuration accepts a positive integral JSON number or numeric string
// no greater than MaxDurationSeconds.
func parseDuration(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		f = float64(n)
	default:
		return 0, false
	}
	if f <= 0 || f > MaxDurationSeconds || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func fallbackTitle(text, language string) string {
	if text = strings.TrimSpace(text); text != "" {
		return truncateRunes(text, FallbackTitleRunes)
	}
	if IsRussian(language) {
		return "Совет"
	}
	return "Advice"
}

func fallbackDescription(text, language string) string {
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	if IsRussian(language) {
		return "Сделай небольшой шаг."
	}
	return "Take one small step."
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
