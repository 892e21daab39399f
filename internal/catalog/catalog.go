/*
Package catalog holds the exercise templates cards are generated from.
Templates are read-only at request time; new ones are only added by the
seed routine or the admin endpoint.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Placeholder is replaced in BodyText with the substitution number.
const Placeholder = "{N}"

// DefaultDurationSeconds applies when a template is added without a duration.
const DefaultDurationSeconds = 60

// MaxDurationSeconds is the longest exercise a template may declare.
const MaxDurationSeconds = 3600

// Defaults for zero Options fields.
const (
	DefaultCacheTTL     = 30 * time.Second
	DefaultQueryTimeout = 5 * time.Second
)

// ErrEmptyCatalog is returned when no template matches a request.
var ErrEmptyCatalog = errors.New("no templates match the requested language and category")

// ValidationError reports an invalid field on template creation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Template is one exercise the generator can build a card from.
type Template struct {
	ID              int64     `json:"id"`
	Category        string    `json:"category"`
	BodyText        string    `json:"bodyText"`
	Difficulty      string    `json:"difficulty"`
	DurationSeconds int       `json:"duration"`
	Tags            []string  `json:"tags"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TemplateFields is the input of Add. Zero values select defaults.
type TemplateFields struct {
	Category        string   `json:"category"`
	BodyText        string   `json:"bodyText"`
	Difficulty      string   `json:"difficulty"`
	DurationSeconds int      `json:"duration"`
	Tags            []string `json:"tags"`
	Language        string   `json:"language"`
}

// Repository is the row store behind a Catalog.
type Repository interface {
	Insert(ctx context.Context, t Template) (Template, error)
	ListByLanguage(ctx context.Context, language string) ([]Template, error)
	ListByCategoryAndLanguage(ctx context.Context, category, language string) ([]Template, error)
	Count(ctx context.Context) (int64, error)
}

// Options tunes a Catalog.
type Options struct {
	// CacheSize is the number of distinct language/category lists kept.
	CacheSize int
	// CacheTTL bounds how long a cached list is served. Templates written by
	// another process become visible once their list expires.
	CacheTTL time.Duration
	// QueryTimeout bounds every repository call.
	QueryTimeout time.Duration
}

type cacheKey struct {
	language string
	category string // empty for the whole language
}

// Catalog serves template lookups with a small expiring LRU in front of the
// repository. The cache is purged whenever a template is added.
type Catalog struct {
	repo         Repository
	queryTimeout time.Duration
	intn         func(n int) int

	// mu orders cache fills against purges. gen moves on every purge so a
	// read that started before an Add never stores its result.
	mu    sync.Mutex
	gen   uint64
	cache *expirable.LRU[cacheKey, []Template]
}

// New returns a Catalog over repo.
func New(repo Repository, opts Options) (*Catalog, error) {
	if repo == nil {
		return nil, errors.New("catalog: nil repository")
	}
	if opts.CacheSize < 1 {
		opts.CacheSize = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	return &Catalog{
		repo:         repo,
		queryTimeout: opts.QueryTimeout,
		intn:         rand.IntN,
		cache:        expirable.NewLRU[cacheKey, []Template](opts.CacheSize, nil, opts.CacheTTL),
	}, nil
}

// NormalizeLanguage upper-cases and trims a language code.
func NormalizeLanguage(language string) string {
	return strings.ToUpper(strings.TrimSpace(language))
}

// NormalizeCategory lower-cases and trims a category label.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// ListByLanguage returns every template in language.
func (c *Catalog) ListByLanguage(ctx context.Context, language string) ([]Template, error) {
	language = NormalizeLanguage(language)
	templates, err := c.list(ctx, cacheKey{language: language}, func(ctx context.Context) ([]Template, error) {
		return c.repo.ListByLanguage(ctx, language)
	})
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", language, err)
	}
	return templates, nil
}

// ListByCategoryAndLanguage returns templates matching both category and
// language. An empty category is rejected; use ListByLanguage instead.
func (c *Catalog) ListByCategoryAndLanguage(ctx context.Context, category, language string) ([]Template, error) {
	category = NormalizeCategory(category)
	language = NormalizeLanguage(language)
	if category == "" {
		return nil, &ValidationError{Field: "category", Message: "is required"}
	}
	templates, err := c.list(ctx, cacheKey{language: language, category: category}, func(ctx context.Context) ([]Template, error) {
		return c.repo.ListByCategoryAndLanguage(ctx, category, language)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s templates for %s: %w", category, language, err)
	}
	return templates, nil
}

// list serves key from the cache or fetches it under the query timeout.
// Callers always get their own copy of the slice.
func (c *Catalog) list(ctx context.Context, key cacheKey, fetch func(context.Context) ([]Template, error)) ([]Template, error) {
	if cached, ok := c.cache.Get(key); ok {
		return slices.Clone(cached), nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	templates, err := fetch(qctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.cache.Add(key, templates)
	}
	c.mu.Unlock()
	return slices.Clone(templates), nil
}

func (c *Catalog) invalidate() {
	c.mu.Lock()
	c.gen++
	c.cache.Purge()
	c.mu.Unlock()
}

// PickRandom returns a uniformly chosen candidate, or ErrEmptyCatalog.
func (c *Catalog) PickRandom(candidates []Template) (Template, error) {
	if len(candidates) == 0 {
		return Template{}, ErrEmptyCatalog
	}
	return candidates[c.intn(len(candidates))], nil
}

// Pick lists the templates for language, narrowed to category when one is
// given, and returns a random one.
func (c *Catalog) Pick(ctx context.Context, category, language string) (Template, error) {
	var (
		candidates []Template
		err        error
	)
	if NormalizeCategory(category) == "" {
		candidates, err = c.ListByLanguage(ctx, language)
	} else {
		candidates, err = c.ListByCategoryAndLanguage(ctx, category, language)
	}
	if err != nil {
		return Template{}, err
	}

	t, err := c.PickRandom(candidates)
	if err != nil {
		if NormalizeCategory(category) == "" {
			return Template{}, fmt.Errorf("language %q: %w", NormalizeLanguage(language), err)
		}
		return Template{}, fmt.Errorf("language %q, category %q: %w", NormalizeLanguage(language), NormalizeCategory(category), err)
	}
	return t, nil
}

// Add validates fields, fills defaults and stores a new template.
func (c *Catalog) Add(ctx context.Context, fields TemplateFields) (Template, error) {
	t := Template{
		Category:        NormalizeCategory(fields.Category),
		BodyText:        strings.TrimSpace(fields.BodyText),
		Difficulty:      strings.TrimSpace(fields.Difficulty),
		DurationSeconds: fields.DurationSeconds,
		Language:        NormalizeLanguage(fields.Language),
	}

	switch {
	case t.Category == "":
		return Template{}, &ValidationError{Field: "category", Message: "is required"}
	case t.BodyText == "":
		return Template{}, &ValidationError{Field: "bodyText", Message: "is required"}
	case t.Language == "":
		return Template{}, &ValidationError{Field: "language", Message: "is required"}
	case t.DurationSeconds < 0:
		return Template{}, &ValidationError{Field: "duration", Message: "must be a positive number of seconds"}
	case t.DurationSeconds > MaxDurationSeconds:
		return Template{}, &ValidationError{Field: "duration", Message: fmt.Sprintf("must be at most %d seconds", MaxDurationSeconds)}
	}

	if t.Difficulty == "" {
		t.Difficulty = DefaultDifficulty(t.Language)
	}
	if t.DurationSeconds == 0 {
		t.DurationSeconds = DefaultDurationSeconds
	}
	t.Tags = make([]string, 0, len(fields.Tags))
	for _, tag := range fields.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			t.Tags = append(t.Tags, tag)
		}
	}

	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	stored, err := c.repo.Insert(qctx, t)
	if err != nil {
		return Template{}, fmt.Errorf("insert template: %w", err)
	}
	c.invalidate()
	return stored, nil
}

// Count returns the number of stored templates.
func (c *Catalog) Count(ctx context.Context) (int64, error) {
	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	return c.repo.Count(qctx)
}

// DefaultDifficulty is the localized "easy".
func DefaultDifficulty(language string) string {
	if NormalizeLanguage(language) == "RU" {
		return "легко"
	}
	return "easy"
}

// RenderBody substitutes n for every placeholder in body.
func RenderBody(body string, n int) string {
	return strings.ReplaceAll(body, Placeholder, strconv.Itoa(n))
}
