/*
Package config reads the service configuration from the environment.
A .env file in the working directory is loaded first when present.
*/
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Storage backends accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Text generation providers accepted in LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds every tunable of the service.
type Config struct {
	Port int

	// Storage
	DBDriver         string
	DatabaseURL      string
	DBHost           string
	DBPort           string
	DBName           string
	DBUser           string
	DBPassword       string
	DBSchema         string
	SQLitePath       string
	DBMaxConns       int32
	DBConnectTimeout time.Duration
	DBQueryTimeout   time.Duration

	// Text generation
	LLMProvider    string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	LLMTimeout     time.Duration
	LLMMaxRetries  int
	LLMMaxTokens   int
	LLMTemperature float64

	// Catalog and history
	HistoryDefaultLimit int
	HistoryMaxLimit     int
	TemplateCacheSize   int
	TemplateCacheTTL    time.Duration
	SeedTemplates       bool
	AdminToken          string

	// Logging
	LogLevel  string
	LogPretty bool
}

// Load builds a Config from environment variables, applying defaults for
// anything unset. Malformed values are reported together.
func Load() (Config, error) {
	p := &parser{}

	cfg := Config{
		Port: p.int("PORT", 8080),

		DBDriver:         strings.ToLower(str("DB_DRIVER", DriverPostgres)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBHost:           str("BLUEPRINT_DB_HOST", "localhost"),
		DBPort:           str("BLUEPRINT_DB_PORT", "5432"),
		DBName:           os.Getenv("BLUEPRINT_DB_DATABASE"),
		DBUser:           os.Getenv("BLUEPRINT_DB_USERNAME"),
		DBPassword:       os.Getenv("BLUEPRINT_DB_PASSWORD"),
		DBSchema:         str("BLUEPRINT_DB_SCHEMA", "public"),
		SQLitePath:       str("SQLITE_PATH", "habit.db"),
		DBMaxConns:       int32(p.int("DB_MAX_CONNS", 4)),
		DBConnectTimeout: p.duration("DB_CONNECT_TIMEOUT", 5*time.Second),
		DBQueryTimeout:   p.duration("DB_QUERY_TIMEOUT", 5*time.Second),

		LLMProvider:    strings.ToLower(str("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    str("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  str("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    str("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:  str("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		LLMTimeout:     p.duration("LLM_TIMEOUT", 15*time.Second),
		LLMMaxRetries:  p.int("LLM_MAX_RETRIES", 2),
		LLMMaxTokens:   p.int("LLM_MAX_TOKENS", 200),
		LLMTemperature: p.float("LLM_TEMPERATURE", 0.8),

		HistoryDefaultLimit: p.int("HISTORY_DEFAULT_LIMIT", 20),
		HistoryMaxLimit:     p.int("HISTORY_MAX_LIMIT", 100),
		TemplateCacheSize:   p.int("TEMPLATE_CACHE_SIZE", 16),
		TemplateCacheTTL:    p.duration("TEMPLATE_CACHE_TTL", 30*time.Second),
		SeedTemplates:       p.bool("SEED_TEMPLATES", true),
		AdminToken:          os.Getenv("ADMIN_TOKEN"),

		LogLevel:  str("LOG_LEVEL", "info"),
		LogPretty: p.bool("LOG_PRETTY", false),
	}

	if len(p.errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(p.errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, sqlite, memory; got %q", c.DBDriver)
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or gemini; got %q", c.LLMProvider)
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.HistoryDefaultLimit < 1 || c.HistoryMaxLimit < c.HistoryDefaultLimit {
		return fmt.Errorf("HISTORY_DEFAULT_LIMIT must be >= 1 and <= HISTORY_MAX_LIMIT")
	}
	if c.DBDriver == DriverPostgres && c.DatabaseURL == "" && c.DBName == "" {
		return fmt.Errorf("postgres requires DATABASE_URL or BLUEPRINT_DB_DATABASE")
	}
	return nil
}

// PostgresDSN returns DATABASE_URL when given, otherwise a URL assembled from
// the BLUEPRINT_DB_* variables.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable&search_path=" + url.QueryEscape(c.DBSchema),
	}
	return u.String()
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parser collects conversion errors so Load can report all of them at once.
type parser struct {
	errs []string
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}
