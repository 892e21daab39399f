package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"HabitCards_V0.1/internal/cards"
	"HabitCards_V0.1/internal/cardstore"
	"HabitCards_V0.1/internal/catalog"
	"HabitCards_V0.1/internal/config"
	"HabitCards_V0.1/internal/database"
	"HabitCards_V0.1/internal/generator"
	"HabitCards_V0.1/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// storage is the selected backend for templates and cards.
type storage struct {
	templates catalog.Repository
	cards     cardstore.Store
	health    server.HealthFunc
	close     func()
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		svc, err := database.NewService(ctx, cfg.PostgresDSN(), database.PoolOptions{
			MaxConns:       cfg.DBMaxConns,
			ConnectTimeout: cfg.DBConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &storage{
			templates: catalog.NewPostgresRepository(svc.Queries()),
			cards:     cardstore.NewPostgres(svc.Queries(), cfg.DBQueryTimeout),
			health:    svc.Health,
			close:     svc.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			templates: catalog.NewSQLiteRepository(db),
			cards:     cardstore.NewSQLite(db, cfg.DBQueryTimeout),
			health:    func() map[string]string { return database.SQLiteHealth(db) },
			close:     func() { closeSQLite(db) },
		}, nil

	default:
		log.Warn().Msg("Using in-memory storage, cards are lost on restart")
		return &storage{
			templates: catalog.NewMemoryRepository(),
			cards:     cardstore.NewMemory(),
			close:     func() {},
		}, nil
	}
}

func closeSQLite(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close sqlite")
	}
}

// newBackend returns the configured text backend, or nil when no API key is
// set so every card uses the fallback text.
func newBackend(cfg config.Config) generator.TextBackend {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY is not set, cards will use fallback text")
			return nil
		}
		log.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.GeminiModel).Msg("Text backend configured")
		return generator.NewGeminiClient(generator.GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			MaxRetries: cfg.LLMMaxRetries,
		})
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY is not set, cards will use fallback text")
			return nil
		}
		log.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.OpenAIModel).Msg("Text backend configured")
		return generator.NewOpenAIClient(generator.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			MaxRetries: cfg.LLMMaxRetries,
		})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx := context.Background()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Could not open storage")
	}
	defer store.close() // Ensure the database connection is closed on exit.

	cat, err := catalog.New(store.templates, catalog.Options{
		CacheSize:    cfg.TemplateCacheSize,
		CacheTTL:     cfg.TemplateCacheTTL,
		QueryTimeout: cfg.DBQueryTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create template catalog")
	}
	if cfg.SeedTemplates {
		if _, err := catalog.Seed(ctx, cat); err != nil {
			log.Fatal().Err(err).Msg("Could not seed template catalog")
		}
	}

	handler := &cards.Handler{
		Catalog: cat,
		Generator: generator.New(newBackend(cfg), generator.Options{
			Timeout:     cfg.LLMTimeout,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
		}),
		Store:               store.cards,
		HistoryDefaultLimit: cfg.HistoryDefaultLimit,
		HistoryMaxLimit:     cfg.HistoryMaxLimit,
	}

	server := server.NewServer(cfg, server.New(cfg, handler, store.health))

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	log.Info().Str("addr", server.Addr).Str("driver", cfg.DBDriver).Msg("Starting habit card server")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server error")
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
