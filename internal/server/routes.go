package server

import (
	"net/http"

	"HabitCards_V0.1/internal/admin"
	"HabitCards_V0.1/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID", admin.TokenHeader},
		MaxAge:       300,
	}))

	e.Use(LoggerMiddleware)

	// Service status
	e.GET("/", s.rootHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/health/server", admin.GetServerHealthHandler)

	// Card generation
	e.POST("/generate-card", s.cards.GenerateCardHandler)
	e.POST("/generate", s.cards.LegacyGenerateHandler)
	e.GET("/history", s.cards.HistoryHandler)

	// Template catalog
	e.GET("/templates", s.cards.ListTemplatesHandler)
	e.POST("/templates", s.cards.CreateTemplateHandler, admin.RequireToken(s.adminToken))

	return e
}

// rootHandler is the liveness endpoint. It reports catalog and history sizes,
// counted concurrently.
func (s *Server) rootHandler(c echo.Context) error {
	g, grpCtx := errgroup.WithContext(c.Request().Context())

	var templates, cards int64
	g.Go(func() error {
		n, err := s.cards.Catalog.Count(grpCtx)
		templates = n
		return err
	})
	g.Go(func() error {
		n, err := s.cards.Store.Count(grpCtx)
		cards = n
		return err
	})

	if err := g.Wait(); err != nil {
		utility.GetLogger(c).Error().Err(err).Msg("Failed to count records")
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"error":  "storage unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "habit card server running",
		"templates": templates,
		"cards":     cards,
	})
}

func (s *Server) healthHandler(c echo.Context) error {
	stats := s.health()
	if stats["status"] == "down" {
		return c.JSON(http.StatusServiceUnavailable, stats)
	}
	return c.JSON(http.StatusOK, stats)
}

// LoggerMiddleware tags every request with an X-Request-ID and exposes a
// child logger both on the echo context and on the request context.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("ip", utility.GetRealIP(c)).
			Logger()

		c.Set("logger", &logger)
		req := c.Request()
		c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

		return next(c)
	}
}
