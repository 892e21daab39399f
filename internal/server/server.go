/*
Package server implements the application's network transport layer.
It builds the HTTP server, configures timeouts and mounts the card
handlers on the router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"HabitCards_V0.1/internal/cards"
	"HabitCards_V0.1/internal/config"
)

// HealthFunc reports the state of the storage backend.
type HealthFunc func() map[string]string

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// health reports storage state on GET /health.
	health HealthFunc

	// cards serves generation, templates and history.
	cards *cards.Handler

	// adminToken guards catalog writes; empty disables the guard.
	adminToken string
}

// New assembles a Server from its dependencies.
func New(cfg config.Config, handler *cards.Handler, health HealthFunc) *Server {
	if health == nil {
		health = func() map[string]string {
			return map[string]string{"status": "up", "driver": cfg.DBDriver}
		}
	}
	return &Server{
		port:       cfg.Port,
		health:     health,
		cards:      handler,
		adminToken: cfg.AdminToken,
	}
}

// NewServer returns a configured *http.Server for s. The write timeout
// always leaves room for a full generation attempt.
func NewServer(cfg config.Config, s *Server) *http.Server {
	writeTimeout := max(30*time.Second, cfg.LLMTimeout+10*time.Second)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,        // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second,   // Maximum duration for reading the entire request.
		WriteTimeout: writeTimeout,       // Maximum duration before timing out writes of the response.
	}
}
