// Package server exposes the simulation over HTTP: the catalog, player
// trading, the league, the scenario and the clock, plus a websocket stream
// of simulation events.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rustyeddy/pitlane/sim"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Addr        string
	CORSOrigins []string
	Engine      *sim.Engine
	// Clock is optional; without it the clock routes answer 503.
	Clock *sim.Scheduler
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	engine *sim.Engine
	clock  *sim.Scheduler
	origin []string
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		engine: cfg.Engine,
		clock:  cfg.Clock,
		origin: origins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origin,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// The stream is long-lived and must stay outside the timeout.
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/instruments", s.handleInstruments)
			r.Get("/instruments/{id}", s.handleInstrument)
			r.Post("/trades", s.handleTrade)
			r.Get("/portfolio", s.handlePortfolio)
			r.Get("/transactions", s.handleTransactions)
			r.Get("/league", s.handleLeague)
			r.Get("/news", s.handleNews)
			r.Get("/scenario", s.handleGetScenario)
			r.Put("/scenario", s.handleSetScenario)
			r.Get("/snapshot", s.handleSnapshot)

			r.Route("/clock", func(r chi.Router) {
				r.Get("/", s.handleClock)
				r.Post("/{action}", s.handleClockAction)
				r.Put("/interval", s.handleClockInterval)
			})
		})
	})
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
