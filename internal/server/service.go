// Package server exposes the dashboard API over HTTP using chi.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teamboard/teamboard/internal/chat"
	"github.com/teamboard/teamboard/internal/knowledge"
)

// Config holds server configuration.
type Config struct {
	Environment string // reported by the health endpoint
}

// Service wires the HTTP routes to the domain services.
type Service struct {
	cfg       Config
	knowledge *knowledge.Service
	chat      *chat.Service
	router    chi.Router
	logger    zerolog.Logger
	startTime time.Time
}

// New creates the HTTP service and mounts all routes.
func New(cfg Config, kb *knowledge.Service, chatSvc *chat.Service, logger zerolog.Logger) *Service {
	s := &Service{
		cfg:       cfg,
		knowledge: kb,
		chat:      chatSvc,
		router:    chi.NewRouter(),
		logger:    logger,
		startTime: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Router returns the mounted handler for the HTTP server.
func (s *Service) Router() http.Handler {
	return s.router
}

func (s *Service) setupRoutes() {
	general := newIPRateLimiter(100, 15*time.Minute)
	aiMessages := newIPRateLimiter(50, time.Hour)
	kbWrites := newIPRateLimiter(30, 15*time.Minute)

	s.router.Use(s.requestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(general.Handler("Too many requests from this IP, please try again later."))

	s.router.Get("/health", s.handleHealth)

	kbLimit := kbWrites.Handler("Knowledge base operation limit exceeded. Please try again later.")
	aiLimit := aiMessages.Handler("AI message limit exceeded. You can send up to 50 messages per hour.")

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/knowledge-base", func(r chi.Router) {
			r.Get("/", s.handleKnowledgeList)
			r.With(kbLimit).Post("/", s.handleKnowledgeCreate)
			r.Get("/stats", s.handleKnowledgeStats)
			r.With(kbLimit).Post("/from-message/{id}", s.handleKnowledgeFromMessage)
			r.Get("/{id}", s.handleKnowledgeGet)
			r.With(kbLimit).Put("/{id}", s.handleKnowledgeUpdate)
			r.With(kbLimit).Delete("/{id}", s.handleKnowledgeDelete)
		})

		r.Get("/tags", s.handleTags)
		r.Get("/tags/categories", s.handleCategories)

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", s.handleMessagesRecent)
			r.With(aiLimit).Post("/", s.handleMessageAsk)
			r.Get("/stats", s.handleMessageStats)
			r.Get("/{id}", s.handleMessageGet)
			r.Delete("/{id}", s.handleMessageDelete)
		})
	})
}

// requestID tags each request with a correlation id, honoring one supplied
// by the caller.
func (s *Service) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", ww.Header().Get("X-Request-ID")).
			Msg("request")
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "OK",
		"timestamp":   time.Now().Format(time.RFC3339),
		"environment": s.cfg.Environment,
		"service":     "Team Dashboard API",
		"uptime":      time.Since(s.startTime).Round(time.Second).String(),
	})
}
