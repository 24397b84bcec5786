// Package server exposes the Duskvale game engine over HTTP: JSON game
// operations, a live journal watch stream, health probes, and Prometheus
// metrics.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duskvale/duskvale/internal/cast"
	"github.com/duskvale/duskvale/internal/engine"
	"github.com/duskvale/duskvale/internal/health"
	"github.com/duskvale/duskvale/internal/observe"
	"github.com/duskvale/duskvale/internal/session"
)

// Server holds the HTTP surface over one [engine.Engine].
type Server struct {
	engine  *engine.Engine
	health  *health.Handler
	metrics *observe.Metrics
	hub     *JournalHub

	corsOrigin string
}

// Option is a functional option for [New].
type Option func(*Server)

// WithHealth sets the health handler mounted at /healthz and /readyz.
// Default: a handler with no readiness checkers.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics sets the metrics instance used by the HTTP middleware.
// Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithCORSOrigin enables CORS headers with the given allowed origin.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithJournalHub sets the hub that streams journal entries to websocket
// watchers. Pass the same hub registered as the engine's notifier.
func WithJournalHub(h *JournalHub) Option {
	return func(s *Server) { s.hub = h }
}

// New creates a [Server] over eng.
func New(eng *engine.Engine, opts ...Option) *Server {
	s := &Server{engine: eng}
	for _, o := range opts {
		o(s)
	}
	if s.health == nil {
		s.health = health.New()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.hub == nil {
		s.hub = NewJournalHub()
	}
	return s
}

// Handler returns the fully assembled HTTP handler: all routes wrapped in
// the observability middleware and, when configured, CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/game/new", s.handleNewGame)
	mux.HandleFunc("POST /api/interrogate", s.handleInterrogate)
	mux.HandleFunc("GET /api/journal", s.handleJournal)
	mux.Handle("GET /api/journal/watch", s.hub)
	mux.HandleFunc("POST /api/game/{id}/advance-day", s.handleAdvanceDay)
	mux.HandleFunc("POST /api/game/{id}/eliminate", s.handleEliminate)
	mux.HandleFunc("GET /api/game/{id}/status", s.handleStatus)

	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	h = observe.Middleware(s.metrics)(h)
	if s.corsOrigin != "" {
		h = corsMiddleware(s.corsOrigin, h)
	}
	return h
}

// ── Handlers ─────────────────────────────────────────────────────────────────

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.NewGame(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start a new game")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":  res.SessionID,
		"currentDay": res.Day,
		"characters": res.Characters,
		"message":    res.Message,
	})
}

type interrogateRequest struct {
	SessionID string `json:"sessionId"`
	Character string `json:"character"`
	Message   string `json:"message"`
	Day       int    `json:"day"`
}

func (s *Server) handleInterrogate(w http.ResponseWriter, r *http.Request) {
	var req interrogateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.Character == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: sessionId, character, message")
		return
	}

	c, ok := cast.Resolve(req.Character)
	if !ok {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown character %q; valid characters: %s", req.Character, castNames()))
		return
	}

	res, err := s.engine.Interrogate(r.Context(), engine.InterrogateParams{
		SessionID: req.SessionID,
		Character: c,
		Message:   req.Message,
		Day:       req.Day,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "interrogation failed")
		return
	}

	body := map[string]any{
		"character": res.Character,
		"response":  res.Response,
		"day":       res.Day,
	}
	if res.Clue != "" {
		body["clue"] = res.Clue
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.Journal(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read the journal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.AdvanceDay(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to advance the day")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currentDay":      res.Day,
		"message":         res.Message,
		"aliveCharacters": res.Alive,
	})
}

type eliminateRequest struct {
	Character string `json:"character"`
}

func (s *Server) handleEliminate(w http.ResponseWriter, r *http.Request) {
	var req eliminateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Character == "" {
		writeError(w, http.StatusBadRequest, "missing required field: character")
		return
	}

	c, ok := cast.Resolve(req.Character)
	if !ok {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown character %q; valid characters: %s", req.Character, castNames()))
		return
	}

	res, err := s.engine.Eliminate(r.Context(), r.PathValue("id"), c)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "elimination failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  res.Result,
		"message": res.Message,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Status(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read session status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":       res.SessionID,
		"currentDay":      res.Day,
		"characters":      res.Characters,
		"aliveCharacters": res.Alive,
		"deadCharacters":  res.Dead,
	})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// corsMiddleware answers preflight requests and stamps the configured origin
// on every response.
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// castNames renders the valid cast as a comma-separated list for error
// messages.
func castNames() string {
	names := make([]string, len(cast.Characters))
	for i, c := range cast.Characters {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
	}
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
