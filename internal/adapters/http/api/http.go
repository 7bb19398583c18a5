// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/cors"

	service "github.com/okian/mentormatch/internal/app"
	"github.com/okian/mentormatch/internal/domain/feedback"
	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/types"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	Suggestions(ctx context.Context, userID string, role model.Role, limit int) ([]types.Suggestion, error)
	ScorePair(ctx context.Context, mentorID, menteeID string) (model.MatchResult, error)
	RecordFeedback(ctx context.Context, in service.FeedbackInput) (string, error)
	UpdateStatus(ctx context.Context, in service.StatusInput) (string, error)
	TopMatches(ctx context.Context, limit int) ([]types.MatchEntry, error)
	MentorPerformance(ctx context.Context, mentorID string) (feedback.Performance, error)
	Insights(ctx context.Context, userID string) (service.InsightsReport, error)
	StatsProvider
}

var _ Dependencies = (*service.Service)(nil)

// Server wires HTTP routes for the matching API.
type Server struct {
	deps    Dependencies
	origins []string

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	suggestionsHandler *SuggestionsHandler
	matchesHandler     *MatchesHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins restricts CORS to origins. Empty allows all.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:               deps,
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		suggestionsHandler: NewSuggestionsHandler(deps),
		matchesHandler:     NewMatchesHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /suggestions", MetricsMiddleware(s.suggestionsHandler.HandleSuggestions, "suggestions"))
	mux.HandleFunc("GET /score", MetricsMiddleware(s.suggestionsHandler.HandleScore, "score"))
	mux.HandleFunc("POST /feedback", MetricsMiddleware(s.eventsHandler.HandleFeedback, "feedback"))
	mux.HandleFunc("POST /matches/status", MetricsMiddleware(s.eventsHandler.HandleStatus, "matches_status"))
	mux.HandleFunc("GET /matches/top", MetricsMiddleware(s.matchesHandler.HandleTop, "matches_top"))
	mux.HandleFunc("GET /mentors/{id}/performance", MetricsMiddleware(s.matchesHandler.HandlePerformance, "mentor_performance"))
	mux.HandleFunc("GET /insights", MetricsMiddleware(s.matchesHandler.HandleInsights, "insights"))
}

// Handler wraps h with the configured CORS policy.
func (s *Server) Handler(h http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}
	if len(s.origins) > 0 {
		opts.AllowedOrigins = s.origins
	}
	return cors.New(opts).Handler(h)
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError derives status and code from the error kind.
func writeError(w http.ResponseWriter, err error) {
	k := kindOf(err)
	status := statusOf(k)
	msg := http.StatusText(status)
	if err != nil && k != KindInternal {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: string(k), Message: msg})
}
