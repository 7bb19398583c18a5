package api

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/okian/mentormatch/internal/app"
	"github.com/okian/mentormatch/internal/domain/feedback"
	"github.com/okian/mentormatch/internal/domain/types"
)

// MatchesDependencies defines the persisted-match read operations.
type MatchesDependencies interface {
	TopMatches(ctx context.Context, limit int) ([]types.MatchEntry, error)
	MentorPerformance(ctx context.Context, mentorID string) (feedback.Performance, error)
	Insights(ctx context.Context, userID string) (service.InsightsReport, error)
}

// MatchesHandler serves persisted matches and feedback analysis.
type MatchesHandler struct {
	deps MatchesDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchesDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleTop handles GET /matches/top?limit=N.
func (h *MatchesHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_top_matches"
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, WrapKind(op, KindInvalidArgument, ErrBadRequest, err))
		return
	}
	entries, err := h.deps.TopMatches(r.Context(), limit)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandlePerformance handles GET /mentors/{id}/performance.
func (h *MatchesHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_mentor_performance"
	perf, err := h.deps.MentorPerformance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

// HandleInsights handles GET /insights?user_id=.
func (h *MatchesHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_insights"
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, WrapKind(op, KindInvalidArgument, ErrBadRequest, fmt.Errorf("user_id is required")))
		return
	}
	rep, err := h.deps.Insights(r.Context(), userID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
