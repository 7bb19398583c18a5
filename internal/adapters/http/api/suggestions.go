package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/types"
)

// SuggestionsDependencies defines the read side of the matching core.
type SuggestionsDependencies interface {
	Suggestions(ctx context.Context, userID string, role model.Role, limit int) ([]types.Suggestion, error)
	ScorePair(ctx context.Context, mentorID, menteeID string) (model.MatchResult, error)
}

// SuggestionsHandler serves ranked suggestions and single-pair scores.
type SuggestionsHandler struct {
	deps SuggestionsDependencies
}

// NewSuggestionsHandler creates a new suggestions handler.
func NewSuggestionsHandler(deps SuggestionsDependencies) *SuggestionsHandler {
	return &SuggestionsHandler{deps: deps}
}

type suggestionsResponse struct {
	UserID      string             `json:"user_id"`
	Role        model.Role         `json:"role"`
	Count       int                `json:"count"`
	Suggestions []types.Suggestion `json:"suggestions"`
}

// HandleSuggestions handles GET /suggestions?user_id=&role=&limit=.
func (h *SuggestionsHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_suggestions"
	q := r.URL.Query()

	role, ok := model.ParseRole(q.Get("role"))
	if !ok {
		writeError(w, WrapKind(op, KindInvalidArgument, ErrBadRequest, fmt.Errorf("role must be mentor or mentee, got %q", q.Get("role"))))
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeError(w, WrapKind(op, KindInvalidArgument, ErrBadRequest, err))
		return
	}

	userID := q.Get("user_id")
	out, err := h.deps.Suggestions(r.Context(), userID, role, limit)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{
		UserID:      userID,
		Role:        role,
		Count:       len(out),
		Suggestions: out,
	})
}

// HandleScore handles GET /score?mentor_id=&mentee_id=.
func (h *SuggestionsHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	mentorID, menteeID := r.URL.Query().Get("mentor_id"), r.URL.Query().Get("mentee_id")
	if mentorID == "" || menteeID == "" {
		writeError(w, WrapKind(op, KindInvalidArgument, ErrBadRequest, fmt.Errorf("mentor_id and mentee_id are required")))
		return
	}
	res, err := h.deps.ScorePair(r.Context(), mentorID, menteeID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseLimit reads an optional non-negative limit. Empty or 0 means the
// service default.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
