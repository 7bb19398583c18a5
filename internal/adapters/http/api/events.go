package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/mentormatch/internal/app"
)

// EventDependencies defines what the event handlers need.
type EventDependencies interface {
	RecordFeedback(ctx context.Context, in service.FeedbackInput) (string, error)
	UpdateStatus(ctx context.Context, in service.StatusInput) (string, error)
}

// EventsHandler accepts feedback and status events.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleFeedback handles POST /feedback.
func (h *EventsHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"
	var req service.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, KindInvalidArgument, ErrBadRequest, err))
		return
	}
	outcome, err := h.deps.RecordFeedback(r.Context(), req)
	if err != nil {
		writeError(w, eventError(op, err))
		return
	}
	ack(w, outcome)
}

// HandleStatus handles POST /matches/status.
func (h *EventsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_status"
	var req service.StatusInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, KindInvalidArgument, ErrBadRequest, err))
		return
	}
	outcome, err := h.deps.UpdateStatus(r.Context(), req)
	if err != nil {
		writeError(w, eventError(op, err))
		return
	}
	ack(w, outcome)
}

// eventError marks a full or stopped pipeline as backpressure.
func eventError(op string, err error) error {
	if errors.Is(err, service.ErrUnavailable) {
		return WrapKind(op, KindUnavailable, ErrBackpressure, err)
	}
	return Wrap(op, err)
}

func ack(w http.ResponseWriter, outcome string) {
	if outcome == service.OutcomeDuplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: outcome, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: outcome})
}
