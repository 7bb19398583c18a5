// Package loadgen generates synthetic profiles and drives suggestion traffic
// against a running service, verifying every response it gets back.
package loadgen

import (
	"errors"
	"time"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/types"
)

// ErrVerification is returned by Run when at least one response broke the
// ordering or limit contract.
var ErrVerification = errors.New("loadgen: response verification failed")

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Requests    int           // Number of suggestion requests to send
	Concurrency int           // Number of concurrent workers
	Limit       int           // limit query parameter; 0 leaves it to the server
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool
}

// Stats holds run statistics.
type Stats struct {
	Requests    int
	Successful  int
	Failed      int
	Violations  int
	Suggestions int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// SuccessRate is the share of requests that returned a verified response.
func (s Stats) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Requests)
}

// suggestionsResponse mirrors the body of GET /suggestions.
type suggestionsResponse struct {
	UserID      string             `json:"user_id"`
	Role        model.Role         `json:"role"`
	Count       int                `json:"count"`
	Suggestions []types.Suggestion `json:"suggestions"`
}
