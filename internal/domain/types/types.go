// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/mentormatch/internal/domain/model"
)

// Suggestion represents one ranked candidate for a seed user
type Suggestion struct {
	Rank            int                         `json:"rank"`
	CandidateID     string                      `json:"candidate_id"`
	MentorID        string                      `json:"mentor_id"`
	MenteeID        string                      `json:"mentee_id"`
	TotalScore      float64                     `json:"total_score"`
	DimensionScores map[model.Dimension]float64 `json:"dimension_scores"`
	Detail          model.MatchDetail           `json:"detail"`
}

// Suggestions converts ranked results into 1-based ranked entries.
func Suggestions(results []model.MatchResult, seed model.Role) []Suggestion {
	out := make([]Suggestion, 0, len(results))
	for i, r := range results {
		out = append(out, Suggestion{
			Rank:            i + 1,
			CandidateID:     r.CandidateID(seed),
			MentorID:        r.MentorID,
			MenteeID:        r.MenteeID,
			TotalScore:      r.TotalScore,
			DimensionScores: r.DimensionScores,
			Detail:          r.Detail,
		})
	}
	return out
}

// MatchEntry represents a persisted match in a top-N listing
type MatchEntry struct {
	Rank       int          `json:"rank"`
	MatchID    string       `json:"match_id"`
	MentorID   string       `json:"mentor_id"`
	MenteeID   string       `json:"mentee_id"`
	TotalScore float64      `json:"total_score"`
	Status     model.Status `json:"status"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// MatchEntries converts ordered records into 1-based ranked entries.
func MatchEntries(records []model.MatchRecord) []MatchEntry {
	out := make([]MatchEntry, 0, len(records))
	for i, r := range records {
		out = append(out, MatchEntry{
			Rank:       i + 1,
			MatchID:    r.ID,
			MentorID:   r.MentorID,
			MenteeID:   r.MenteeID,
			TotalScore: r.TotalScore,
			Status:     r.Status,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return out
}
