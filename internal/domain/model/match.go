package model

import "time"

// Dimension names one component of a compatibility score.
type Dimension string

// Scored dimensions.
const (
	DimensionSkill        Dimension = "skill"
	DimensionAvailability Dimension = "availability"
	DimensionStyle        Dimension = "style"
	DimensionGoals        Dimension = "goals"
	DimensionIndustry     Dimension = "industry"
	DimensionExperience   Dimension = "experience"
)

// Dimensions lists every dimension in reporting order.
var Dimensions = []Dimension{
	DimensionSkill,
	DimensionAvailability,
	DimensionStyle,
	DimensionGoals,
	DimensionIndustry,
	DimensionExperience,
}

// Status is the lifecycle state of a persisted match.
type Status string

// Match statuses.
const (
	StatusSuggested Status = "suggested"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSuggested, StatusAccepted, StatusRejected, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// Excludes reports whether a match in this status keeps the pair out of
// future suggestions.
func (s Status) Excludes() bool {
	return s == StatusActive || s == StatusRejected
}

// MatchDetail is the structured breakdown attached to a result.
type MatchDetail struct {
	MatchingSkills    []string `json:"matching_skills"`
	SharedGoals       []string `json:"shared_goals"`
	OverlapHours      int      `json:"overlap_hours"`
	BaseScore         float64  `json:"base_score"`
	PairPenalty       float64  `json:"pair_penalty"`
	HistoricalSuccess float64  `json:"historical_success"`
}

// MatchResult is a freshly scored mentor/mentee pair.
type MatchResult struct {
	MentorID        string                `json:"mentor_id"`
	MenteeID        string                `json:"mentee_id"`
	TotalScore      float64               `json:"total_score"`
	DimensionScores map[Dimension]float64 `json:"dimension_scores"`
	Detail          MatchDetail           `json:"detail"`
}

// CandidateID returns the id on the opposite side of seed.
func (r MatchResult) CandidateID(seed Role) string {
	if seed == RoleMentor {
		return r.MenteeID
	}
	return r.MentorID
}

// MatchRecord is a persisted match.
type MatchRecord struct {
	ID       string `json:"id"`
	MentorID string `json:"mentor_id"`
	MenteeID string `json:"mentee_id"`
	// Score fields mirror the last MatchResult written for the pair.
	TotalScore      float64               `json:"total_score"`
	DimensionScores map[Dimension]float64 `json:"dimension_scores,omitempty"`
	Detail          MatchDetail           `json:"detail"`
	Status          Status                `json:"status"`
	UpdatedAt       time.Time             `json:"updated_at"`
	// Archived marks a superseded rejection. It still counts towards the
	// pair penalty but never excludes the pair.
	Archived bool `json:"archived,omitempty"`
}

// Involves reports whether the record pairs the two ids, in either order.
func (m MatchRecord) Involves(a, b string) bool {
	return (m.MentorID == a && m.MenteeID == b) || (m.MentorID == b && m.MenteeID == a)
}

// FeedbackRecord is a rating left for a pair.
type FeedbackRecord struct {
	MentorID    string    `json:"mentor_id"`
	MenteeID    string    `json:"mentee_id"`
	Rating      int       `json:"rating"`
	MatchStatus Status    `json:"match_status,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// History bundles the prior records the core reads when scoring.
type History struct {
	Matches  []MatchRecord
	Feedback []FeedbackRecord
}

// JobKind distinguishes the events that trigger a rescore.
type JobKind string

// Job kinds.
const (
	JobFeedback JobKind = "feedback"
	JobStatus   JobKind = "status"
)

// RescoreJob is an accepted feedback or status event waiting for a worker.
type RescoreJob struct {
	EventID  string
	Kind     JobKind
	MentorID string
	MenteeID string
	Rating   int
	Comment  string
	Status   Status
	TS       time.Time
}
