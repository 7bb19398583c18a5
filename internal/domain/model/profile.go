// Package model contains domain models passed between layers.
package model

import "strings"

// Role tags a profile as one side of a mentoring pair.
type Role string

// Known roles.
const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMentor || r == RoleMentee
}

// Opposite returns the role a candidate must hold to be paired with r.
// Unknown roles have no opposite.
func (r Role) Opposite() Role {
	switch r {
	case RoleMentor:
		return RoleMentee
	case RoleMentee:
		return RoleMentor
	default:
		return ""
	}
}

// ParseRole normalizes user input such as "Mentor" or " mentee ".
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Mentor learning/teaching styles.
const (
	StyleDirective     = "directive"
	StyleCollaborative = "collaborative"
	StyleSupportive    = "supportive"
	StyleStructured    = "structured"
	StyleSelfDirected  = "self_directed"
)

// SkillRating is a skill id with a 1-5 level. Mentors carry it as proficiency,
// mentees as interest.
type SkillRating struct {
	SkillID string `json:"skill_id" yaml:"skill_id"`
	Level   int    `json:"level" yaml:"level"`
}

// AvailabilitySlot is a weekly window. Day 0 is Monday; minutes count from
// midnight.
type AvailabilitySlot struct {
	DayOfWeek   int `json:"day_of_week" yaml:"day_of_week"`
	StartMinute int `json:"start_minute" yaml:"start_minute"`
	EndMinute   int `json:"end_minute" yaml:"end_minute"`
}

// IndustryExperience describes time a mentor spent in an industry.
type IndustryExperience struct {
	IndustryID    string `json:"industry_id" yaml:"industry_id"`
	Category      string `json:"category,omitempty" yaml:"category,omitempty"`
	Years         int    `json:"years" yaml:"years"`
	IsCurrent     bool   `json:"is_current" yaml:"is_current"`
	PositionLevel string `json:"position_level,omitempty" yaml:"position_level,omitempty"`
}

// CategoryKey is the goal category this experience counts toward.
func (e IndustryExperience) CategoryKey() string {
	if e.Category != "" {
		return e.Category
	}
	return e.IndustryID
}

// Goal is a mentee objective.
type Goal struct {
	Category       string `json:"category" yaml:"category"`
	Priority       int    `json:"priority" yaml:"priority"`
	TimelineMonths int    `json:"timeline_months,omitempty" yaml:"timeline_months,omitempty"`
}

// Profile is the matching-relevant slice of a user. It is treated as
// immutable for the duration of a matching run.
type Profile struct {
	ID   string `json:"id" yaml:"id"`
	Role Role   `json:"role" yaml:"role"`

	// Skills is the mentor proficiency set.
	Skills []SkillRating `json:"skills,omitempty" yaml:"skills,omitempty"`
	// Interests is the mentee interest set.
	Interests []SkillRating `json:"interests,omitempty" yaml:"interests,omitempty"`

	Availability []AvailabilitySlot `json:"availability,omitempty" yaml:"availability,omitempty"`
	Style        string             `json:"style,omitempty" yaml:"style,omitempty"`

	ExpertiseAreas  []string             `json:"expertise_areas,omitempty" yaml:"expertise_areas,omitempty"`
	Industries      []IndustryExperience `json:"industries,omitempty" yaml:"industries,omitempty"`
	ExperienceYears int                  `json:"experience_years,omitempty" yaml:"experience_years,omitempty"`

	Goals       []Goal `json:"goals,omitempty" yaml:"goals,omitempty"`
	CareerStage string `json:"career_stage,omitempty" yaml:"career_stage,omitempty"`
}
