// Package scoring computes per-dimension compatibility scores for a mentor and
// a mentee and aggregates them with a weight vector.
//
// Every function here is pure: it reads plain profile values and never fails.
// Missing data maps to a neutral 0.5 or to 0, never to an error.
package scoring

import "github.com/okian/mentormatch/internal/domain/model"

// Weights is the per-dimension weight vector. Each weight is expected in
// [0,1] and the vector is expected to sum to 1; neither is enforced here.
type Weights struct {
	Skill        float64 `json:"skill"`
	Availability float64 `json:"availability"`
	Style        float64 `json:"style"`
	Goals        float64 `json:"goals"`
	Industry     float64 `json:"industry"`
	Experience   float64 `json:"experience"`
}

// DefaultWeights is the six-dimension vector.
func DefaultWeights() Weights {
	return Weights{
		Skill:        0.25,
		Availability: 0.2,
		Style:        0.2,
		Goals:        0.2,
		Industry:     0.1,
		Experience:   0.05,
	}
}

// FourDimensionWeights drops industry and experience.
func FourDimensionWeights() Weights {
	return Weights{Skill: 0.3, Availability: 0.2, Style: 0.2, Goals: 0.3}
}

// Of returns the weight for d.
func (w Weights) Of(d model.Dimension) float64 {
	switch d {
	case model.DimensionSkill:
		return w.Skill
	case model.DimensionAvailability:
		return w.Availability
	case model.DimensionStyle:
		return w.Style
	case model.DimensionGoals:
		return w.Goals
	case model.DimensionIndustry:
		return w.Industry
	case model.DimensionExperience:
		return w.Experience
	}
	return 0
}

// Sum adds the weights in dimension order.
func (w Weights) Sum() float64 {
	var s float64
	for _, d := range model.Dimensions {
		s += w.Of(d)
	}
	return s
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the weight vector.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// Breakdown is the pre-adjustment scoring of one pair.
type Breakdown struct {
	Dimensions     map[model.Dimension]float64
	Base           float64
	MatchingSkills []string
	SharedGoals    []string
	OverlapHours   int
}

// Scorer aggregates dimension scores with a fixed weight vector. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer using the default six-dimension weights unless
// overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the configured weight vector.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes every dimension for the pair and their weighted sum,
// clamped to [0,1].
func (s *Scorer) Score(mentor, mentee model.Profile) Breakdown {
	dims := map[model.Dimension]float64{
		model.DimensionSkill:        SkillMatch(mentor, mentee),
		model.DimensionAvailability: AvailabilityMatch(mentor, mentee),
		model.DimensionStyle:        StyleMatch(mentor.Style, mentee.Style),
		model.DimensionGoals:        GoalsMatch(mentor, mentee),
		model.DimensionIndustry:     IndustryMatch(mentor, mentee),
		model.DimensionExperience:   ExperienceMatch(mentor, mentee),
	}

	// Fixed order keeps the float sum bit-identical across calls.
	var base float64
	for _, d := range model.Dimensions {
		base += s.weights.Of(d) * dims[d]
	}

	return Breakdown{
		Dimensions:     dims,
		Base:           clamp(base),
		MatchingSkills: MatchingSkills(mentor, mentee),
		SharedGoals:    SharedGoals(mentor, mentee),
		OverlapHours:   OverlapHours(mentor, mentee),
	}
}
