// Package feedback biases raw compatibility scores with historical outcomes
// and derives performance and weighting insights from them.
package feedback

import (
	"math"

	"github.com/okian/mentormatch/internal/domain/model"
)

// Adjustment defaults.
const (
	DefaultScoreBlend     = 0.7
	DefaultRejectionDecay = 0.8
	neutralSuccess        = 0.5
	maxRating             = 5
)

// Option applies a configuration option to the Adjuster.
type Option func(*Adjuster)

// WithScoreBlend sets the share of the final score taken from the penalized
// base; the rest comes from historical success. Values outside [0,1] are
// ignored.
func WithScoreBlend(blend float64) Option {
	return func(a *Adjuster) {
		if blend >= 0 && blend <= 1 {
			a.blend = blend
		}
	}
}

// WithRejectionDecay sets the multiplier applied per prior rejection. Values
// outside (0,1] are ignored.
func WithRejectionDecay(decay float64) Option {
	return func(a *Adjuster) {
		if decay > 0 && decay <= 1 {
			a.decay = decay
		}
	}
}

// Adjuster applies prior ratings and rejections to a base score.
type Adjuster struct {
	blend float64
	decay float64
}

// NewAdjuster creates an adjuster with a 0.7/0.3 blend and a 0.8 decay unless
// overridden.
func NewAdjuster(opts ...Option) *Adjuster {
	a := &Adjuster{
		blend: DefaultScoreBlend,
		decay: DefaultRejectionDecay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HistoricalSuccess is the mentor's mean rating scaled to [0,1], or 0.5 when
// the mentor has no valid ratings.
func (a *Adjuster) HistoricalSuccess(mentorID string, feedback []model.FeedbackRecord) float64 {
	sum, n := 0, 0
	for _, f := range feedback {
		if f.MentorID != mentorID || f.Rating < 1 || f.Rating > maxRating {
			continue
		}
		sum += f.Rating
		n++
	}
	if n == 0 {
		return neutralSuccess
	}
	return clamp(float64(sum) / float64(n*maxRating))
}

// Rejections counts prior rejected matches between the pair.
func Rejections(mentorID, menteeID string, prior []model.MatchRecord) int {
	n := 0
	for _, m := range prior {
		if m.Status == model.StatusRejected && m.MentorID == mentorID && m.MenteeID == menteeID {
			n++
		}
	}
	return n
}

// PairPenalty is decay^rejections for the pair; 1 with no rejections.
func (a *Adjuster) PairPenalty(mentorID, menteeID string, prior []model.MatchRecord) float64 {
	return math.Pow(a.decay, float64(Rejections(mentorID, menteeID, prior)))
}

// Adjustment is the outcome of Adjust with its inputs kept for reporting.
type Adjustment struct {
	Final             float64
	PairPenalty       float64
	HistoricalSuccess float64
}

// Adjust penalizes base for prior rejections and blends it with the mentor's
// historical success.
func (a *Adjuster) Adjust(base float64, mentorID, menteeID string, history model.History) Adjustment {
	penalty := a.PairPenalty(mentorID, menteeID, history.Matches)
	hist := a.HistoricalSuccess(mentorID, history.Feedback)
	clamped := clamp(base * penalty)
	return Adjustment{
		Final:             clamp(clamped*a.blend + hist*(1-a.blend)),
		PairPenalty:       penalty,
		HistoricalSuccess: hist,
	}
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
