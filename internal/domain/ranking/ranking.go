// Package ranking scores a candidate pool against a seed profile and returns
// the best opposite-role candidates in a deterministic order.
//
// The Ranker is pure: it performs no I/O, keeps no state between calls, and
// never persists what it returns. Callers load profiles and history, and
// hand results on to storage themselves.
package ranking

import (
	"sort"

	"github.com/okian/mentormatch/internal/domain/feedback"
	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/scoring"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithScorer sets the compatibility scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithAdjuster sets the feedback adjuster.
func WithAdjuster(a *feedback.Adjuster) Option {
	return func(r *Ranker) {
		if a != nil {
			r.adjuster = a
		}
	}
}

// Ranker combines the scorer and the adjuster.
type Ranker struct {
	scorer   *scoring.Scorer
	adjuster *feedback.Adjuster
}

// NewRanker creates a ranker with default weights and adjustment constants
// unless overridden.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		scorer:   scoring.NewScorer(),
		adjuster: feedback.NewAdjuster(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Weights returns the weight vector in use.
func (r *Ranker) Weights() scoring.Weights {
	return r.scorer.Weights()
}

// ScorePair scores one mentor/mentee pair against the given history.
func (r *Ranker) ScorePair(mentor, mentee model.Profile, history model.History) model.MatchResult {
	b := r.scorer.Score(mentor, mentee)
	adj := r.adjuster.Adjust(b.Base, mentor.ID, mentee.ID, history)
	return model.MatchResult{
		MentorID:        mentor.ID,
		MenteeID:        mentee.ID,
		TotalScore:      adj.Final,
		DimensionScores: b.Dimensions,
		Detail: model.MatchDetail{
			MatchingSkills:    b.MatchingSkills,
			SharedGoals:       b.SharedGoals,
			OverlapHours:      b.OverlapHours,
			BaseScore:         b.Base,
			PairPenalty:       adj.PairPenalty,
			HistoricalSuccess: adj.HistoricalSuccess,
		},
	}
}

// RankCandidates returns at most limit results for seed, best first. Ties
// are broken by candidate id ascending.
//
// Pool entries that share the seed's role, repeat an id, or are the seed
// itself are skipped, as is any candidate with an active or rejected match
// against the seed. A seed without a usable id or role yields an empty list.
func (r *Ranker) RankCandidates(seed model.Profile, pool []model.Profile, history model.History, limit int) []model.MatchResult {
	out := []model.MatchResult{}
	want := seed.Role.Opposite()
	if seed.ID == "" || want == "" || limit < 1 {
		return out
	}

	excluded := Excluded(seed.ID, history.Matches)
	seen := make(map[string]struct{}, len(pool))
	for _, c := range pool {
		if c.Role != want || c.ID == "" || c.ID == seed.ID {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if _, skip := excluded[c.ID]; skip {
			continue
		}

		mentor, mentee := seed, c
		if seed.Role == model.RoleMentee {
			mentor, mentee = c, seed
		}
		out = append(out, r.ScorePair(mentor, mentee, history))
	}

	Sort(out, seed.Role)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Excluded returns the ids paired with seedID by a current active or rejected
// match. Archived rejections are skipped.
func Excluded(seedID string, matches []model.MatchRecord) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range matches {
		if m.Archived || !m.Status.Excludes() {
			continue
		}
		switch seedID {
		case m.MentorID:
			out[m.MenteeID] = struct{}{}
		case m.MenteeID:
			out[m.MentorID] = struct{}{}
		}
	}
	return out
}

// ExcludedIn counts the candidates that Excluded would skip for seedID.
// Excluded ids outside the pool are not counted.
func ExcludedIn(seedID string, candidates []model.Profile, matches []model.MatchRecord) int {
	excluded := Excluded(seedID, matches)
	n := 0
	for _, c := range candidates {
		if _, ok := excluded[c.ID]; ok {
			delete(excluded, c.ID)
			n++
		}
	}
	return n
}

// Sort orders results by total score descending, then by the candidate id
// on the side opposite seed ascending.
func Sort(results []model.MatchResult, seed model.Role) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].CandidateID(seed) < results[j].CandidateID(seed)
	})
}
