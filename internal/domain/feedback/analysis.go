package feedback

import (
	"strings"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/scoring"
)

// successRating is the lowest rating that marks a match as successful.
const successRating = 4

// improvementRating is the highest rating whose comment points at something
// to improve.
const improvementRating = 3

// Performance summarizes a mentor's match outcomes.
type Performance struct {
	MentorID            string        `json:"mentor_id"`
	TotalMatches        int           `json:"total_matches"`
	ActiveMatches       int           `json:"active_matches"`
	CompletedMatches    int           `json:"completed_matches"`
	SuccessRate         float64       `json:"success_rate"`
	AverageRating       float64       `json:"average_rating"`
	FeedbackCount       int           `json:"feedback_count"`
	Strengths           FeedbackGroup `json:"strengths"`
	AreasForImprovement FeedbackGroup `json:"areas_for_improvement"`
}

// FeedbackGroup counts ratings in a band and keeps their non-empty comments.
type FeedbackGroup struct {
	Count    int      `json:"count"`
	Comments []string `json:"comments"`
}

func (g *FeedbackGroup) add(f model.FeedbackRecord) {
	g.Count++
	if c := strings.TrimSpace(f.Comment); c != "" {
		g.Comments = append(g.Comments, c)
	}
}

// AnalyzeMentor computes outcome counts and rating averages for mentorID.
// Archived rejections are not counted as matches. Ratings of 4 or more feed
// Strengths, ratings of 3 or less feed AreasForImprovement.
func AnalyzeMentor(mentorID string, matches []model.MatchRecord, feedback []model.FeedbackRecord) Performance {
	p := Performance{
		MentorID:            mentorID,
		Strengths:           FeedbackGroup{Comments: []string{}},
		AreasForImprovement: FeedbackGroup{Comments: []string{}},
	}
	for _, m := range matches {
		if m.MentorID != mentorID || m.Archived {
			continue
		}
		p.TotalMatches++
		switch m.Status {
		case model.StatusActive:
			p.ActiveMatches++
		case model.StatusCompleted:
			p.CompletedMatches++
		}
	}
	if p.TotalMatches > 0 {
		p.SuccessRate = float64(p.CompletedMatches) / float64(p.TotalMatches)
	}

	sum := 0
	for _, f := range feedback {
		if f.MentorID != mentorID || f.Rating < 1 || f.Rating > maxRating {
			continue
		}
		sum += f.Rating
		p.FeedbackCount++
		switch {
		case f.Rating >= successRating:
			p.Strengths.add(f)
		case f.Rating <= improvementRating:
			p.AreasForImprovement.add(f)
		}
	}
	if p.FeedbackCount > 0 {
		p.AverageRating = float64(sum) / float64(p.FeedbackCount)
	}
	return p
}

// Recommendation thresholds on the dimension averages of successful matches.
const (
	mentorSkillThreshold        = 0.8
	mentorAvailabilityThreshold = 0.7
	menteeGoalsThreshold        = 0.8
)

// Recommendation texts returned with Insights.
const (
	RecommendSkills       = "Your most successful matches are with mentees looking for your core skills"
	RecommendAvailability = "Schedule flexibility contributes significantly to the success of your mentorships"
	RecommendGoals        = "The best results come when your goals are clearly aligned with the mentor's"
)

// Insights averages dimension scores across one user's successful matches.
type Insights struct {
	UserID            string                      `json:"user_id"`
	Role              model.Role                  `json:"role"`
	SuccessfulMatches int                         `json:"successful_matches"`
	Averages          map[model.Dimension]float64 `json:"averages"`
	Recommendations   []string                    `json:"recommendations"`
}

// Analyze collects insights for userID from its completed or active matches
// whose pair received a rating of 4 or more. role selects the
// recommendations.
func Analyze(userID string, role model.Role, matches []model.MatchRecord, feedback []model.FeedbackRecord) Insights {
	type pair struct{ mentor, mentee string }
	good := make(map[pair]bool)
	for _, f := range feedback {
		if f.Rating >= successRating && f.Rating <= maxRating {
			good[pair{f.MentorID, f.MenteeID}] = true
		}
	}

	ins := Insights{
		UserID:          userID,
		Role:            role,
		Averages:        make(map[model.Dimension]float64, len(model.Dimensions)),
		Recommendations: []string{},
	}
	sums := make(map[model.Dimension]float64, len(model.Dimensions))
	counts := make(map[model.Dimension]int, len(model.Dimensions))
	for _, m := range matches {
		if m.Archived || (m.MentorID != userID && m.MenteeID != userID) {
			continue
		}
		if m.Status != model.StatusCompleted && m.Status != model.StatusActive {
			continue
		}
		if !good[pair{m.MentorID, m.MenteeID}] {
			continue
		}
		ins.SuccessfulMatches++
		for _, d := range model.Dimensions {
			if v, ok := m.DimensionScores[d]; ok {
				sums[d] += v
				counts[d]++
			}
		}
	}
	for _, d := range model.Dimensions {
		if counts[d] > 0 {
			ins.Averages[d] = sums[d] / float64(counts[d])
		} else {
			ins.Averages[d] = 0
		}
	}
	if ins.SuccessfulMatches > 0 {
		ins.Recommendations = recommend(role, ins.Averages)
	}
	return ins
}

func recommend(role model.Role, avg map[model.Dimension]float64) []string {
	out := []string{}
	if role == model.RoleMentor {
		if avg[model.DimensionSkill] > mentorSkillThreshold {
			out = append(out, RecommendSkills)
		}
		if avg[model.DimensionAvailability] > mentorAvailabilityThreshold {
			out = append(out, RecommendAvailability)
		}
		return out
	}
	if avg[model.DimensionGoals] > menteeGoalsThreshold {
		out = append(out, RecommendGoals)
	}
	return out
}

// RecommendWeights normalizes the insight averages into a weight vector.
// fallback is returned when there is nothing to learn from.
func RecommendWeights(ins Insights, fallback scoring.Weights) scoring.Weights {
	if ins.SuccessfulMatches == 0 {
		return fallback
	}
	var total float64
	for _, d := range model.Dimensions {
		total += ins.Averages[d]
	}
	if total <= 0 {
		return fallback
	}
	share := func(d model.Dimension) float64 { return ins.Averages[d] / total }
	return scoring.Weights{
		Skill:        share(model.DimensionSkill),
		Availability: share(model.DimensionAvailability),
		Style:        share(model.DimensionStyle),
		Goals:        share(model.DimensionGoals),
		Industry:     share(model.DimensionIndustry),
		Experience:   share(model.DimensionExperience),
	}
}
