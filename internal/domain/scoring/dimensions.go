package scoring

import (
	"sort"
	"strings"

	"github.com/okian/mentormatch/internal/domain/model"
)

// Scoring constants shared by the dimension functions.
const (
	maxLevel      = 5
	neutralScore  = 0.5
	minutesPerDay = 24 * 60
	daysPerWeek   = 7

	industryBase         = 0.5
	industryCurrentBonus = 0.2
	industryYearsCap     = 0.3
	industryYearsScale   = 10.0
	maxPriority          = 5

	experienceFalloffYears = 5.0
)

// SkillMatch is the mentee's interest-weighted overlap with the mentor's
// proficiency, normalized against a mentor at level 5 on every interest.
// Returns 0 when either side has no ratings.
func SkillMatch(mentor, mentee model.Profile) float64 {
	skills := levels(mentor.Skills)
	interests := levels(mentee.Interests)
	if len(skills) == 0 || len(interests) == 0 {
		return 0
	}

	var achieved, possible int
	for id, interest := range interests {
		achieved += interest * skills[id]
		possible += interest * maxLevel
	}
	if possible == 0 {
		return 0
	}
	return clamp(float64(achieved) / float64(possible))
}

// MatchingSkills lists the mentee interests the mentor has any proficiency in.
func MatchingSkills(mentor, mentee model.Profile) []string {
	skills := levels(mentor.Skills)
	out := []string{}
	for id := range levels(mentee.Interests) {
		if skills[id] > 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// levels indexes ratings by skill id. Levels are clamped to 1..5 and
// non-positive levels are dropped; a repeated id keeps its highest level.
func levels(ratings []model.SkillRating) map[string]int {
	out := make(map[string]int, len(ratings))
	for _, r := range ratings {
		if r.SkillID == "" || r.Level <= 0 {
			continue
		}
		lvl := min(r.Level, maxLevel)
		if lvl > out[r.SkillID] {
			out[r.SkillID] = lvl
		}
	}
	return out
}

type bucket struct {
	day  int
	hour int
}

// buckets expands slots into the (day, hour) pairs they touch, stepping an
// hour at a time from the slot start.
func buckets(slots []model.AvailabilitySlot) map[bucket]struct{} {
	out := make(map[bucket]struct{})
	for _, s := range slots {
		if s.DayOfWeek < 0 || s.DayOfWeek >= daysPerWeek || s.StartMinute < 0 {
			continue
		}
		end := min(s.EndMinute, minutesPerDay)
		for m := s.StartMinute; m < end; m += 60 {
			out[bucket{day: s.DayOfWeek, hour: m / 60}] = struct{}{}
		}
	}
	return out
}

// AvailabilityMatch is the share of shared hourly buckets over the smaller
// schedule. Normalizing by the smaller side means a short schedule fully
// inside a long one scores 1.
func AvailabilityMatch(mentor, mentee model.Profile) float64 {
	a := buckets(mentor.Availability)
	b := buckets(mentee.Availability)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return clamp(float64(overlap(a, b)) / float64(min(len(a), len(b))))
}

// OverlapHours counts the hourly buckets both profiles are available in.
func OverlapHours(mentor, mentee model.Profile) int {
	return overlap(buckets(mentor.Availability), buckets(mentee.Availability))
}

func overlap(a, b map[bucket]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// styleTable holds mentor style -> mentee style compatibility.
var styleTable = map[[2]string]float64{
	{model.StyleDirective, model.StyleStructured}:        0.9,
	{model.StyleDirective, model.StyleSelfDirected}:      0.3,
	{model.StyleDirective, model.StyleCollaborative}:     0.6,
	{model.StyleCollaborative, model.StyleStructured}:    0.6,
	{model.StyleCollaborative, model.StyleSelfDirected}:  0.8,
	{model.StyleCollaborative, model.StyleCollaborative}: 0.9,
	{model.StyleSupportive, model.StyleStructured}:       0.7,
	{model.StyleSupportive, model.StyleSelfDirected}:     0.7,
	{model.StyleSupportive, model.StyleCollaborative}:    0.8,
}

// StyleMatch looks up the mentor/mentee style pair. Unknown or missing styles
// score 0.5.
func StyleMatch(mentorStyle, menteeStyle string) float64 {
	if v, ok := styleTable[[2]string{normalize(mentorStyle), normalize(menteeStyle)}]; ok {
		return v
	}
	return neutralScore
}

// GoalsMatch is the share of the mentee's goal categories covered by the
// mentor's expertise areas. Returns 0.5 when either side is unknown.
func GoalsMatch(mentor, mentee model.Profile) float64 {
	expertise := set(mentor.ExpertiseAreas)
	goals := goalCategories(mentee.Goals)
	if len(expertise) == 0 || len(goals) == 0 {
		return neutralScore
	}
	shared := 0
	for g := range goals {
		if _, ok := expertise[g]; ok {
			shared++
		}
	}
	return clamp(float64(shared) / float64(len(goals)))
}

// SharedGoals lists the mentee goal categories inside the mentor's expertise.
func SharedGoals(mentor, mentee model.Profile) []string {
	expertise := set(mentor.ExpertiseAreas)
	out := []string{}
	for g := range goalCategories(mentee.Goals) {
		if _, ok := expertise[g]; ok {
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

// IndustryMatch rewards mentor industry experience in the categories of the
// mentee's goals, weighted by goal priority. Returns 0.5 when either side has
// no data and 0 when no category lines up.
func IndustryMatch(mentor, mentee model.Profile) float64 {
	if len(mentor.Industries) == 0 || len(mentee.Goals) == 0 {
		return neutralScore
	}

	var total float64
	for _, g := range mentee.Goals {
		cat := normalize(g.Category)
		best := 0.0
		for _, exp := range mentor.Industries {
			if cat == "" || normalize(exp.CategoryKey()) != cat {
				continue
			}
			if v := industryScore(exp); v > best {
				best = v
			}
		}
		total += best * float64(clampInt(g.Priority, 1, maxPriority)) / maxPriority
	}
	return clamp(total / float64(len(mentee.Goals)))
}

func industryScore(exp model.IndustryExperience) float64 {
	score := industryBase
	if exp.IsCurrent {
		score += industryCurrentBonus
	}
	if exp.Years > 0 {
		score += min(float64(exp.Years)/industryYearsScale, industryYearsCap)
	}
	return score
}

type yearsRange struct {
	lo, hi float64
}

var careerStages = map[string]yearsRange{
	"student":      {lo: 0, hi: 3},
	"early_career": {lo: 2, hi: 5},
	"mid_career":   {lo: 4, hi: 10},
	"senior":       {lo: 8, hi: -1},
}

// ExperienceMatch compares mentor years against the range the mentee's career
// stage calls for. Inside the range scores 1, and the score falls off
// linearly over five years outside it. Missing years or an unknown stage
// score 0.5.
func ExperienceMatch(mentor, mentee model.Profile) float64 {
	want, ok := careerStages[normalize(mentee.CareerStage)]
	if !ok || mentor.ExperienceYears <= 0 {
		return neutralScore
	}
	years := float64(mentor.ExperienceYears)

	var distance float64
	switch {
	case years < want.lo:
		distance = want.lo - years
	case want.hi >= 0 && years > want.hi:
		distance = years - want.hi
	default:
		return 1
	}
	return clamp(1 - distance/experienceFalloffYears)
}

func goalCategories(goals []model.Goal) map[string]struct{} {
	out := make(map[string]struct{}, len(goals))
	for _, g := range goals {
		if c := normalize(g.Category); c != "" {
			out[c] = struct{}{}
		}
	}
	return out
}

func set(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := normalize(v); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

var separators = strings.NewReplacer("-", "_", " ", "_")

// normalize folds case and treats "-" and " " like "_".
func normalize(s string) string {
	return separators.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func clamp(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
