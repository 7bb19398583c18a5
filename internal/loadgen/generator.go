package loadgen

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/mentormatch/internal/adapters/repository"
	"github.com/okian/mentormatch/internal/domain/model"
)

// Catalogs the generator draws from. Goal categories use the industry
// catalog so mentees can line up with mentor expertise.
var (
	skillCatalog = []string{ //nolint:gochecknoglobals // static catalog
		"go", "python", "kubernetes", "sql", "react",
		"system_design", "security", "data_analysis", "product", "leadership",
	}
	industryCatalog = []string{ //nolint:gochecknoglobals // static catalog
		"fintech", "healthcare", "ecommerce", "gaming", "saas", "public_sector",
	}
	styleCatalog = []string{ //nolint:gochecknoglobals // static catalog
		model.StyleDirective, model.StyleCollaborative, model.StyleSupportive,
		model.StyleStructured, model.StyleSelfDirected,
	}
	careerStages   = []string{"student", "early_career", "mid_career", "senior"} //nolint:gochecknoglobals // static catalog
	positionLevels = []string{"ic", "lead", "manager", "director"}              //nolint:gochecknoglobals // static catalog
	priorStatuses  = []model.Status{                                            //nolint:gochecknoglobals // static catalog
		model.StatusAccepted, model.StatusActive, model.StatusCompleted, model.StatusRejected,
	}
	ratingComments = []string{ //nolint:gochecknoglobals // static catalog, indexed by rating-1
		"sessions were often cancelled", "goals were never agreed", "useful but hard to schedule",
		"clear explanations and good follow-up", "changed how I approach my work",
	}
)

// Generation ranges.
const (
	maxLevel          = 5
	minSkills         = 2
	maxSkills         = 5
	maxInterests      = 4
	maxSlots          = 3
	daysPerWeek       = 7
	slotStepMinutes   = 30
	firstSlotMinute   = 8 * 60
	slotStartSteps    = 20 // 08:00 to 17:30
	minSlotMinutes    = 60
	slotLengthSteps   = 5 // 60 to 180 minutes
	maxIndustries     = 3
	maxIndustryYears  = 10
	maxExperience     = 25
	maxGoals          = 3
	maxTimelineMonths = 24
)

// Generator builds synthetic profile sets. The same seed always yields the
// same fixtures, ids included.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // synthetic data
}

// Fixtures returns mentors and mentees plus history prior outcomes between
// random pairs, each with a rating when the pair got far enough.
func (g *Generator) Fixtures(mentors, mentees, history int) repository.Fixtures {
	var f repository.Fixtures
	mentorIDs := make([]string, 0, mentors)
	menteeIDs := make([]string, 0, mentees)

	for i := 0; i < mentors; i++ {
		p := g.mentor()
		mentorIDs = append(mentorIDs, p.ID)
		f.Profiles = append(f.Profiles, p)
	}
	for i := 0; i < mentees; i++ {
		p := g.mentee()
		menteeIDs = append(menteeIDs, p.ID)
		f.Profiles = append(f.Profiles, p)
	}
	if len(mentorIDs) == 0 || len(menteeIDs) == 0 {
		return f
	}

	seen := make(map[[2]string]struct{}, history)
	for i := 0; i < history; i++ {
		pair := [2]string{g.pick(mentorIDs), g.pick(menteeIDs)}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}

		status := priorStatuses[g.rng.Intn(len(priorStatuses))]
		f.Matches = append(f.Matches, repository.FixtureMatch{MentorID: pair[0], MenteeID: pair[1], Status: status})
		if status == model.StatusActive || status == model.StatusCompleted {
			rating := 1 + g.rng.Intn(maxLevel)
			f.Feedback = append(f.Feedback, repository.FixtureRating{
				MentorID: pair[0], MenteeID: pair[1], Rating: rating, Comment: ratingComments[rating-1],
			})
		}
	}
	return f
}

func (g *Generator) mentor() model.Profile {
	p := model.Profile{
		ID:              g.id("mentor"),
		Role:            model.RoleMentor,
		Skills:          g.ratings(minSkills + g.rng.Intn(maxSkills-minSkills+1)),
		Availability:    g.slots(),
		Style:           g.pick(styleCatalog),
		ExperienceYears: 1 + g.rng.Intn(maxExperience),
	}

	n := 1 + g.rng.Intn(maxIndustries)
	current := g.rng.Intn(n)
	for i, idx := range g.rng.Perm(len(industryCatalog))[:n] {
		ind := industryCatalog[idx]
		p.ExpertiseAreas = append(p.ExpertiseAreas, ind)
		p.Industries = append(p.Industries, model.IndustryExperience{
			IndustryID:    ind,
			Years:         1 + g.rng.Intn(maxIndustryYears),
			IsCurrent:     i == current,
			PositionLevel: g.pick(positionLevels),
		})
	}
	return p
}

func (g *Generator) mentee() model.Profile {
	p := model.Profile{
		ID:          g.id("mentee"),
		Role:        model.RoleMentee,
		Interests:   g.ratings(1 + g.rng.Intn(maxInterests)),
		Style:       g.pick(styleCatalog),
		CareerStage: g.pick(careerStages),
	}
	// Some mentees leave availability empty.
	if g.rng.Intn(5) > 0 {
		p.Availability = g.slots()
	}
	n := 1 + g.rng.Intn(maxGoals)
	for i, idx := range g.rng.Perm(len(industryCatalog))[:n] {
		p.Goals = append(p.Goals, model.Goal{
			Category:       industryCatalog[idx],
			Priority:       i + 1,
			TimelineMonths: 1 + g.rng.Intn(maxTimelineMonths),
		})
	}
	return p
}

func (g *Generator) ratings(n int) []model.SkillRating {
	out := make([]model.SkillRating, 0, n)
	for _, idx := range g.rng.Perm(len(skillCatalog))[:n] {
		out = append(out, model.SkillRating{SkillID: skillCatalog[idx], Level: 1 + g.rng.Intn(maxLevel)})
	}
	return out
}

func (g *Generator) slots() []model.AvailabilitySlot {
	n := 1 + g.rng.Intn(maxSlots)
	out := make([]model.AvailabilitySlot, 0, n)
	for i := 0; i < n; i++ {
		start := firstSlotMinute + g.rng.Intn(slotStartSteps)*slotStepMinutes
		out = append(out, model.AvailabilitySlot{
			DayOfWeek:   g.rng.Intn(daysPerWeek),
			StartMinute: start,
			EndMinute:   start + minSlotMinutes + g.rng.Intn(slotLengthSteps)*slotStepMinutes,
		})
	}
	return out
}

func (g *Generator) pick(from []string) string {
	return from[g.rng.Intn(len(from))]
}

// id draws a UUID from the seeded source so runs are reproducible.
func (g *Generator) id(prefix string) string {
	u, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return prefix + "-" + uuid.NewString()
	}
	return prefix + "-" + u.String()
}
