package repository

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/mentormatch/internal/domain/model"
)

// Fixtures is a YAML document of profiles and prior outcomes used to seed a
// store.
type Fixtures struct {
	Profiles []model.Profile `yaml:"profiles"`
	Matches  []FixtureMatch  `yaml:"matches,omitempty"`
	Feedback []FixtureRating `yaml:"feedback,omitempty"`
}

// FixtureMatch is a prior match status.
type FixtureMatch struct {
	MentorID string       `yaml:"mentor_id"`
	MenteeID string       `yaml:"mentee_id"`
	Status   model.Status `yaml:"status"`
}

// FixtureRating is a prior rating.
type FixtureRating struct {
	MentorID string `yaml:"mentor_id"`
	MenteeID string `yaml:"mentee_id"`
	Rating   int    `yaml:"rating"`
	Comment  string `yaml:"comment,omitempty"`
}

// LoadFixtures reads a fixtures file.
func LoadFixtures(path string) (Fixtures, error) {
	var f Fixtures
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read fixtures: %w", err)
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return f, nil
}

// SaveFixtures writes f to path as YAML.
func SaveFixtures(path string, f Fixtures) error {
	raw, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fixtures: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write fixtures: %w", err)
	}
	return nil
}

// Seed writes fixtures into any Store.
func Seed(ctx context.Context, s Store, f Fixtures) error {
	for _, p := range f.Profiles {
		if err := s.PutProfile(ctx, p); err != nil {
			return fmt.Errorf("seed profile %q: %w", p.ID, err)
		}
	}
	for _, m := range f.Matches {
		if !m.Status.Valid() {
			return fmt.Errorf("seed match %s/%s: unknown status %q", m.MentorID, m.MenteeID, m.Status)
		}
		if _, err := s.SetStatus(ctx, m.MentorID, m.MenteeID, m.Status); err != nil {
			return fmt.Errorf("seed match %s/%s: %w", m.MentorID, m.MenteeID, err)
		}
	}
	for _, r := range f.Feedback {
		err := s.AddFeedback(ctx, model.FeedbackRecord{MentorID: r.MentorID, MenteeID: r.MenteeID, Rating: r.Rating, Comment: r.Comment})
		if err != nil {
			return fmt.Errorf("seed feedback %s/%s: %w", r.MentorID, r.MenteeID, err)
		}
	}
	return nil
}
