// Package config defines service configuration and its defaults.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/mentormatch/internal/domain/feedback"
	"github.com/okian/mentormatch/internal/domain/scoring"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`
	// LogFile, when set, also receives JSON log lines.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// CORSAllowedOrigins is passed to the CORS middleware. Empty allows all.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// EventQueueSize bounds the in-memory event queue.
	EventQueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of rescoring workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize sets the size of the event id cache.
	DedupeSize int `koanf:"dedupe_size"`

	MaxSuggestionLimit     int `koanf:"max_suggestion_limit"`
	DefaultSuggestionLimit int `koanf:"default_suggestion_limit"`
	// MaxCandidatePool caps how many candidates are read per ranking run.
	MaxCandidatePool int `koanf:"max_candidate_pool"`

	// Storage is memory or postgres.
	Storage     string `koanf:"storage"`
	DatabaseDSN string `koanf:"database_dsn"`
	// ProfilesFile is a YAML fixtures file loaded at startup.
	ProfilesFile string `koanf:"profiles_file"`

	SkillWeight        float64 `koanf:"skill_weight"`
	AvailabilityWeight float64 `koanf:"availability_weight"`
	StyleWeight        float64 `koanf:"style_weight"`
	GoalsWeight        float64 `koanf:"goals_weight"`
	IndustryWeight     float64 `koanf:"industry_weight"`
	ExperienceWeight   float64 `koanf:"experience_weight"`

	// FeedbackBlend is the share of the base score kept after adjustment.
	FeedbackBlend float64 `koanf:"feedback_blend"`
	// RejectionDecay is applied once per prior rejection of a pair.
	RejectionDecay float64 `koanf:"rejection_decay"`
}

// New creates a Config with defaults.
func New() *Config {
	w := scoring.DefaultWeights()
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		EventQueueSize:         10_000,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             50_000,
		MaxSuggestionLimit:     50,
		DefaultSuggestionLimit: 10,
		MaxCandidatePool:       5_000,
		Storage:                StorageMemory,
		SkillWeight:            w.Skill,
		AvailabilityWeight:     w.Availability,
		StyleWeight:            w.Style,
		GoalsWeight:            w.Goals,
		IndustryWeight:         w.Industry,
		ExperienceWeight:       w.Experience,
		FeedbackBlend:          feedback.DefaultScoreBlend,
		RejectionDecay:         feedback.DefaultRejectionDecay,
	}
}

// Weights returns the configured weight vector.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{
		Skill:        c.SkillWeight,
		Availability: c.AvailabilityWeight,
		Style:        c.StyleWeight,
		Goals:        c.GoalsWeight,
		Industry:     c.IndustryWeight,
		Experience:   c.ExperienceWeight,
	}
}

// Validate checks ranges and required fields. A weight sum other than 1 is
// allowed.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("%w: database_dsn is required for postgres storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}

	positive := map[string]int{
		"queue_size":               c.EventQueueSize,
		"worker_count":             c.WorkerCount,
		"max_suggestion_limit":     c.MaxSuggestionLimit,
		"default_suggestion_limit": c.DefaultSuggestionLimit,
		"max_candidate_pool":       c.MaxCandidatePool,
	}
	for _, key := range sortedKeys(positive) {
		if positive[key] < 1 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, key)
		}
	}
	if c.DefaultSuggestionLimit > c.MaxSuggestionLimit {
		return fmt.Errorf("%w: default_suggestion_limit exceeds max_suggestion_limit", ErrInvalidConfig)
	}

	unit := map[string]float64{
		"skill_weight":        c.SkillWeight,
		"availability_weight": c.AvailabilityWeight,
		"style_weight":        c.StyleWeight,
		"goals_weight":        c.GoalsWeight,
		"industry_weight":     c.IndustryWeight,
		"experience_weight":   c.ExperienceWeight,
		"feedback_blend":      c.FeedbackBlend,
		"rejection_decay":     c.RejectionDecay,
	}
	for _, key := range sortedKeys(unit) {
		if v := unit[key]; v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidConfig, key, v)
		}
	}
	return nil
}
