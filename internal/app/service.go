// Package service wires the matching core to storage and the rescoring
// pipeline and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/mentormatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/mentormatch/internal/adapters/mq/worker"
	"github.com/okian/mentormatch/internal/adapters/repository"
	"github.com/okian/mentormatch/internal/domain/dedupe"
	"github.com/okian/mentormatch/internal/domain/feedback"
	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/ranking"
	"github.com/okian/mentormatch/internal/domain/scoring"
	"github.com/okian/mentormatch/internal/domain/types"
	"github.com/okian/mentormatch/pkg/logger"
	"github.com/okian/mentormatch/pkg/metrics"
)

// Sentinel error kinds returned by the service.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("service unavailable")
)

// Event outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
)

// FeedbackInput is a rating submitted for a pair.
type FeedbackInput struct {
	EventID  string `json:"event_id,omitempty"`
	MentorID string `json:"mentor_id"`
	MenteeID string `json:"mentee_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

// StatusInput is a status change for a pair.
type StatusInput struct {
	EventID  string       `json:"event_id,omitempty"`
	MentorID string       `json:"mentor_id"`
	MenteeID string       `json:"mentee_id"`
	Status   model.Status `json:"status"`
}

// InsightsReport pairs a user's feedback insights with the weights they
// suggest.
type InsightsReport struct {
	feedback.Insights
	CurrentWeights     scoring.Weights `json:"current_weights"`
	RecommendedWeights scoring.Weights `json:"recommended_weights"`
}

// Service implements the API dependencies for the matching system.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	ranker  *ranking.Ranker
	deduper dedupe.Deduper
	queue   eventqueue.Queue
	pool    *workerpool.Pool

	workerCount  int
	queueSize    int
	dedupeSize   int
	defaultLimit int
	maxLimit     int
	maxPool      int

	weights scoring.Weights
	blend   float64
	decay   float64

	started bool
	cancel  context.CancelFunc
	now     func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of rescoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the event id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSuggestionLimits sets the default and maximum suggestion counts.
func WithSuggestionLimits(def, maxLimit int) Option {
	return func(s *Service) {
		if def > 0 && maxLimit >= def {
			s.defaultLimit = def
			s.maxLimit = maxLimit
		}
	}
}

// WithMaxCandidatePool caps how many candidates are ranked per request.
func WithMaxCandidatePool(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPool = n
		}
	}
}

// WithWeights sets the dimension weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithFeedbackBlend sets the share of the base score kept by the adjuster.
func WithFeedbackBlend(blend float64) Option {
	return func(s *Service) {
		s.blend = blend
	}
}

// WithRejectionDecay sets the per-rejection pair penalty.
func WithRejectionDecay(decay float64) Option {
	return func(s *Service) {
		s.decay = decay
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. The ranker is ready immediately; the rescoring
// pipeline starts with Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    10_000,
		dedupeSize:   50_000,
		defaultLimit: 10,
		maxLimit:     50,
		maxPool:      5_000,
		weights:      scoring.DefaultWeights(),
		blend:        feedback.DefaultScoreBlend,
		decay:        feedback.DefaultRejectionDecay,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.ranker = ranking.NewRanker(
		ranking.WithScorer(scoring.NewScorer(scoring.WithWeights(s.weights))),
		ranking.WithAdjuster(feedback.NewAdjuster(
			feedback.WithScoreBlend(s.blend),
			feedback.WithRejectionDecay(s.decay),
		)),
	)
	return s
}

// Start creates the queue and worker pool and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if sum := s.weights.Sum(); math.Abs(sum-1) > 1e-9 {
		s.logger.Warn(ctx, "dimension weights do not sum to 1", logger.Float64("sum", sum))
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.store)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("match_records", s.store.Count(ctx)),
	)
	return nil
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping matching service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	s.logger.Info(ctx, "matching service stopped",
		logger.Any("processed", s.pool.Processed()),
		logger.Any("failed", s.pool.Failed()),
	)
	return err
}

// Store returns the backing store.
func (s *Service) Store() repository.Store { return s.store }

// Weights returns the active dimension weights.
func (s *Service) Weights() scoring.Weights { return s.ranker.Weights() }

func (s *Service) clampLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must not be negative", ErrInvalidArgument)
	case limit == 0:
		return s.defaultLimit, nil
	case limit > s.maxLimit:
		return s.maxLimit, nil
	}
	return limit, nil
}

// Suggestions ranks candidates of the opposite role for userID and persists
// them. Pairs that already have a status keep it. An unknown seed yields an
// empty list.
func (s *Service) Suggestions(ctx context.Context, userID string, role model.Role, limit int) ([]types.Suggestion, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, role)
	}
	limit, err := s.clampLimit(limit)
	if err != nil {
		return nil, err
	}

	seed, err := s.store.Profile(ctx, userID, role)
	if errors.Is(err, repository.ErrNotFound) {
		return []types.Suggestion{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	candidates, err := s.store.Profiles(ctx, role.Opposite(), s.maxPool)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	history, err := s.history(ctx, seed, candidates)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := s.ranker.RankCandidates(seed, candidates, history, limit)
	excluded := ranking.ExcludedIn(seed.ID, candidates, history.Matches)
	metrics.RecordRanking(len(candidates), excluded, len(results),
		float64(time.Since(start).Microseconds())/1000)

	for _, r := range results {
		if _, err := s.store.SaveResult(ctx, r); err != nil {
			return nil, fmt.Errorf("persist suggestion: %w", err)
		}
	}
	return types.Suggestions(results, role), nil
}

// history collects the seed's matches and the feedback of every mentor
// involved in the run.
func (s *Service) history(ctx context.Context, seed model.Profile, candidates []model.Profile) (model.History, error) {
	matches, err := s.store.MatchesFor(ctx, seed.ID)
	if err != nil {
		return model.History{}, fmt.Errorf("load matches: %w", err)
	}

	mentors := []string{seed.ID}
	if seed.Role == model.RoleMentee {
		mentors = mentors[:0]
		for _, c := range candidates {
			mentors = append(mentors, c.ID)
		}
	}
	var fb []model.FeedbackRecord
	if len(mentors) > 0 {
		if fb, err = s.store.Feedback(ctx, mentors...); err != nil {
			return model.History{}, fmt.Errorf("load feedback: %w", err)
		}
	}
	return model.History{Matches: matches, Feedback: fb}, nil
}

// ScorePair scores one mentor/mentee pair against stored history. It returns
// repository.ErrNotFound when either profile is missing.
func (s *Service) ScorePair(ctx context.Context, mentorID, menteeID string) (model.MatchResult, error) {
	mentor, err := s.store.Profile(ctx, mentorID, model.RoleMentor)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("mentor %q: %w", mentorID, err)
	}
	mentee, err := s.store.Profile(ctx, menteeID, model.RoleMentee)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("mentee %q: %w", menteeID, err)
	}
	matches, err := s.store.MatchesFor(ctx, menteeID)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("load matches: %w", err)
	}
	fb, err := s.store.Feedback(ctx, mentorID)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("load feedback: %w", err)
	}

	metrics.RecordPairScored()
	return s.ranker.ScorePair(mentor, mentee, model.History{Matches: matches, Feedback: fb}), nil
}

// RecordFeedback validates a rating and queues it for the workers.
func (s *Service) RecordFeedback(ctx context.Context, in FeedbackInput) (string, error) {
	if in.MentorID == "" || in.MenteeID == "" {
		return "", fmt.Errorf("%w: mentor_id and mentee_id are required", ErrInvalidArgument)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return "", fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument)
	}
	return s.submit(ctx, model.RescoreJob{
		EventID:  in.EventID,
		Kind:     model.JobFeedback,
		MentorID: in.MentorID,
		MenteeID: in.MenteeID,
		Rating:   in.Rating,
		Comment:  in.Comment,
	})
}

// UpdateStatus validates a status change and queues it for the workers.
func (s *Service) UpdateStatus(ctx context.Context, in StatusInput) (string, error) {
	if in.MentorID == "" || in.MenteeID == "" {
		return "", fmt.Errorf("%w: mentor_id and mentee_id are required", ErrInvalidArgument)
	}
	if !in.Status.Valid() || in.Status == model.StatusSuggested {
		return "", fmt.Errorf("%w: unsupported status %q", ErrInvalidArgument, in.Status)
	}
	return s.submit(ctx, model.RescoreJob{
		EventID:  in.EventID,
		Kind:     model.JobStatus,
		MentorID: in.MentorID,
		MenteeID: in.MenteeID,
		Status:   in.Status,
	})
}

// submit deduplicates by event id and enqueues. A failed enqueue forgets the
// id so the client can retry.
func (s *Service) submit(ctx context.Context, job model.RescoreJob) (string, error) {
	s.mu.RLock()
	started, q, d := s.started, s.queue, s.deduper
	s.mu.RUnlock()
	if !started {
		return "", fmt.Errorf("%w: not started", ErrUnavailable)
	}

	kind := string(job.Kind)
	if job.EventID == "" {
		job.EventID = uuid.NewString()
	}
	job.TS = s.now()

	if d.SeenAndRecord(ctx, job.EventID) {
		metrics.RecordEvent(kind, OutcomeDuplicate)
		s.logger.Debug(ctx, "duplicate event", logger.String("event_id", job.EventID))
		return OutcomeDuplicate, nil
	}
	if err := q.Enqueue(ctx, job); err != nil {
		d.Unrecord(ctx, job.EventID)
		metrics.RecordEvent(kind, "rejected")
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.RecordEvent(kind, OutcomeAccepted)
	return OutcomeAccepted, nil
}

// TopMatches returns the best persisted matches.
func (s *Service) TopMatches(ctx context.Context, limit int) ([]types.MatchEntry, error) {
	limit, err := s.clampLimit(limit)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.TopN(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top matches: %w", err)
	}
	return types.MatchEntries(recs), nil
}

// MentorPerformance summarizes a mentor's outcomes.
func (s *Service) MentorPerformance(ctx context.Context, mentorID string) (feedback.Performance, error) {
	if _, err := s.store.Profile(ctx, mentorID, model.RoleMentor); err != nil {
		return feedback.Performance{}, fmt.Errorf("mentor %q: %w", mentorID, err)
	}
	matches, err := s.store.MatchesFor(ctx, mentorID)
	if err != nil {
		return feedback.Performance{}, fmt.Errorf("load matches: %w", err)
	}
	fb, err := s.store.Feedback(ctx, mentorID)
	if err != nil {
		return feedback.Performance{}, fmt.Errorf("load feedback: %w", err)
	}
	return feedback.AnalyzeMentor(mentorID, matches, fb), nil
}

// Insights reports dimension averages over the successful completed or
// active matches of userID, role-specific recommendations, and the weights
// those averages suggest.
func (s *Service) Insights(ctx context.Context, userID string) (InsightsReport, error) {
	if userID == "" {
		return InsightsReport{}, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}
	role, err := s.roleOf(ctx, userID)
	if err != nil {
		return InsightsReport{}, err
	}
	matches, err := s.store.MatchesFor(ctx, userID)
	if err != nil {
		return InsightsReport{}, fmt.Errorf("load matches: %w", err)
	}
	mentors := []string{userID}
	if role == model.RoleMentee {
		mentors = mentors[:0]
		for _, m := range matches {
			mentors = append(mentors, m.MentorID)
		}
	}
	fb := []model.FeedbackRecord{}
	if len(mentors) > 0 {
		if fb, err = s.store.Feedback(ctx, mentors...); err != nil {
			return InsightsReport{}, fmt.Errorf("load feedback: %w", err)
		}
	}
	ins := feedback.Analyze(userID, role, matches, fb)
	return InsightsReport{
		Insights:           ins,
		CurrentWeights:     s.Weights(),
		RecommendedWeights: feedback.RecommendWeights(ins, scoring.DefaultWeights()),
	}, nil
}

// roleOf resolves the role userID is registered under, mentor first.
func (s *Service) roleOf(ctx context.Context, userID string) (model.Role, error) {
	for _, role := range []model.Role{model.RoleMentor, model.RoleMentee} {
		_, err := s.store.Profile(ctx, userID, role)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("load profile: %w", err)
		}
	}
	return "", fmt.Errorf("user %q: %w", userID, repository.ErrNotFound)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	metrics.UpdateSystemMemoryUsage(mem.HeapInuse)
	metrics.UpdateSystemGoroutineCount(goroutines)

	matchCount := s.store.Count(ctx)
	metrics.UpdateMatchRecordsTotal(matchCount)

	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"matchRecords": matchCount,
		"weights":      s.ranker.Weights(),
		"goroutines":   goroutines,
		"heapInUse":    mem.HeapInuse,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["eventsSeen"] = s.deduper.Size()
		stats["processed"] = s.pool.Processed()
		stats["failed"] = s.pool.Failed()
	}
	return stats
}
