package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/pkg/metrics"
)

// MemoryStore is an in-process Store. Matches are kept on an ordered board
// so TopN is O(n) in the result size.
type MemoryStore struct {
	mu sync.RWMutex

	profiles map[model.Role]map[string]model.Profile
	matches  map[string]model.MatchRecord
	archive  []model.MatchRecord
	board    *board
	feedback []model.FeedbackRecord

	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		profiles: map[model.Role]map[string]model.Profile{
			model.RoleMentor: {},
			model.RoleMentee: {},
		},
		matches: make(map[string]model.MatchRecord),
		board:   newBoard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// Profile implements ProfileStore.
func (s *MemoryStore) Profile(_ context.Context, id string, role model.Role) (model.Profile, error) {
	defer observe("profile", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[role][id]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return p, nil
}

// Profiles implements ProfileStore.
func (s *MemoryStore) Profiles(_ context.Context, role model.Role, limit int) ([]model.Profile, error) {
	defer observe("profiles", time.Now())

	s.mu.RLock()
	out := make([]model.Profile, 0, len(s.profiles[role]))
	for _, p := range s.profiles[role] {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PutProfile implements ProfileStore.
func (s *MemoryStore) PutProfile(_ context.Context, p model.Profile) error {
	if err := validateProfile(p); err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles[p.Role][p.ID] = p
	s.mu.Unlock()
	return nil
}

// SaveResult implements MatchStore.
func (s *MemoryStore) SaveResult(_ context.Context, res model.MatchResult) (model.MatchRecord, error) {
	defer observe("save_result", time.Now())

	key := pairKey(res.MentorID, res.MenteeID)

	s.mu.Lock()
	rec, ok := s.matches[key]
	if !ok {
		rec = model.MatchRecord{
			ID:       uuid.NewString(),
			MentorID: res.MentorID,
			MenteeID: res.MenteeID,
			Status:   model.StatusSuggested,
		}
	}
	rec.TotalScore = res.TotalScore
	rec.DimensionScores = res.DimensionScores
	rec.Detail = res.Detail
	rec.UpdatedAt = s.now()
	s.matches[key] = rec
	s.board.set(key, rec.TotalScore)
	count := s.board.len()
	s.mu.Unlock()

	metrics.UpdateMatchRecordsTotal(count)
	return rec, nil
}

// SetStatus implements MatchStore.
func (s *MemoryStore) SetStatus(_ context.Context, mentorID, menteeID string, status model.Status) (model.MatchRecord, error) {
	defer observe("set_status", time.Now())

	key := pairKey(mentorID, menteeID)

	s.mu.Lock()
	rec, ok := s.matches[key]
	if !ok {
		rec = model.MatchRecord{ID: uuid.NewString(), MentorID: mentorID, MenteeID: menteeID}
	} else if rec.Status == model.StatusRejected && status != model.StatusRejected {
		archived := rec
		archived.Archived = true
		s.archive = append(s.archive, archived)
	}
	rec.Status = status
	rec.UpdatedAt = s.now()
	s.matches[key] = rec
	s.board.set(key, rec.TotalScore)
	count := s.board.len()
	s.mu.Unlock()

	metrics.UpdateMatchRecordsTotal(count)
	return rec, nil
}

// Match implements MatchStore.
func (s *MemoryStore) Match(_ context.Context, mentorID, menteeID string) (model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.matches[pairKey(mentorID, menteeID)]
	if !ok {
		return model.MatchRecord{}, ErrNotFound
	}
	return rec, nil
}

// MatchesFor implements MatchStore.
func (s *MemoryStore) MatchesFor(_ context.Context, userID string) ([]model.MatchRecord, error) {
	defer observe("matches_for", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.MatchRecord{}
	for _, rec := range s.matches {
		if rec.MentorID == userID || rec.MenteeID == userID {
			out = append(out, rec)
		}
	}
	for _, rec := range s.archive {
		if rec.MentorID == userID || rec.MenteeID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Matches implements MatchStore.
func (s *MemoryStore) Matches(_ context.Context) ([]model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.MatchRecord, 0, len(s.matches))
	for _, key := range s.board.top(len(s.matches)) {
		out = append(out, s.matches[key])
	}
	return out, nil
}

// TopN implements MatchStore.
func (s *MemoryStore) TopN(_ context.Context, n int) ([]model.MatchRecord, error) {
	defer observe("top_n", time.Now())

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.board.top(n)
	out := make([]model.MatchRecord, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.matches[key])
	}
	return out, nil
}

// Count implements MatchStore.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.len()
}

// AddFeedback implements FeedbackStore.
func (s *MemoryStore) AddFeedback(_ context.Context, f model.FeedbackRecord) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now()
	}
	s.mu.Lock()
	s.feedback = append(s.feedback, f)
	s.mu.Unlock()
	return nil
}

// Feedback implements FeedbackStore.
func (s *MemoryStore) Feedback(_ context.Context, mentorIDs ...string) ([]model.FeedbackRecord, error) {
	want := make(map[string]struct{}, len(mentorIDs))
	for _, id := range mentorIDs {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.FeedbackRecord{}
	for _, f := range s.feedback {
		if _, ok := want[f.MentorID]; ok || len(want) == 0 {
			out = append(out, f)
		}
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
