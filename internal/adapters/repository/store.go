// Package repository holds the profile, match and feedback stores the
// matching service reads from and persists to.
package repository

import (
	"context"

	"github.com/okian/mentormatch/internal/domain/model"
)

// ProfileStore is the profile repository.
type ProfileStore interface {
	// Profile returns the profile with id in role, or ErrNotFound.
	Profile(ctx context.Context, id string, role model.Role) (model.Profile, error)
	// Profiles lists profiles in role ordered by id. limit < 1 means no limit.
	Profiles(ctx context.Context, role model.Role, limit int) ([]model.Profile, error)
	// PutProfile inserts or replaces a profile.
	PutProfile(ctx context.Context, p model.Profile) error
}

// MatchStore persists scored matches. There is one current record per
// mentor/mentee pair; a rejected record is archived when the pair moves to
// another status so repeated rejections stay countable.
type MatchStore interface {
	// SaveResult writes the scores of res. A new pair is stored as
	// suggested; an existing pair keeps its status.
	SaveResult(ctx context.Context, res model.MatchResult) (model.MatchRecord, error)
	// SetStatus changes the status of a pair, creating it if needed.
	SetStatus(ctx context.Context, mentorID, menteeID string, status model.Status) (model.MatchRecord, error)
	// Match returns the current record for a pair, or ErrNotFound.
	Match(ctx context.Context, mentorID, menteeID string) (model.MatchRecord, error)
	// MatchesFor returns current and archived records involving userID.
	MatchesFor(ctx context.Context, userID string) ([]model.MatchRecord, error)
	// Matches returns every current record.
	Matches(ctx context.Context) ([]model.MatchRecord, error)
	// TopN returns the best current records by score desc, then pair asc.
	TopN(ctx context.Context, n int) ([]model.MatchRecord, error)
	// Count returns the number of current records.
	Count(ctx context.Context) int
}

// FeedbackStore keeps pair ratings.
type FeedbackStore interface {
	AddFeedback(ctx context.Context, f model.FeedbackRecord) error
	// Feedback returns feedback for the given mentors, or all when none given.
	Feedback(ctx context.Context, mentorIDs ...string) ([]model.FeedbackRecord, error)
}

// Store bundles every repository the service needs.
type Store interface {
	ProfileStore
	MatchStore
	FeedbackStore
	Close() error
}

func validateProfile(p model.Profile) error {
	if p.ID == "" || !p.Role.Valid() {
		return ErrInvalidProfile
	}
	return nil
}

func pairKey(mentorID, menteeID string) string {
	return mentorID + "/" + menteeID
}
