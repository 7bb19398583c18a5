package loadgen

import (
	"fmt"

	"github.com/okian/mentormatch/internal/domain/model"
)

// verifySuggestions checks one response against the ranking contract:
// consistent count, at most limit entries, 1-based ranks, scores in [0,1]
// sorted descending with ties broken by candidate id, and no candidate that
// is the seed itself or appears twice.
func verifySuggestions(seed model.Profile, resp suggestionsResponse, limit int) error {
	if resp.UserID != seed.ID {
		return fmt.Errorf("response for %q, want %q", resp.UserID, seed.ID)
	}
	if resp.Count != len(resp.Suggestions) {
		return fmt.Errorf("count %d does not match %d suggestions", resp.Count, len(resp.Suggestions))
	}
	if limit > 0 && len(resp.Suggestions) > limit {
		return fmt.Errorf("%d suggestions exceed limit %d", len(resp.Suggestions), limit)
	}

	seen := make(map[string]struct{}, len(resp.Suggestions))
	for i, s := range resp.Suggestions {
		if s.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d", i, s.Rank)
		}
		if s.TotalScore < 0 || s.TotalScore > 1 {
			return fmt.Errorf("entry %d score %.4f outside [0,1]", i, s.TotalScore)
		}
		if s.CandidateID == seed.ID {
			return fmt.Errorf("entry %d suggests the seed itself", i)
		}
		if _, dup := seen[s.CandidateID]; dup {
			return fmt.Errorf("candidate %s suggested twice", s.CandidateID)
		}
		seen[s.CandidateID] = struct{}{}

		if i == 0 {
			continue
		}
		prev := resp.Suggestions[i-1]
		switch {
		case s.TotalScore > prev.TotalScore:
			return fmt.Errorf("not sorted: entry %d scores %.4f above entry %d at %.4f",
				i, s.TotalScore, i-1, prev.TotalScore)
		case s.TotalScore == prev.TotalScore && s.CandidateID < prev.CandidateID:
			return fmt.Errorf("tie between %s and %s not ordered by id", prev.CandidateID, s.CandidateID)
		}
	}
	return nil
}
