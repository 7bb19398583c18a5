package loadgen

import (
	"testing"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/types"
)

func suggestion(rank int, id string, score float64) types.Suggestion {
	return types.Suggestion{Rank: rank, CandidateID: id, TotalScore: score}
}

func TestVerifySuggestions(t *testing.T) {
	seed := model.Profile{ID: "e1", Role: model.RoleMentee}
	valid := []types.Suggestion{
		suggestion(1, "m3", 0.9),
		suggestion(2, "m1", 0.5),
		suggestion(3, "m2", 0.5),
	}

	tests := []struct {
		name    string
		resp    suggestionsResponse
		limit   int
		wantErr bool
	}{
		{"valid", suggestionsResponse{UserID: "e1", Count: 3, Suggestions: valid}, 3, false},
		{"empty", suggestionsResponse{UserID: "e1"}, 5, false},
		{"no limit", suggestionsResponse{UserID: "e1", Count: 3, Suggestions: valid}, 0, false},
		{"wrong user", suggestionsResponse{UserID: "e2", Count: 3, Suggestions: valid}, 3, true},
		{"count mismatch", suggestionsResponse{UserID: "e1", Count: 2, Suggestions: valid}, 3, true},
		{"over limit", suggestionsResponse{UserID: "e1", Count: 3, Suggestions: valid}, 2, true},
		{"bad rank", suggestionsResponse{UserID: "e1", Count: 1, Suggestions: []types.Suggestion{
			suggestion(2, "m1", 0.5),
		}}, 5, true},
		{"score out of range", suggestionsResponse{UserID: "e1", Count: 1, Suggestions: []types.Suggestion{
			suggestion(1, "m1", 1.5),
		}}, 5, true},
		{"unsorted", suggestionsResponse{UserID: "e1", Count: 2, Suggestions: []types.Suggestion{
			suggestion(1, "m1", 0.4), suggestion(2, "m2", 0.6),
		}}, 5, true},
		{"tie out of order", suggestionsResponse{UserID: "e1", Count: 2, Suggestions: []types.Suggestion{
			suggestion(1, "m2", 0.5), suggestion(2, "m1", 0.5),
		}}, 5, true},
		{"duplicate", suggestionsResponse{UserID: "e1", Count: 2, Suggestions: []types.Suggestion{
			suggestion(1, "m1", 0.5), suggestion(2, "m1", 0.5),
		}}, 5, true},
		{"self", suggestionsResponse{UserID: "e1", Count: 1, Suggestions: []types.Suggestion{
			suggestion(1, "e1", 0.5),
		}}, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifySuggestions(seed, tt.resp, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("verifySuggestions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
