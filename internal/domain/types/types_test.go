package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/mentormatch/internal/domain/model"
	types "github.com/okian/mentormatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSuggestions(t *testing.T) {
	Convey("Given ranked results for a mentee seed", t, func() {
		results := []model.MatchResult{
			{MentorID: "m2", MenteeID: "e1", TotalScore: 0.9},
			{MentorID: "m1", MenteeID: "e1", TotalScore: 0.7},
		}

		Convey("When converting to suggestions", func() {
			out := types.Suggestions(results, model.RoleMentee)

			Convey("Then ranks are 1-based and the candidate is the mentor", func() {
				So(len(out), ShouldEqual, 2)
				So(out[0].Rank, ShouldEqual, 1)
				So(out[0].CandidateID, ShouldEqual, "m2")
				So(out[1].Rank, ShouldEqual, 2)
				So(out[1].CandidateID, ShouldEqual, "m1")
			})
		})

		Convey("When the seed is a mentor", func() {
			out := types.Suggestions(results, model.RoleMentor)
			So(out[0].CandidateID, ShouldEqual, "e1")
		})

		Convey("When there are no results", func() {
			out := types.Suggestions(nil, model.RoleMentee)

			Convey("Then it encodes as an empty JSON array", func() {
				b, err := json.Marshal(out)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "[]")
			})
		})
	})
}

func TestMatchEntries(t *testing.T) {
	Convey("Given ordered match records", t, func() {
		records := []model.MatchRecord{
			{ID: "a", MentorID: "m1", MenteeID: "e1", TotalScore: 0.8, Status: model.StatusActive},
			{ID: "b", MentorID: "m2", MenteeID: "e2", TotalScore: 0.6, Status: model.StatusSuggested},
		}

		out := types.MatchEntries(records)

		Convey("Then entries keep order and carry status", func() {
			So(out[0].Rank, ShouldEqual, 1)
			So(out[0].MatchID, ShouldEqual, "a")
			So(out[0].Status, ShouldEqual, model.StatusActive)
			So(out[1].Rank, ShouldEqual, 2)
			So(out[1].TotalScore, ShouldEqual, 0.6)
		})
	})
}
