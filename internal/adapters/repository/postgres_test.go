package repository

import (
	"testing"
	"time"

	"github.com/lib/pq"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mentormatch/internal/domain/model"
)

func TestPostgresQueries(t *testing.T) {
	Convey("Given the Postgres query builders", t, func() {
		now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

		Convey("When selecting a profile", func() {
			query, args, err := profileQuery("m1", model.RoleMentor).ToSql()

			Convey("Then it filters by id and role with dollar placeholders", func() {
				So(err, ShouldBeNil)
				So(query, ShouldEqual, "SELECT data FROM profiles WHERE id = $1 AND role = $2")
				So(args, ShouldResemble, []interface{}{"m1", "mentor"})
			})
		})

		Convey("When listing a capped candidate pool", func() {
			query, _, err := profilesQuery(model.RoleMentee, 25).ToSql()
			So(err, ShouldBeNil)
			So(query, ShouldContainSubstring, "ORDER BY id")
			So(query, ShouldContainSubstring, "LIMIT 25")

			query, _, _ = profilesQuery(model.RoleMentee, 0).ToSql()
			So(query, ShouldNotContainSubstring, "LIMIT")
		})

		Convey("When upserting a scored result", func() {
			res := model.MatchResult{MentorID: "m1", MenteeID: "e1", TotalScore: 0.5}
			query, args, err := upsertResultQuery("id-1", res, []byte(`{}`), []byte(`{}`), now).ToSql()

			Convey("Then the status is only set on insert and the row is returned", func() {
				So(err, ShouldBeNil)
				So(query, ShouldStartWith, "INSERT INTO match_scores")
				So(query, ShouldContainSubstring, "ON CONFLICT (mentor_id, mentee_id) DO UPDATE SET total_score")
				So(query, ShouldNotContainSubstring, "status = EXCLUDED.status")
				So(query, ShouldEndWith, "RETURNING id, mentor_id, mentee_id, total_score, dimension_scores, detail, status, updated_at")
				So(len(args), ShouldEqual, len(matchColumns))
				So(args[4], ShouldEqual, "{}")
				So(args[6], ShouldEqual, "suggested")
			})
		})

		Convey("When upserting a status", func() {
			query, args, err := upsertStatusQuery("id-2", "m1", "e1", model.StatusRejected, now).ToSql()
			So(err, ShouldBeNil)
			So(query, ShouldContainSubstring, "status = EXCLUDED.status")
			So(args[3], ShouldEqual, "rejected")
		})

		Convey("When reading the board", func() {
			query, _, err := topNQuery(10).ToSql()
			So(err, ShouldBeNil)
			So(query, ShouldContainSubstring, "ORDER BY total_score DESC, mentor_id, mentee_id LIMIT 10")
		})

		Convey("When reading matches involving a user", func() {
			query, args, err := involvingQuery(archiveTable, "e1").ToSql()
			So(err, ShouldBeNil)
			So(query, ShouldContainSubstring, "FROM match_archive WHERE (mentor_id = $1 OR mentee_id = $2)")
			So(args, ShouldResemble, []interface{}{"e1", "e1"})
		})

		Convey("When filtering feedback by mentors", func() {
			query, args, err := feedbackQuery([]string{"m1", "m2"}).ToSql()
			So(err, ShouldBeNil)
			So(query, ShouldContainSubstring, "WHERE mentor_id = ANY($1)")
			So(args, ShouldResemble, []interface{}{pq.Array([]string{"m1", "m2"})})

			query, args, _ = feedbackQuery(nil).ToSql()
			So(query, ShouldNotContainSubstring, "WHERE")
			So(args, ShouldBeEmpty)
		})

		Convey("When inserting feedback with a comment", func() {
			query, args, err := insertFeedbackQuery(model.FeedbackRecord{MentorID: "m1", MenteeID: "e1", Rating: 4, Comment: "helpful"}).ToSql()
			So(err, ShouldBeNil)
			So(query, ShouldStartWith, "INSERT INTO match_feedback (mentor_id,mentee_id,rating,match_status,comment,created_at)")
			So(args[4], ShouldEqual, "helpful")
		})
	})
}

func TestEncodeScores(t *testing.T) {
	Convey("Given dimension scores and detail", t, func() {
		dims, detail, err := encodeScores(nil, model.MatchDetail{OverlapHours: 2})

		Convey("Then nil scores encode as an empty object", func() {
			So(err, ShouldBeNil)
			So(string(dims), ShouldEqual, "{}")
			So(string(detail), ShouldContainSubstring, `"overlap_hours":2`)
		})
	})
}
