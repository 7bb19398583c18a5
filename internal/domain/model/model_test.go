package model_test

import (
	"testing"

	model "github.com/okian/mentormatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRole(t *testing.T) {
	Convey("Given the role helpers", t, func() {
		Convey("Then opposite roles pair up", func() {
			So(model.RoleMentor.Opposite(), ShouldEqual, model.RoleMentee)
			So(model.RoleMentee.Opposite(), ShouldEqual, model.RoleMentor)
			So(model.Role("admin").Opposite(), ShouldEqual, model.Role(""))
		})

		Convey("Then parsing normalizes case and whitespace", func() {
			r, ok := model.ParseRole(" Mentor ")
			So(ok, ShouldBeTrue)
			So(r, ShouldEqual, model.RoleMentor)

			_, ok = model.ParseRole("coach")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Given match statuses", t, func() {
		Convey("Then only active and rejected exclude a pair", func() {
			So(model.StatusActive.Excludes(), ShouldBeTrue)
			So(model.StatusRejected.Excludes(), ShouldBeTrue)
			So(model.StatusSuggested.Excludes(), ShouldBeFalse)
			So(model.StatusAccepted.Excludes(), ShouldBeFalse)
			So(model.StatusCompleted.Excludes(), ShouldBeFalse)
		})

		Convey("Then unknown statuses are invalid", func() {
			So(model.Status("pending").Valid(), ShouldBeFalse)
			So(model.StatusCompleted.Valid(), ShouldBeTrue)
		})
	})
}

func TestMatchRecordInvolves(t *testing.T) {
	Convey("Given a match record", t, func() {
		rec := model.MatchRecord{MentorID: "m1", MenteeID: "e1"}

		Convey("Then it matches the pair in either order", func() {
			So(rec.Involves("m1", "e1"), ShouldBeTrue)
			So(rec.Involves("e1", "m1"), ShouldBeTrue)
			So(rec.Involves("m1", "e2"), ShouldBeFalse)
		})
	})
}

func TestIndustryCategoryKey(t *testing.T) {
	Convey("Given industry experience", t, func() {
		Convey("Then the explicit category wins over the industry id", func() {
			So(model.IndustryExperience{IndustryID: "fintech", Category: "technical"}.CategoryKey(), ShouldEqual, "technical")
			So(model.IndustryExperience{IndustryID: "fintech"}.CategoryKey(), ShouldEqual, "fintech")
		})
	})
}
