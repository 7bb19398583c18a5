package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/mentormatch/internal/adapters/repository"
	"github.com/okian/mentormatch/internal/config"
	"github.com/okian/mentormatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func firstOf(f repository.Fixtures, role model.Role) string {
	for _, p := range f.Profiles {
		if p.Role == role {
			return p.ID
		}
	}
	return ""
}

func TestFixturesAndRank(t *testing.T) {
	Convey("Given a generated fixtures file", t, func() {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		_, _, err := run("fixtures", "--out", path, "--mentors", "6", "--mentees", "9", "--history", "4", "--seed", "11")
		So(err, ShouldBeNil)

		f, err := repository.LoadFixtures(path)
		So(err, ShouldBeNil)
		So(len(f.Profiles), ShouldEqual, 15)

		Convey("When ranking a mentee offline", func() {
			mentee := firstOf(f, model.RoleMentee)
			stdout, _, err := run("rank", "--fixtures", path, "--user-id", mentee, "--role", "Mentee", "--limit", "4")
			So(err, ShouldBeNil)

			var out rankOutput
			So(json.Unmarshal([]byte(stdout), &out), ShouldBeNil)

			Convey("Then it prints sorted suggestions within the limit", func() {
				So(out.UserID, ShouldEqual, mentee)
				So(out.Role, ShouldEqual, model.RoleMentee)
				So(out.Count, ShouldEqual, len(out.Suggestions))
				So(out.Count, ShouldBeBetweenOrEqual, 1, 4)
				for i, s := range out.Suggestions {
					So(s.Rank, ShouldEqual, i+1)
					So(s.MenteeID, ShouldEqual, mentee)
					if i > 0 {
						So(out.Suggestions[i-1].TotalScore, ShouldBeGreaterThanOrEqualTo, s.TotalScore)
					}
				}
			})
		})

		Convey("When ranking an unknown user", func() {
			stdout, _, err := run("rank", "-f", path, "-u", "ghost", "-r", "mentor")

			Convey("Then the list is empty", func() {
				So(err, ShouldBeNil)
				var out rankOutput
				So(json.Unmarshal([]byte(stdout), &out), ShouldBeNil)
				So(out.Count, ShouldEqual, 0)
			})
		})

		Convey("When the role is unknown", func() {
			_, _, err := run("rank", "-f", path, "-u", "x", "-r", "coach")
			So(err, ShouldNotBeNil)
		})

		Convey("When the same seed is generated again", func() {
			again := filepath.Join(t.TempDir(), "again.yaml")
			_, _, err := run("fixtures", "-o", again, "--mentors", "6", "--mentees", "9", "--history", "4", "--seed", "11")
			So(err, ShouldBeNil)

			g, err := repository.LoadFixtures(again)
			So(err, ShouldBeNil)
			So(g.Profiles[0].ID, ShouldEqual, f.Profiles[0].ID)
		})
	})

	Convey("Given no fixtures source", t, func() {
		Convey("Then rank and loadgen refuse to run", func() {
			_, _, err := run("rank", "-u", "e1", "-r", "mentee")
			So(err, ShouldEqual, ErrNoFixtures)

			_, _, err = run("loadgen")
			So(err, ShouldEqual, ErrNoFixtures)
		})
	})

	Convey("Given negative counts", t, func() {
		_, _, err := run("fixtures", "--out", filepath.Join(t.TempDir(), "x.yaml"), "--mentors", "-1")
		So(err, ShouldNotBeNil)
	})
}

func TestRootConfig(t *testing.T) {
	Convey("Given a config file with a bad weight", t, func() {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		So(os.WriteFile(path, []byte("skill_weight: 3\n"), 0o600), ShouldBeNil)
		_, _, err := run("--config", path, "fixtures", "--out", filepath.Join(t.TempDir(), "x.yaml"))

		Convey("Then the command fails on validation", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a log level override", t, func() {
		_, stderr, err := run("--log-level", "debug", "fixtures", "--out", filepath.Join(t.TempDir(), "x.yaml"),
			"--mentors", "1", "--mentees", "1", "--seed", "1")

		Convey("Then logs go to stderr", func() {
			So(err, ShouldBeNil)
			So(stderr, ShouldContainSubstring, "fixtures written")
		})
	})
}

func TestServiceOptions(t *testing.T) {
	Convey("Given the default config", t, func() {
		cfg := config.New()
		store := repository.NewMemoryStore()

		Convey("Then every setting maps to a service option", func() {
			So(len(serviceOptions(cfg, store)), ShouldEqual, 9)
		})

		Convey("Then the memory store is chosen by default", func() {
			s, err := openStore(context.Background(), cfg)
			So(err, ShouldBeNil)
			_, ok := s.(*repository.MemoryStore)
			So(ok, ShouldBeTrue)
		})
	})
}
