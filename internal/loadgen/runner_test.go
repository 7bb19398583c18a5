package loadgen_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/mentormatch/internal/adapters/http/api"
	"github.com/okian/mentormatch/internal/adapters/repository"
	service "github.com/okian/mentormatch/internal/app"
	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/loadgen"
	"github.com/okian/mentormatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("warn")); err != nil {
		panic(err)
	}
}

func newAPIServer(t *testing.T, f repository.Fixtures) *httptest.Server {
	t.Helper()
	store := repository.NewMemoryStore()
	if err := repository.Seed(context.Background(), store, f); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := service.New(service.WithStore(store), service.WithWorkerCount(1))
	mux := http.NewServeMux()
	server := api.NewServer(svc)
	server.Register(context.Background(), mux)
	return httptest.NewServer(server.Handler(mux))
}

func seedsOf(f repository.Fixtures) []model.Profile {
	return f.Profiles
}

func TestRun(t *testing.T) {
	Convey("Given a service seeded with generated fixtures", t, func() {
		f := loadgen.NewGenerator(3).Fixtures(8, 12, 10)
		ts := newAPIServer(t, f)
		Reset(ts.Close)

		Convey("When a load run is executed", func() {
			stats, err := loadgen.Run(context.Background(), loadgen.Config{
				BaseURL:     ts.URL,
				Requests:    60,
				Concurrency: 4,
				Limit:       5,
				Timeout:     5 * time.Second,
			}, seedsOf(f))

			Convey("Then every response verifies", func() {
				So(err, ShouldBeNil)
				So(stats.Requests, ShouldEqual, 60)
				So(stats.Successful, ShouldEqual, 60)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Violations, ShouldEqual, 0)
				So(stats.Suggestions, ShouldBeGreaterThan, 0)
				So(stats.SuccessRate(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a server that returns unsorted suggestions", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("GET /suggestions", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user_id":"` + r.URL.Query().Get("user_id") + `","role":"mentee","count":2,` +
				`"suggestions":[{"rank":1,"candidate_id":"m1","total_score":0.2},{"rank":2,"candidate_id":"m2","total_score":0.8}]}`))
		})
		ts := httptest.NewServer(mux)
		Reset(ts.Close)

		Convey("Then the run reports a verification failure", func() {
			stats, err := loadgen.Run(context.Background(), loadgen.Config{BaseURL: ts.URL, Requests: 3},
				[]model.Profile{{ID: "e1", Role: model.RoleMentee}})
			So(errors.Is(err, loadgen.ErrVerification), ShouldBeTrue)
			So(stats.Violations, ShouldEqual, 3)
		})
	})

	Convey("Given an unreachable service", t, func() {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		Convey("Then the health check fails", func() {
			_, err := loadgen.Run(context.Background(), loadgen.Config{BaseURL: ts.URL, Requests: 1, Timeout: time.Second},
				[]model.Profile{{ID: "e1", Role: model.RoleMentee}})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given no seeds", t, func() {
		_, err := loadgen.Run(context.Background(), loadgen.Config{BaseURL: "http://127.0.0.1:0"}, nil)

		Convey("Then Run refuses to start", func() {
			So(err, ShouldEqual, loadgen.ErrNoSeeds)
		})
	})
}
