package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/mentormatch/internal/adapters/mq/worker"
	model "github.com/okian/mentormatch/internal/domain/model"
	logging "github.com/okian/mentormatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan worker.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockScorer struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (ms *mockScorer) ScorePair(_ context.Context, mentorID, menteeID string) (model.MatchResult, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.calls = append(ms.calls, mentorID+"/"+menteeID)
	if ms.err != nil {
		return model.MatchResult{}, ms.err
	}
	return model.MatchResult{MentorID: mentorID, MenteeID: menteeID, TotalScore: 0.6}, nil
}

type mockUpdater struct {
	mu       sync.Mutex
	feedback []model.FeedbackRecord
	statuses []model.Status
	saved    []model.MatchResult
}

func (mu *mockUpdater) AddFeedback(_ context.Context, f model.FeedbackRecord) error {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	mu.feedback = append(mu.feedback, f)
	return nil
}

func (mu *mockUpdater) SetStatus(_ context.Context, mentorID, menteeID string, status model.Status) (model.MatchRecord, error) {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	mu.statuses = append(mu.statuses, status)
	return model.MatchRecord{MentorID: mentorID, MenteeID: menteeID, Status: status}, nil
}

func (mu *mockUpdater) SaveResult(_ context.Context, res model.MatchResult) (model.MatchRecord, error) {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	mu.saved = append(mu.saved, res)
	return model.MatchRecord{MentorID: res.MentorID, MenteeID: res.MenteeID, TotalScore: res.TotalScore}, nil
}

func (mu *mockUpdater) savedCount() int {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	return len(mu.saved)
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker with a queue, scorer and updater", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := newMockQueue()
		scorer := &mockScorer{}
		updater := &mockUpdater{}
		w := worker.NewInMemoryWorker(q, scorer, updater, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When a feedback job arrives", func() {
			q.jobs <- worker.Job{EventID: "e1", Kind: model.JobFeedback, MentorID: "m1", MenteeID: "e1", Rating: 5, Comment: "great pairing"}
			convey.So(eventually(func() bool { return updater.savedCount() == 1 }), convey.ShouldBeTrue)

			convey.Convey("Then feedback is stored and the pair rescored", func() {
				updater.mu.Lock()
				defer updater.mu.Unlock()
				convey.So(updater.feedback[0].Rating, convey.ShouldEqual, 5)
				convey.So(updater.feedback[0].Comment, convey.ShouldEqual, "great pairing")
				convey.So(updater.saved[0].TotalScore, convey.ShouldEqual, 0.6)
			})
		})

		convey.Convey("When a status job arrives", func() {
			q.jobs <- worker.Job{EventID: "e2", Kind: model.JobStatus, MentorID: "m1", MenteeID: "e1", Status: model.StatusRejected}
			convey.So(eventually(func() bool { return updater.savedCount() == 1 }), convey.ShouldBeTrue)

			convey.Convey("Then the status is applied before rescoring", func() {
				updater.mu.Lock()
				defer updater.mu.Unlock()
				convey.So(updater.statuses, convey.ShouldResemble, []model.Status{model.StatusRejected})
			})
		})

		convey.Convey("When scoring fails", func() {
			scorer.mu.Lock()
			scorer.err = errors.New("profile missing")
			scorer.mu.Unlock()
			q.jobs <- worker.Job{EventID: "e3", Kind: model.JobFeedback, MentorID: "m1", MenteeID: "e1", Rating: 3}

			convey.Convey("Then nothing is saved", func() {
				convey.So(eventually(func() bool {
					scorer.mu.Lock()
					defer scorer.mu.Unlock()
					return len(scorer.calls) == 1
				}), convey.ShouldBeTrue)
				convey.So(updater.savedCount(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx := context.Background()

		q := newMockQueue()
		updater := &mockUpdater{}
		p := worker.NewPool(3, q, &mockScorer{}, updater)
		p.Start(ctx)

		convey.So(p.Size(), convey.ShouldEqual, 3)

		convey.Convey("When jobs are queued and the pool shuts down", func() {
			for i := 0; i < 5; i++ {
				q.jobs <- worker.Job{Kind: model.JobFeedback, MentorID: "m1", MenteeID: "e1", Rating: 4}
			}
			q.jobs <- worker.Job{Kind: "unknown", MentorID: "m1", MenteeID: "e1"}

			sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			err := p.Shutdown(sctx)

			convey.Convey("Then buffered jobs are drained before stopping", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(updater.savedCount(), convey.ShouldEqual, 5)
				convey.So(p.Processed(), convey.ShouldEqual, 5)
				convey.So(p.Failed(), convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given a pool without an updater", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		q := newMockQueue()
		p := worker.NewPool(1, q, &mockScorer{}, nil)
		p.Start(context.Background())

		q.jobs <- worker.Job{Kind: model.JobFeedback, MentorID: "m1", MenteeID: "e1", Rating: 4}
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		convey.So(p.Shutdown(sctx), convey.ShouldBeNil)
		convey.So(p.Failed(), convey.ShouldEqual, 1)
	})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
