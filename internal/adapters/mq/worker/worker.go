// Package worker applies feedback and status events and rescores the
// affected pair.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/pkg/logger"
	"github.com/okian/mentormatch/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.RescoreJob

// Updater persists event mutations and rescored results.
type Updater interface {
	AddFeedback(ctx context.Context, f model.FeedbackRecord) error
	SetStatus(ctx context.Context, mentorID, menteeID string, status model.Status) (model.MatchRecord, error)
	SaveResult(ctx context.Context, res model.MatchResult) (model.MatchRecord, error)
}

// Scorer rescores a pair against current history.
type Scorer interface {
	ScorePair(ctx context.Context, mentorID, menteeID string) (model.MatchResult, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

type stats struct {
	processed atomic.Int64
	failed    atomic.Int64
	active    atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	scorer  Scorer
	updater Updater
	name    string
	stats   *stats

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(queue Queue, scorer Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		scorer:   scorer,
		updater:  updater,
		name:     "worker",
		stats:    &stats{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "rescore failed",
					logger.String("event_id", j.EventID),
					logger.String("mentor_id", j.MentorID),
					logger.String("mentee_id", j.MenteeID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for its loop to return.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process applies the job's mutation, then rescores and saves the pair.
func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.stats.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.stats.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	err := w.apply(ctx, j)
	outcome := "ok"
	if err != nil {
		outcome = "failed"
		w.stats.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", string(j.Kind))
	} else {
		w.stats.processed.Add(1)
	}
	metrics.RecordRescore(outcome, float64(time.Since(start).Microseconds())/1000)
	return err
}

func (w *InMemoryWorker) apply(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam
	if w.updater == nil {
		return ErrNoUpdater
	}
	if w.scorer == nil {
		return ErrNoScorer
	}

	switch j.Kind {
	case model.JobFeedback:
		err := w.updater.AddFeedback(ctx, model.FeedbackRecord{
			MentorID:  j.MentorID,
			MenteeID:  j.MenteeID,
			Rating:    j.Rating,
			Comment:   j.Comment,
			CreatedAt: j.TS,
		})
		if err != nil {
			return fmt.Errorf("add feedback: %w", err)
		}
	case model.JobStatus:
		if _, err := w.updater.SetStatus(ctx, j.MentorID, j.MenteeID, j.Status); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, j.Kind)
	}

	res, err := w.scorer.ScorePair(ctx, j.MentorID, j.MenteeID)
	if err != nil {
		return fmt.Errorf("score pair: %w", err)
	}
	if _, err := w.updater.SaveResult(ctx, res); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	stats   *stats
	logger  logger.Logger
}

// NewPool creates a worker pool. A count below 1 uses 2x the CPU count.
func NewPool(workerCount int, queue Queue, scorer Scorer, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		stats:   &stats{},
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(queue, scorer, updater,
			WithName("worker-"+strconv.Itoa(i)),
			withStats(p.stats),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs applied and rescored.
func (p *Pool) Processed() int64 { return p.stats.processed.Load() }

// Failed returns the number of jobs that returned an error.
func (p *Pool) Failed() int64 { return p.stats.failed.Load() }

// Shutdown closes the queue when it supports it, lets workers drain what
// is buffered, and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-waitCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", waitCtx.Err())
		}
	}
	return nil
}
