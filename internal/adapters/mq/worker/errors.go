package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrNoScorer   = errors.New("worker has no scorer")
	ErrNoUpdater  = errors.New("worker has no updater")
	ErrUnknownJob = errors.New("unknown job kind")
)
