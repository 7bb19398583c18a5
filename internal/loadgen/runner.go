package loadgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/pkg/logger"
)

// Run defaults.
const (
	DefaultRequests    = 1000
	DefaultTimeout     = 30 * time.Second
	jobChannelFactor   = 2
	maxReportedFailure = 5
)

// ErrNoSeeds is returned when there is no profile to request suggestions for.
var ErrNoSeeds = errors.New("loadgen: no seed profiles")

// Run checks the service is up, then sends cfg.Requests suggestion requests
// spread round-robin over seeds using cfg.Concurrency workers. Every
// response is verified; any violation makes Run return ErrVerification
// along with the stats.
func Run(ctx context.Context, cfg Config, seeds []model.Profile) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if len(seeds) == 0 {
		return stats, ErrNoSeeds
	}
	if cfg.Requests <= 0 {
		cfg.Requests = DefaultRequests
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	log := logger.Get().Named("loadgen")
	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("concurrency", cfg.Concurrency),
		logger.Int("limit", cfg.Limit),
		logger.Int("seeds", len(seeds)))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	var (
		sent, ok, failed, violations, suggestions int64
		reported                                  int64
	)
	jobs := make(chan int, cfg.Concurrency*jobChannelFactor)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				seed := seeds[i%len(seeds)]
				atomic.AddInt64(&sent, 1)

				resp, err := client.suggestions(ctx, seed, cfg.Limit)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "request failed", logger.String("user_id", seed.ID), logger.Error(err))
					}
					continue
				}
				if err := verifySuggestions(seed, resp, cfg.Limit); err != nil {
					atomic.AddInt64(&violations, 1)
					if atomic.AddInt64(&reported, 1) <= maxReportedFailure {
						log.Error(ctx, "response violates ranking contract",
							logger.String("user_id", seed.ID), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&ok, 1)
				atomic.AddInt64(&suggestions, int64(len(resp.Suggestions)))
			}
		}()
	}

feed:
	for i := 0; i < cfg.Requests; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Requests = int(atomic.LoadInt64(&sent))
	stats.Successful = int(atomic.LoadInt64(&ok))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Violations = int(atomic.LoadInt64(&violations))
	stats.Suggestions = int(atomic.LoadInt64(&suggestions))
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("load run interrupted: %w", err)
	}
	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d of %d responses", ErrVerification, stats.Violations, stats.Requests)
	}
	return stats, nil
}

// checkServiceHealth verifies the service answers on /healthz.
func checkServiceHealth(ctx context.Context, client *httpClient) error {
	status, _, err := client.get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("requests", stats.Requests),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("suggestions", stats.Suggestions),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", stats.SuccessRate()),
		logger.Float64("requestsPerSecond", perSecond))
}
