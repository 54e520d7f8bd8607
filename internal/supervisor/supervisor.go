// Package supervisor fans out one capture controller per station, waits for
// every station to reach a terminal status, and aggregates the results.
package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/audiolibrelab/aircheck/internal/capture"
	"github.com/audiolibrelab/aircheck/internal/config"
	"github.com/audiolibrelab/aircheck/internal/preflight"
	"github.com/audiolibrelab/aircheck/internal/station"
)

// Summary aggregates the terminal outcomes of one run. Outcomes keep station
// file order regardless of which worker finished first.
type Summary struct {
	RunID    string
	Started  time.Time
	Elapsed  time.Duration
	Outcomes []capture.StationOutcome
}

// FailureCount counts stations that exhausted their retry budget. Skipped
// stations are reported separately and do not count as failures.
func (s Summary) FailureCount() int {
	return s.countStatus(capture.StatusFailed)
}

// SkippedCount counts stations rejected by preflight.
func (s Summary) SkippedCount() int {
	return s.countStatus(capture.StatusSkipped)
}

// SucceededCount counts stations with a validated artifact.
func (s Summary) SucceededCount() int {
	return s.countStatus(capture.StatusSucceeded)
}

func (s Summary) countStatus(status capture.Status) int {
	count := 0
	for _, outcome := range s.Outcomes {
		if outcome.Status == status {
			count++
		}
	}
	return count
}

// Worker takes one station to a terminal outcome.
type Worker func(ctx context.Context, spec station.Spec) capture.StationOutcome

// Supervisor runs every station concurrently and collects the outcomes.
type Supervisor struct {
	worker Worker
}

// New builds a supervisor whose workers run the full preflight, capture and
// retry chain from the configuration.
func New(cfg *config.Config) *Supervisor {
	checker := preflight.New(cfg.Tools.FFprobe, cfg.PreflightTimeout())
	executor := capture.NewExecutor(cfg)
	maxAttempts := cfg.Retry.MaxAttempts
	backoff := cfg.Backoff()

	return &Supervisor{
		worker: func(ctx context.Context, spec station.Spec) capture.StationOutcome {
			return capture.NewController(checker, executor, maxAttempts, backoff).Run(ctx, spec)
		},
	}
}

// NewWithWorker builds a supervisor around a custom worker.
func NewWithWorker(worker Worker) *Supervisor {
	return &Supervisor{worker: worker}
}

// Run records all stations concurrently and blocks until every one of them
// reaches a terminal status. Per-station failures never abort the run; the
// only way to stop early is cancelling the context, which propagates to every
// in-flight capture process.
func (s *Supervisor) Run(ctx context.Context, stations []station.Spec) Summary {
	summary := Summary{
		RunID:    uuid.NewString(),
		Started:  time.Now(),
		Outcomes: make([]capture.StationOutcome, len(stations)),
	}

	slog.Info("Recording run started", "run_id", summary.RunID, "stations", len(stations))

	var wg sync.WaitGroup
	for i, spec := range stations {
		wg.Add(1)
		go func(i int, spec station.Spec) {
			defer wg.Done()
			summary.Outcomes[i] = s.worker(ctx, spec)
		}(i, spec)
	}
	wg.Wait()

	summary.Elapsed = time.Since(summary.Started)
	slog.Info("Recording run finished",
		"run_id", summary.RunID,
		"elapsed", summary.Elapsed,
		"succeeded", summary.SucceededCount(),
		"failed", summary.FailureCount(),
		"skipped", summary.SkippedCount(),
	)

	return summary
}
