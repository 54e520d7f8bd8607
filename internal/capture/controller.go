package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/audiolibrelab/aircheck/internal/preflight"
	"github.com/audiolibrelab/aircheck/internal/station"
)

// Preflighter validates a station before any capture attempt is made.
type Preflighter interface {
	Check(ctx context.Context, spec station.Spec) preflight.Result
}

// AttemptRunner runs one bounded capture attempt.
type AttemptRunner interface {
	Attempt(ctx context.Context, spec station.Spec, attempt int) AttemptRecord
	OutputPath(spec station.Spec) string
}

// Controller drives one station from preflight through bounded retries to a
// terminal status. Attempts for a station are strictly sequential; a
// preflight rejection skips the station without consuming any attempt.
type Controller struct {
	Preflight   Preflighter
	Runner      AttemptRunner
	MaxAttempts int
	Backoff     time.Duration

	// sleep pauses between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewController wires a controller from its collaborators.
func NewController(pf Preflighter, runner AttemptRunner, maxAttempts int, backoff time.Duration) *Controller {
	return &Controller{
		Preflight:   pf,
		Runner:      runner,
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		sleep:       waitBackoff,
	}
}

// Run takes the station to exactly one terminal status.
func (c *Controller) Run(ctx context.Context, spec station.Spec) StationOutcome {
	if res := c.Preflight.Check(ctx, spec); !res.OK {
		slog.Warn("Station skipped by preflight", "station", spec.Name, "reason", res.Reason)
		return StationOutcome{Station: spec, Status: StatusSkipped, SkipReason: res.Reason}
	}

	outcome := StationOutcome{Station: spec}
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		record := c.Runner.Attempt(ctx, spec, attempt)
		outcome.Attempts = append(outcome.Attempts, record)

		if record.Kind == OutcomeOK {
			outcome.Status = StatusSucceeded
			outcome.ArtifactPath = c.Runner.OutputPath(spec)
			slog.Info("Station captured", "station", spec.Name, "attempt", attempt, "bytes", record.Bytes, "elapsed", record.Elapsed)
			return outcome
		}

		slog.Warn("Capture attempt failed", "station", spec.Name, "attempt", attempt, "outcome", record.Kind.String(), "bytes", record.Bytes)

		if attempt < c.MaxAttempts {
			if !c.sleep(ctx, c.Backoff) {
				slog.Debug("Retry backoff interrupted", "station", spec.Name)
				break
			}
		}
	}

	outcome.Status = StatusFailed
	return outcome
}

// waitBackoff sleeps for the backoff period unless the run is cancelled
// first. Returns false when the controller should stop retrying.
func waitBackoff(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
