// Package capture runs bounded ffmpeg capture attempts and drives the
// per-station retry state machine around them.
package capture

import (
	"time"

	"github.com/audiolibrelab/aircheck/internal/station"
)

// OutcomeKind classifies a single capture attempt.
type OutcomeKind int

const (
	// OutcomeOK means the capture tool exited zero and the artifact passed
	// the size check.
	OutcomeOK OutcomeKind = iota
	// OutcomeProcessFailure means the capture tool exited non-zero or was
	// killed at the attempt deadline.
	OutcomeProcessFailure
	// OutcomeTooSmall means the capture tool exited zero but the artifact is
	// missing or below the configured minimum size.
	OutcomeTooSmall
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeProcessFailure:
		return "process_failure"
	case OutcomeTooSmall:
		return "artifact_too_small"
	default:
		return "unknown"
	}
}

// Status is the terminal state of a station after its controller finishes.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusSkipped   Status = "SKIPPED"
)

// AttemptRecord describes one finished capture attempt. Records are never
// mutated once created.
type AttemptRecord struct {
	Station string
	Attempt int
	Kind    OutcomeKind
	Bytes   int64
	Elapsed time.Duration
}

// StationOutcome is the terminal result for one station.
type StationOutcome struct {
	Station      station.Spec
	Status       Status
	Attempts     []AttemptRecord
	SkipReason   string
	ArtifactPath string
}

// AttemptsMade is the number of capture attempts that actually ran.
func (o StationOutcome) AttemptsMade() int {
	return len(o.Attempts)
}

// Bytes is the artifact size observed on the final attempt, if any.
func (o StationOutcome) Bytes() int64 {
	if len(o.Attempts) == 0 {
		return 0
	}
	return o.Attempts[len(o.Attempts)-1].Bytes
}
