// Package transcribe hands the recorded artifacts to the external
// transcription tool.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/audiolibrelab/aircheck/internal/config"
)

// Runner invokes the transcription tool exactly once per run. The tool is
// expected to tolerate an output directory with missing or partial artifacts.
type Runner struct {
	Command string
	Args    []string
	Delay   time.Duration
}

// New builds a runner from the run configuration.
func New(cfg *config.Config) *Runner {
	return &Runner{
		Command: cfg.Tools.Transcriber,
		Args:    cfg.Tools.TranscriberArgs,
		Delay:   cfg.TranscribeDelay(),
	}
}

// Run waits out the configured settle delay and then invokes the transcriber
// with the output directory and the original station list.
func (r *Runner) Run(ctx context.Context, outputDir, stationsFile string) error {
	if r.Delay > 0 {
		slog.Debug("Waiting before transcription handoff", "delay", r.Delay)
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	args := append(append([]string{}, r.Args...), "--dir", outputDir, "--stations", stationsFile)
	slog.Info("Starting transcription", "command", r.Command, "dir", outputDir)

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.WaitDelay = 10 * time.Second
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("transcription failed: %w\nOutput: %s", err, string(output))
	}

	slog.Info("Transcription finished")
	return nil
}
