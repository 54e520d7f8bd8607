package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/audiolibrelab/aircheck/internal/config"
	"github.com/audiolibrelab/aircheck/internal/station"
)

// Executor runs one bounded capture attempt by spawning the capture tool.
// Each attempt gets a hard deadline of duration plus grace; on expiry the
// process is killed, not asked to stop.
type Executor struct {
	FFmpeg     string
	Duration   time.Duration
	Grace      time.Duration
	SampleRate int
	MinBytes   int64
	OutputDir  string
	LogDir     string
}

// NewExecutor builds an executor from the run configuration.
func NewExecutor(cfg *config.Config) *Executor {
	return &Executor{
		FFmpeg:     cfg.Tools.FFmpeg,
		Duration:   cfg.CaptureDuration(),
		Grace:      cfg.GracePeriod(),
		SampleRate: cfg.Capture.SampleRate,
		MinBytes:   cfg.Capture.MinBytes,
		OutputDir:  cfg.Paths.OutputDirectory,
		LogDir:     cfg.Paths.LogDirectory,
	}
}

// OutputPath is where the station's artifact is written.
func (e *Executor) OutputPath(spec station.Spec) string {
	return filepath.Join(e.OutputDir, spec.Name+".wav")
}

// LogPath is the station's capture log, appended across attempts.
func (e *Executor) LogPath(spec station.Spec) string {
	return filepath.Join(e.LogDir, spec.Name+".log")
}

// Attempt runs one capture attempt and reports its outcome. The tool's
// stderr is appended to the station log with a per-attempt header.
func (e *Executor) Attempt(ctx context.Context, spec station.Spec, attempt int) AttemptRecord {
	start := time.Now()
	record := AttemptRecord{Station: spec.Name, Attempt: attempt}

	outputPath := e.OutputPath(spec)
	attemptCtx, cancel := context.WithTimeout(ctx, e.Duration+e.Grace)
	defer cancel()

	cmd := exec.CommandContext(attemptCtx, e.FFmpeg, e.buildArgs(spec, outputPath)...)
	cmd.WaitDelay = 5 * time.Second
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	logFile, err := os.OpenFile(e.LogPath(spec), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		slog.Warn("Could not open station capture log", "station", spec.Name, "error", err)
	} else {
		defer logFile.Close()
		fmt.Fprintf(logFile, "--- attempt %d at %s ---\n", attempt, start.Format(time.RFC3339))
		cmd.Stderr = logFile
	}

	slog.Debug("Starting capture attempt", "station", spec.Name, "attempt", attempt, "command", strings.Join(cmd.Args, " "))

	runErr := cmd.Run()
	record.Elapsed = time.Since(start)

	if runErr != nil {
		record.Kind = OutcomeProcessFailure
		if logFile != nil {
			fmt.Fprintf(logFile, "--- attempt %d ended: %v ---\n", attempt, runErr)
		}
		return record
	}

	size, valid := ValidateArtifact(outputPath, e.MinBytes)
	record.Bytes = size
	if !valid {
		record.Kind = OutcomeTooSmall
		if logFile != nil {
			fmt.Fprintf(logFile, "--- attempt %d ended: artifact too small (%d bytes, need %d) ---\n", attempt, size, e.MinBytes)
		}
		return record
	}

	record.Kind = OutcomeOK
	return record
}

// buildArgs assembles the capture command for one station: mono PCM at the
// configured sample rate, with stream reconnection enabled for transient
// network errors and HTTP 4xx/5xx responses.
func (e *Executor) buildArgs(spec station.Spec, outputPath string) []string {
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "warning"}

	if spec.UserAgent != "" {
		args = append(args, "-user_agent", spec.UserAgent)
	}
	if spec.Referer != "" {
		args = append(args, "-headers", "Referer: "+spec.Referer+"\r\n")
	}

	args = append(args,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_on_network_error", "1",
		"-reconnect_on_http_error", "4xx,5xx",
		"-reconnect_delay_max", "10",
	)

	args = append(args,
		"-i", spec.URL,
		"-t", strconv.FormatFloat(e.Duration.Seconds(), 'f', -1, 64),
		"-ac", "1",
		"-ar", strconv.Itoa(e.SampleRate),
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	)

	return args
}
