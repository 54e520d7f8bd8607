package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/audiolibrelab/aircheck/internal/capture"
	"github.com/audiolibrelab/aircheck/internal/deps"
	"github.com/audiolibrelab/aircheck/internal/station"
	"github.com/audiolibrelab/aircheck/internal/supervisor"
	"github.com/audiolibrelab/aircheck/internal/transcribe"
)

var (
	skipTranscribe bool
	stationsFlag   string
	outputFlag     string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record all configured stations concurrently",
	Long: `Record every station from the stations file concurrently for the configured
duration, then hand the output directory to the transcription tool.

Individual station failures never abort the run; they are reported in the
summary. Press Ctrl+C to stop all captures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if stationsFlag != "" {
			cfg.Paths.StationsFile = stationsFlag
		}
		if outputFlag != "" {
			cfg.Paths.OutputDirectory = outputFlag
		}

		requirements := []deps.Requirement{
			{Name: "ffmpeg", Command: cfg.Tools.FFmpeg},
			{Name: "ffprobe", Command: cfg.Tools.FFprobe},
			{Name: "transcriber", Command: cfg.Tools.Transcriber, Optional: skipTranscribe || !cfg.Transcribe.Enabled},
		}
		if err := deps.Verify(requirements); err != nil {
			return err
		}

		stations, err := station.Load(cfg.Paths.StationsFile)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Paths.OutputDirectory, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.MkdirAll(cfg.Paths.LogDirectory, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		sup := supervisor.New(cfg)

		// Duplicate all run logging into the combined run log.
		runLogPath := filepath.Join(cfg.Paths.LogDirectory, "run.log")
		runLog, err := os.OpenFile(runLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			slog.Warn("Could not open combined run log", "path", runLogPath, "error", err)
		} else {
			defer runLog.Close()
			setupLogging(verboseLevel, runLog)
		}

		// One stop signal cancels every in-flight capture subprocess.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary := sup.Run(ctx, stations)

		executor := capture.NewExecutor(cfg)
		reporter := supervisor.NewReporter(os.Stdout, func(outcome capture.StationOutcome) string {
			return executor.LogPath(outcome.Station)
		})
		reporter.Report(summary)

		if skipTranscribe || !cfg.Transcribe.Enabled {
			slog.Info("Transcription handoff skipped")
			return nil
		}
		if ctx.Err() != nil {
			slog.Warn("Run interrupted, skipping transcription handoff")
			return nil
		}

		// The handoff runs even if every station failed or was skipped; the
		// transcriber tolerates missing artifacts.
		return transcribe.New(cfg).Run(ctx, cfg.Paths.OutputDirectory, cfg.Paths.StationsFile)
	},
}

func init() {
	recordCmd.Flags().BoolVar(&skipTranscribe, "skip-transcribe", false, "do not invoke the transcription tool after capture")
	recordCmd.Flags().StringVar(&stationsFlag, "stations", "", "stations file (overrides config)")
	recordCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output directory (overrides config)")
}
