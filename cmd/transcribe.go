package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/audiolibrelab/aircheck/internal/deps"
	"github.com/audiolibrelab/aircheck/internal/transcribe"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Run the transcription handoff against an existing output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := deps.Verify([]deps.Requirement{
			{Name: "transcriber", Command: cfg.Tools.Transcriber},
		}); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := transcribe.New(cfg)
		runner.Delay = 0
		return runner.Run(ctx, cfg.Paths.OutputDirectory, cfg.Paths.StationsFile)
	},
}
