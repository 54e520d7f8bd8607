package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/audiolibrelab/aircheck/internal/config"
)

var (
	cfg          *config.Config
	cfgFile      string
	verboseLevel int
)

var rootCmd = &cobra.Command{
	Use:   "aircheck",
	Short: "Concurrent radio stream recorder",
	Long: `Aircheck records a list of network radio streams concurrently with ffmpeg,
validates each source before committing a capture window, retries transient
failures with a bounded budget, and hands the recorded audio to an external
transcription tool.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verboseLevel, nil)

		// A .env next to the binary may carry AIRCHECK_* overrides.
		if err := godotenv.Load(); err == nil {
			slog.Debug("Loaded environment overrides from .env")
		}

		// config init writes a fresh file, so don't require one to load.
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			if _, err := os.Stat(os.ExpandEnv("$HOME/.config/aircheck.yaml")); err == nil {
				cfgFile = os.ExpandEnv("$HOME/.config/aircheck.yaml")
			}
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/aircheck.yaml)")
	rootCmd.PersistentFlags().IntVarP(&verboseLevel, "verbose", "v", 0, "verbose level: 0=info, 1=debug")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(transcribeCmd)
}

// setupLogging configures slog for the terminal, duplicated to the combined
// run log once the record command opens it.
func setupLogging(level int, runLog io.Writer) {
	var slogLevel slog.Level
	switch {
	case level <= 0:
		slogLevel = slog.LevelInfo
	default:
		slogLevel = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	if runLog != nil {
		out = io.MultiWriter(os.Stderr, runLog)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
