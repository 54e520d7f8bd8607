package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full recorder configuration. It is loaded once at startup
// and handed to the components explicitly; nothing mutates it afterwards.
type Config struct {
	Capture    CaptureConfig    `mapstructure:"capture" yaml:"capture"`
	Paths      PathsConfig      `mapstructure:"paths" yaml:"paths"`
	Retry      RetryConfig      `mapstructure:"retry" yaml:"retry"`
	Preflight  PreflightConfig  `mapstructure:"preflight" yaml:"preflight"`
	Tools      ToolsConfig      `mapstructure:"tools" yaml:"tools"`
	Transcribe TranscribeConfig `mapstructure:"transcribe" yaml:"transcribe"`
}

type CaptureConfig struct {
	DurationSeconds int   `mapstructure:"duration_seconds" yaml:"duration_seconds"`
	GraceSeconds    int   `mapstructure:"grace_seconds" yaml:"grace_seconds"`
	SampleRate      int   `mapstructure:"sample_rate" yaml:"sample_rate"`
	MinBytes        int64 `mapstructure:"min_bytes" yaml:"min_bytes"`
}

type PathsConfig struct {
	OutputDirectory string `mapstructure:"output_directory" yaml:"output_directory"`
	LogDirectory    string `mapstructure:"log_directory" yaml:"log_directory"`
	StationsFile    string `mapstructure:"stations_file" yaml:"stations_file"`
}

type RetryConfig struct {
	MaxAttempts    int `mapstructure:"max_attempts" yaml:"max_attempts"`
	BackoffSeconds int `mapstructure:"backoff_seconds" yaml:"backoff_seconds"`
}

type PreflightConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

type ToolsConfig struct {
	FFmpeg          string   `mapstructure:"ffmpeg" yaml:"ffmpeg"`
	FFprobe         string   `mapstructure:"ffprobe" yaml:"ffprobe"`
	Transcriber     string   `mapstructure:"transcriber" yaml:"transcriber"`
	TranscriberArgs []string `mapstructure:"transcriber_args" yaml:"transcriber_args"`
}

type TranscribeConfig struct {
	Enabled      bool `mapstructure:"enabled" yaml:"enabled"`
	DelaySeconds int  `mapstructure:"delay_seconds" yaml:"delay_seconds"`
}

// Default returns the built-in configuration used when no file or environment
// overrides are present.
func Default() Config {
	home := os.Getenv("HOME")
	return Config{
		Capture: CaptureConfig{
			DurationSeconds: 300,
			GraceSeconds:    30,
			SampleRate:      16000,
			MinBytes:        65536,
		},
		Paths: PathsConfig{
			OutputDirectory: filepath.Join(home, "Audio", "Aircheck"),
			LogDirectory:    filepath.Join(home, "Audio", "Aircheck", "logs"),
			StationsFile:    filepath.Join(home, ".config", "aircheck-stations.csv"),
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BackoffSeconds: 10,
		},
		Preflight: PreflightConfig{
			TimeoutSeconds: 15,
		},
		Tools: ToolsConfig{
			FFmpeg:      "ffmpeg",
			FFprobe:     "ffprobe",
			Transcriber: "transcribe",
		},
		Transcribe: TranscribeConfig{
			Enabled:      true,
			DelaySeconds: 5,
		},
	}
}

// Load reads configuration from the given YAML file (optional), the
// AIRCHECK_* environment, and the built-in defaults, in that precedence order.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AIRCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("capture.duration_seconds", def.Capture.DurationSeconds)
	v.SetDefault("capture.grace_seconds", def.Capture.GraceSeconds)
	v.SetDefault("capture.sample_rate", def.Capture.SampleRate)
	v.SetDefault("capture.min_bytes", def.Capture.MinBytes)
	v.SetDefault("paths.output_directory", def.Paths.OutputDirectory)
	v.SetDefault("paths.log_directory", def.Paths.LogDirectory)
	v.SetDefault("paths.stations_file", def.Paths.StationsFile)
	v.SetDefault("retry.max_attempts", def.Retry.MaxAttempts)
	v.SetDefault("retry.backoff_seconds", def.Retry.BackoffSeconds)
	v.SetDefault("preflight.timeout_seconds", def.Preflight.TimeoutSeconds)
	v.SetDefault("tools.ffmpeg", def.Tools.FFmpeg)
	v.SetDefault("tools.ffprobe", def.Tools.FFprobe)
	v.SetDefault("tools.transcriber", def.Tools.Transcriber)
	v.SetDefault("tools.transcriber_args", def.Tools.TranscriberArgs)
	v.SetDefault("transcribe.enabled", def.Transcribe.Enabled)
	v.SetDefault("transcribe.delay_seconds", def.Transcribe.DelaySeconds)
}

// Validate checks the configuration for values the recorder cannot run with.
func (c *Config) Validate() error {
	if c.Capture.DurationSeconds <= 0 {
		return fmt.Errorf("capture.duration_seconds must be positive, got %d", c.Capture.DurationSeconds)
	}
	if c.Capture.GraceSeconds < 0 {
		return fmt.Errorf("capture.grace_seconds must not be negative, got %d", c.Capture.GraceSeconds)
	}
	if c.Capture.SampleRate <= 0 {
		return fmt.Errorf("capture.sample_rate must be positive, got %d", c.Capture.SampleRate)
	}
	if c.Capture.MinBytes < 0 {
		return fmt.Errorf("capture.min_bytes must not be negative, got %d", c.Capture.MinBytes)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BackoffSeconds < 0 {
		return fmt.Errorf("retry.backoff_seconds must not be negative, got %d", c.Retry.BackoffSeconds)
	}
	if c.Preflight.TimeoutSeconds <= 0 {
		return fmt.Errorf("preflight.timeout_seconds must be positive, got %d", c.Preflight.TimeoutSeconds)
	}
	if c.Paths.OutputDirectory == "" {
		return fmt.Errorf("paths.output_directory is required")
	}
	if c.Paths.LogDirectory == "" {
		return fmt.Errorf("paths.log_directory is required")
	}
	if c.Paths.StationsFile == "" {
		return fmt.Errorf("paths.stations_file is required")
	}
	if c.Tools.FFmpeg == "" || c.Tools.FFprobe == "" {
		return fmt.Errorf("tools.ffmpeg and tools.ffprobe are required")
	}
	return nil
}

// CaptureDuration is the nominal length of one capture attempt.
func (c *Config) CaptureDuration() time.Duration {
	return time.Duration(c.Capture.DurationSeconds) * time.Second
}

// GracePeriod is the extra wall-clock allowance beyond the nominal duration
// before an attempt is killed.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Capture.GraceSeconds) * time.Second
}

// AttemptTimeout is the hard per-attempt deadline.
func (c *Config) AttemptTimeout() time.Duration {
	return c.CaptureDuration() + c.GracePeriod()
}

// Backoff is the fixed pause between retries of the same station.
func (c *Config) Backoff() time.Duration {
	return time.Duration(c.Retry.BackoffSeconds) * time.Second
}

// PreflightTimeout bounds both preflight probes together.
func (c *Config) PreflightTimeout() time.Duration {
	return time.Duration(c.Preflight.TimeoutSeconds) * time.Second
}

// TranscribeDelay is the pause between the end of capture and the
// transcription handoff.
func (c *Config) TranscribeDelay() time.Duration {
	return time.Duration(c.Transcribe.DelaySeconds) * time.Second
}
