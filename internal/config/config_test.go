package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsApply(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Capture.DurationSeconds != 300 {
		t.Errorf("expected default duration 300, got %d", cfg.Capture.DurationSeconds)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Capture.MinBytes != 65536 {
		t.Errorf("expected default min bytes 65536, got %d", cfg.Capture.MinBytes)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Errorf("default tools incorrect: %+v", cfg.Tools)
	}
	if !cfg.Transcribe.Enabled {
		t.Error("transcription should be enabled by default")
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircheck.yaml")
	content := `capture:
  duration_seconds: 60
  grace_seconds: 5
retry:
  max_attempts: 5
  backoff_seconds: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Capture.DurationSeconds != 60 {
		t.Errorf("expected duration 60 from file, got %d", cfg.Capture.DurationSeconds)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5 from file, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Capture.SampleRate != 16000 {
		t.Errorf("unset keys should keep defaults, got sample rate %d", cfg.Capture.SampleRate)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AIRCHECK_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("AIRCHECK_CAPTURE_MIN_BYTES", "1024")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Retry.MaxAttempts != 7 {
		t.Errorf("expected max attempts 7 from env, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Capture.MinBytes != 1024 {
		t.Errorf("expected min bytes 1024 from env, got %d", cfg.Capture.MinBytes)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero duration", func(c *Config) { c.Capture.DurationSeconds = 0 }},
		{"negative grace", func(c *Config) { c.Capture.GraceSeconds = -1 }},
		{"zero max attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"negative backoff", func(c *Config) { c.Retry.BackoffSeconds = -1 }},
		{"zero preflight timeout", func(c *Config) { c.Preflight.TimeoutSeconds = 0 }},
		{"missing output dir", func(c *Config) { c.Paths.OutputDirectory = "" }},
		{"missing stations file", func(c *Config) { c.Paths.StationsFile = "" }},
		{"missing ffmpeg", func(c *Config) { c.Tools.FFmpeg = "" }},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()
	cfg.Capture.DurationSeconds = 300
	cfg.Capture.GraceSeconds = 30
	cfg.Retry.BackoffSeconds = 10

	if cfg.CaptureDuration() != 5*time.Minute {
		t.Errorf("CaptureDuration incorrect: %v", cfg.CaptureDuration())
	}
	if cfg.AttemptTimeout() != 5*time.Minute+30*time.Second {
		t.Errorf("AttemptTimeout should be duration plus grace: %v", cfg.AttemptTimeout())
	}
	if cfg.Backoff() != 10*time.Second {
		t.Errorf("Backoff incorrect: %v", cfg.Backoff())
	}
}
