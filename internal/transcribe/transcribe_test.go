package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRun_InvokesTranscriberWithDirAndStations(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n"
	tool := filepath.Join(dir, "fake-transcriber")
	if err := os.WriteFile(tool, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write stub transcriber: %v", err)
	}

	runner := &Runner{Command: tool, Args: []string{"--model", "small"}}
	if err := runner.Run(context.Background(), "/tmp/out", "/tmp/stations.csv"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("stub was not invoked: %v", err)
	}
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{"--model", "small", "--dir", "/tmp/out", "--stations", "/tmp/stations.csv"}
	if len(got) != len(want) {
		t.Fatalf("expected args %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRun_ReportsTranscriberFailure(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "fake-transcriber")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\necho 'model not found' >&2\nexit 2\n"), 0755); err != nil {
		t.Fatalf("failed to write stub transcriber: %v", err)
	}

	runner := &Runner{Command: tool}
	err := runner.Run(context.Background(), "/tmp/out", "/tmp/stations.csv")
	if err == nil {
		t.Fatal("expected error from failing transcriber")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error should carry tool output: %v", err)
	}
}

func TestRun_DelayRespectsCancellation(t *testing.T) {
	runner := &Runner{Command: "true", Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := runner.Run(ctx, "/tmp/out", "/tmp/stations.csv")
	if err == nil {
		t.Fatal("expected context error when cancelled during the delay")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Run did not return promptly after cancellation")
	}
}
