package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	prevCfgFile := cfgFile
	t.Cleanup(func() {
		cfgFile = prevCfgFile
		rootCmd.SetArgs(nil)
	})
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestConfigInit_WritesToExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircheck.yaml")

	if err := runCommand(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	for _, want := range []string{"capture:", "retry:", "tools:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("written config missing %q:\n%s", want, data)
		}
	}
}

func TestConfigInit_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircheck.yaml")
	if err := os.WriteFile(path, []byte("capture: {}\n"), 0644); err != nil {
		t.Fatalf("failed to seed config file: %v", err)
	}

	err := runCommand(t, "config", "init", "--config", path)
	if err == nil {
		t.Fatal("expected error when the config file already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}
}
