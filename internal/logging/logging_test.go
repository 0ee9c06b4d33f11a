package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := Setup("testcomp", "debug", dir)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	logger.Info().Msg("hello")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log file, got %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty log file after logging")
	}
}

func TestSetupWithoutLogDir(t *testing.T) {
	if _, err := Setup("testcomp", "info", ""); err != nil {
		t.Fatalf("Setup without log dir: %v", err)
	}
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := Setup("testcomp", "not-a-level", "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if logger.GetLevel().String() != "info" {
		t.Fatalf("expected fallback to info level, got %s", logger.GetLevel())
	}
}
