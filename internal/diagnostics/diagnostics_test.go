package diagnostics

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/magnusua/WhisperFastGUI/internal/deps"
)

func TestStateDirCheck(t *testing.T) {
	dir := t.TempDir()
	check := stateDirCheck(dir)
	if !check.Passed {
		t.Errorf("writable temp dir failed: %+v", check)
	}

	missing := stateDirCheck(filepath.Join(dir, "missing"))
	if missing.Passed {
		t.Errorf("missing dir passed: %+v", missing)
	}
}

func TestHealthy(t *testing.T) {
	report := Report{
		Checks: []Check{{Name: "ok", Passed: true}},
		Tools:  []deps.Status{{Name: "ffmpeg", Available: true}},
	}
	if !report.Healthy() {
		t.Error("all-green report must be healthy")
	}

	report.Checks = append(report.Checks, Check{Name: "bad"})
	if report.Healthy() {
		t.Error("failed check must mark the report unhealthy")
	}
}

func TestRunProducesAllSections(t *testing.T) {
	report := Run(context.Background(), t.TempDir(), "")
	if len(report.Checks) != 5 {
		t.Fatalf("checks = %d, want 5", len(report.Checks))
	}
	if len(report.Tools) == 0 {
		t.Fatal("tool statuses missing")
	}
}
