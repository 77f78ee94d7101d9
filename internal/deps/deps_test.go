package deps

import (
	"context"
	"testing"
)

func TestCheckReportsMissingBinary(t *testing.T) {
	statuses := Check(context.Background(), []Requirement{
		{Name: "Nope", Command: "definitely-not-a-real-binary-1234"},
	})
	if len(statuses) != 1 {
		t.Fatalf("statuses = %v", statuses)
	}
	if statuses[0].Available {
		t.Error("missing binary reported as available")
	}
	if statuses[0].Detail == "" {
		t.Error("missing binary must carry a detail message")
	}
}

func TestCheckUnconfiguredCommand(t *testing.T) {
	statuses := Check(context.Background(), []Requirement{{Name: "Blank"}})
	if statuses[0].Available || statuses[0].Detail != "command not configured" {
		t.Errorf("status = %+v", statuses[0])
	}
}

func TestAllRequired(t *testing.T) {
	ok := []Status{
		{Name: "a", Available: true},
		{Name: "b", Optional: true, Available: false},
	}
	if !AllRequired(ok) {
		t.Error("missing optional dependency must not fail the check")
	}

	bad := []Status{{Name: "a", Available: false}}
	if AllRequired(bad) {
		t.Error("missing required dependency must fail the check")
	}
}

func TestDefaultCoversEngineTooling(t *testing.T) {
	reqs := Default("")
	names := make(map[string]Requirement, len(reqs))
	for _, req := range reqs {
		names[req.Name] = req
	}
	if _, ok := names["FFmpeg"]; !ok {
		t.Error("ffmpeg requirement missing")
	}
	py, ok := names["Python / faster-whisper"]
	if !ok {
		t.Fatal("python requirement missing")
	}
	if py.Command != "python3" || py.PythonModule != "faster_whisper" {
		t.Errorf("python requirement = %+v", py)
	}
}
