package main

import "testing"

func TestRunWithEmptyQueue(t *testing.T) {
	state := t.TempDir()

	out, err := runCLI(t, state, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Done: 0 file(s) transcribed")
}

func TestRunRejectsConflictingModes(t *testing.T) {
	state := t.TempDir()

	_, err := runCLI(t, state, "run", "--all", "--unprocessed")
	if err == nil {
		t.Fatal("expected mutually exclusive flag error")
	}
	requireContains(t, err.Error(), "mutually exclusive")
}

func TestRunSingleIndexOutOfRange(t *testing.T) {
	state := t.TempDir()

	_, err := runCLI(t, state, "run", "--index", "4")
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
}
