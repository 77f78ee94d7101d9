package main

import "testing"

func TestEngineUnloadWithoutActiveRun(t *testing.T) {
	state := t.TempDir()

	out, err := runCLI(t, state, "engine", "unload")
	if err != nil {
		t.Fatalf("engine unload: %v", err)
	}
	requireContains(t, out, "No engine is resident")
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	state := t.TempDir()

	_, err := runCLI(t, state, "test-notify")
	if err == nil {
		t.Fatal("expected error without a configured topic")
	}
	requireContains(t, err.Error(), "no notify topic configured")
}
