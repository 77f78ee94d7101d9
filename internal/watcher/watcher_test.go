package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	times []time.Time
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	r.times = append(r.times, time.Now())
	return nil
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *recorder) timestamps() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.times...)
}

func (r *recorder) waitFor(t *testing.T, count int) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= count {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d handled files, got %v", count, r.snapshot())
	return nil
}

func fastOptions() Options {
	return Options{PollInterval: 20 * time.Millisecond, StableDelay: 10 * time.Millisecond}
}

func TestIgnoresPreexistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w := New(dir, rec.handle, nil, fastOptions())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(150 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("preexisting file handled: %v", got)
	}
}

func TestHandlesNewArrival(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New(dir, rec.handle, nil, fastOptions())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	arrived := filepath.Join(dir, "new.mp3")
	if err := os.WriteFile(arrived, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := rec.waitFor(t, 1)
	if got[0] != arrived {
		t.Fatalf("handled %q, want %q", got[0], arrived)
	}
}

func TestSkipsUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New(dir, rec.handle, nil, fastOptions())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := rec.waitFor(t, 1)
	if filepath.Base(got[0]) != "clip.mp4" {
		t.Fatalf("handled %v, want only clip.mp4", got)
	}
}

func TestHandlesEachArrivalOnce(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New(dir, rec.handle, nil, fastOptions())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for _, name := range []string{"a.mp3", "b.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := rec.waitFor(t, 2)
	time.Sleep(100 * time.Millisecond)
	if final := rec.snapshot(); len(final) != len(got) && len(final) != 2 {
		t.Fatalf("files handled more than once: %v", final)
	}
}

func TestSurfacesOneArrivalPerCycle(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	opts := Options{PollInterval: 60 * time.Millisecond, StableDelay: 5 * time.Millisecond}
	w := New(dir, rec.handle, nil, opts)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Two simultaneous arrivals must be handed over on distinct cycles.
	for _, name := range []string{"a.mp3", "b.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := rec.waitFor(t, 2)
	if filepath.Base(got[0]) != "a.mp3" || filepath.Base(got[1]) != "b.mp3" {
		t.Fatalf("handled %v, want sorted order", got)
	}

	times := rec.timestamps()
	if gap := times[1].Sub(times[0]); gap < opts.PollInterval/2 {
		t.Fatalf("second hand-off after %v, want at least a poll cycle apart", gap)
	}
}

func TestStartRejectsMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), (&recorder{}).handle, nil, fastOptions())
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("Start on a missing directory must fail")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, (&recorder{}).handle, nil, fastOptions())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	w.Stop()
}
