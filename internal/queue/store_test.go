package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/magnusua/WhisperFastGUI/internal/timecode"
)

type fixedProber struct {
	seconds float64
}

func (p fixedProber) Duration(context.Context, string) float64 { return p.seconds }

func writeMedia(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestStore(t *testing.T, seconds float64) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "request_queue.json"), fixedProber{seconds}, nil)
	return store, dir
}

func TestAddFilesDefaultsAndOrder(t *testing.T) {
	store, dir := newTestStore(t, 90.5)
	first := writeMedia(t, dir, "one.mp3")
	second := writeMedia(t, dir, "two.mkv")

	result := store.AddFiles(context.Background(), []string{first, second})
	if result.Added != 2 || result.Duplicates != 0 || result.Invalid != 0 {
		t.Fatalf("AddFiles result = %+v", result)
	}

	jobs := store.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d", len(jobs))
	}
	if jobs[0].Path != first || jobs[1].Path != second {
		t.Fatalf("input order not preserved: %v", jobs)
	}
	if jobs[0].Start != timecode.Zero {
		t.Errorf("Start = %q", jobs[0].Start)
	}
	if jobs[0].End != "00:01:30,500" {
		t.Errorf("End = %q, want probed duration", jobs[0].End)
	}
	if jobs[0].Processed {
		t.Error("new job must be unprocessed")
	}
}

func TestAddFilesRejectsDuplicateByNormalizedPath(t *testing.T) {
	store, dir := newTestStore(t, 10)
	path := writeMedia(t, dir, "one.mp3")

	if result := store.AddFiles(context.Background(), []string{path}); result.Added != 1 {
		t.Fatalf("first add = %+v", result)
	}
	// Same file through a denormalized spelling.
	crooked := filepath.Join(dir, ".", "one.mp3")
	result := store.AddFiles(context.Background(), []string{crooked})
	if result.Added != 0 || result.Duplicates != 1 {
		t.Fatalf("second add = %+v, want one duplicate", result)
	}
	if store.Len() != 1 {
		t.Fatalf("Len = %d", store.Len())
	}
}

func TestAddFilesRejectsUnsupportedExtension(t *testing.T) {
	store, dir := newTestStore(t, 10)
	path := writeMedia(t, dir, "notes.txt")

	result := store.AddFiles(context.Background(), []string{path})
	if result.Added != 0 || result.Invalid != 1 {
		t.Fatalf("result = %+v, want one invalid", result)
	}
}

func TestAddFilesProbeFailureFallsBackToZeroEnd(t *testing.T) {
	store, dir := newTestStore(t, 0)
	path := writeMedia(t, dir, "one.wav")

	store.AddFiles(context.Background(), []string{path})
	job, err := store.Job(0)
	if err != nil {
		t.Fatal(err)
	}
	if job.End != timecode.Zero {
		t.Fatalf("End = %q, want zero timestamp", job.End)
	}
}

func TestPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "request_queue.json")
	keep := writeMedia(t, dir, "keep.mp3")
	gone := writeMedia(t, dir, "gone.mp3")

	store := NewStore(queuePath, fixedProber{42}, nil)
	store.AddFiles(context.Background(), []string{keep, gone})
	if err := store.MarkProcessed(0); err != nil {
		t.Fatal(err)
	}

	// Stale entry: its file disappears before the next startup.
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStore(queuePath, fixedProber{42}, nil)
	reloaded.Load(context.Background())
	jobs := reloaded.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("stale entry not dropped: %v", jobs)
	}
	if jobs[0].Path != keep || !jobs[0].Processed {
		t.Fatalf("round trip mismatch: %+v", jobs[0])
	}
}

func TestLoadRecomputesMissingEnd(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "request_queue.json")
	path := writeMedia(t, dir, "one.mp3")

	records := []map[string]any{{"path": path, "start": "00:00:05,000"}}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(queuePath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(queuePath, fixedProber{30}, nil)
	store.Load(context.Background())
	job, err := store.Job(0)
	if err != nil {
		t.Fatal(err)
	}
	if job.End != "00:00:30,000" {
		t.Fatalf("End = %q, want recomputed duration", job.End)
	}
	if job.Start != "00:00:05,000" {
		t.Fatalf("Start = %q", job.Start)
	}
}

func TestReorderPreservesOthers(t *testing.T) {
	store, dir := newTestStore(t, 10)
	a := writeMedia(t, dir, "a.mp3")
	b := writeMedia(t, dir, "b.mp3")
	c := writeMedia(t, dir, "c.mp3")
	store.AddFiles(context.Background(), []string{a, b, c})

	if err := store.Reorder(2, 0); err != nil {
		t.Fatal(err)
	}
	jobs := store.Jobs()
	got := []string{jobs[0].Path, jobs[1].Path, jobs[2].Path}
	want := []string{c, a, b}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	if err := store.Reorder(5, 0); err != ErrInvalidIndex {
		t.Fatalf("out-of-range reorder error = %v", err)
	}
}

func TestUpdateRangeBlankKeepsPriorValues(t *testing.T) {
	store, dir := newTestStore(t, 60)
	path := writeMedia(t, dir, "a.mp3")
	store.AddFiles(context.Background(), []string{path})

	if err := store.UpdateRange(0, "00:00:10,000", "00:00:20,000", "", ""); err != nil {
		t.Fatal(err)
	}
	job, _ := store.Job(0)
	if job.Start != "00:00:10,000" {
		t.Errorf("Start = %q", job.Start)
	}
	if job.Split1 != "00:00:20,000" || job.Split2 != "" {
		t.Errorf("splits = %q %q", job.Split1, job.Split2)
	}
	if job.End != "00:01:00,000" {
		t.Errorf("blank end should keep prior value, got %q", job.End)
	}
}

func TestClearAndRemove(t *testing.T) {
	store, dir := newTestStore(t, 10)
	a := writeMedia(t, dir, "a.mp3")
	b := writeMedia(t, dir, "b.mp3")
	store.AddFiles(context.Background(), []string{a, b})

	if err := store.Remove(0); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len after remove = %d", store.Len())
	}

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("Len after clear = %d", store.Len())
	}

	// The persisted file must hold an empty array, not null.
	data, err := os.ReadFile(filepath.Join(dir, "request_queue.json"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded []Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("persisted queue invalid: %v", err)
	}
	if decoded == nil {
		t.Fatal("persisted queue decoded to nil, want empty array")
	}
}

func TestLoadIsSafeWithConcurrentReaders(t *testing.T) {
	store, _ := newTestStore(t, 30)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Jobs()
				store.Len()
			}
		}()
	}
	// First-run Load persists the empty file; it must do so under the
	// same lock every other accessor takes.
	store.Load(context.Background())
	wg.Wait()

	if store.Len() != 0 {
		t.Fatalf("Len = %d, want empty store", store.Len())
	}
}
