package main

import (
	"strings"
	"testing"
)

func TestAddAndQueueList(t *testing.T) {
	state := t.TempDir()
	media := t.TempDir()
	writeMediaFile(t, media, "talk.mp3")
	clip := writeMediaFile(t, media, "clip.mp4")

	out, err := runCLI(t, state, "add", media)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Added 2 file(s)")

	out, err = runCLI(t, state, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "talk.mp3")
	requireContains(t, out, "clip.mp4")
	requireContains(t, out, "pending")

	// re-adding one file is a duplicate, not an error
	out, err = runCLI(t, state, "add", clip)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	requireContains(t, out, "1 duplicate(s)")
}

func TestAddRejectsUnsupportedFile(t *testing.T) {
	state := t.TempDir()
	dir := t.TempDir()
	note := writeMediaFile(t, dir, "notes.txt")

	out, err := runCLI(t, state, "add", note)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "1 unsupported/missing")
}

func TestQueueRemoveAndClear(t *testing.T) {
	state := t.TempDir()
	dir := t.TempDir()
	writeMediaFile(t, dir, "a.mp3")
	writeMediaFile(t, dir, "b.mp3")
	if _, err := runCLI(t, state, "add", dir); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := runCLI(t, state, "queue", "remove", "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, err := runCLI(t, state, "queue", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if contains := "a.mp3"; strings.Contains(out, contains) {
		t.Fatalf("expected %q removed from list, got:\n%s", contains, out)
	}
	requireContains(t, out, "b.mp3")

	if _, err := runCLI(t, state, "queue", "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, err = runCLI(t, state, "queue", "list")
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueRemoveOutOfRange(t *testing.T) {
	state := t.TempDir()
	dir := t.TempDir()
	writeMediaFile(t, dir, "a.mp3")
	if _, err := runCLI(t, state, "add", dir); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err := runCLI(t, state, "queue", "remove", "5")
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
	requireContains(t, err.Error(), "position out of range")
}

func TestQueueReorder(t *testing.T) {
	state := t.TempDir()
	dir := t.TempDir()
	writeMediaFile(t, dir, "a.mp3")
	writeMediaFile(t, dir, "b.mp3")
	writeMediaFile(t, dir, "c.mp3")
	if _, err := runCLI(t, state, "add", dir); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := runCLI(t, state, "queue", "reorder", "3", "1"); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	out, err := runCLI(t, state, "queue", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	first := strings.Index(out, "c.mp3")
	second := strings.Index(out, "a.mp3")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected c.mp3 before a.mp3 after reorder, got:\n%s", out)
	}
}

func TestQueueEditRange(t *testing.T) {
	state := t.TempDir()
	dir := t.TempDir()
	writeMediaFile(t, dir, "a.mp3")
	if _, err := runCLI(t, state, "add", dir); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := runCLI(t, state, "queue", "edit", "1",
		"--start", "00:00:10,000", "--end", "00:01:00,000"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	out, err := runCLI(t, state, "queue", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "00:00:10,000")
	requireContains(t, out, "00:01:00,000")

	_, err = runCLI(t, state, "queue", "edit", "1", "--start", "garbage")
	if err == nil {
		t.Fatal("expected invalid timecode error")
	}
}
