// Package queue owns the ordered transcription job list: validation,
// deduplication, reordering, status flips, and the durable JSON
// representation reloaded at startup and rewritten after every mutation.
package queue

import "errors"

// Job is one queued media file plus its transcription time range and status.
// JSON keys are a persistence contract shared with earlier releases; the
// interior split fields are presentation metadata the pipeline never reads.
type Job struct {
	Path      string `json:"path"`
	Start     string `json:"start"`
	Split1    string `json:"end_segment_1"`
	Split2    string `json:"end_segment_2"`
	End       string `json:"end"`
	Processed bool   `json:"processed"`
}

// ErrInvalidIndex reports a queue index outside the current list.
var ErrInvalidIndex = errors.New("queue: index out of range")

// AddResult counts the outcome of one ingestion call.
type AddResult struct {
	Added      int
	Duplicates int
	Invalid    int
}
