// Package engine manages the speech-to-text backend: resolving the
// compute device, loading and unloading models, and streaming
// transcription segments.
package engine

import "context"

// Segment is one recognized span of speech.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Info describes the transcription once the backend has inspected the
// audio, before any segments arrive.
type Info struct {
	Language            string
	LanguageProbability float64
	Duration            float64
}

// Stream yields segments as the backend produces them. Next returns
// io.EOF once the audio is exhausted. Close abandons the stream; it is
// safe to call after io.EOF.
type Stream interface {
	Info() Info
	Next() (Segment, error)
	Close() error
}

// Request names the audio to transcribe and an optional language hint.
// An empty Language asks the backend to detect it. VADFilter drops
// non-speech spans before inference; the pipeline always sets it.
type Request struct {
	AudioPath string
	Language  string
	VADFilter bool
}

// Engine is a loaded speech-to-text model.
type Engine interface {
	// Transcribe starts a transcription and returns a forward-only
	// segment stream. Only one stream may be active at a time.
	Transcribe(ctx context.Context, req Request) (Stream, error)
	// Close releases the model and any backing process.
	Close() error
}
