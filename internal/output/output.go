// Package output resolves destination directories and serializes
// transcription results into transcript, subtitle, and audio artifacts.
package output

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/magnusua/WhisperFastGUI/internal/engine"
	"github.com/magnusua/WhisperFastGUI/internal/logging"
	"github.com/magnusua/WhisperFastGUI/internal/timecode"
)

// processedMarker is stripped from source stems so rerunning a file
// whose name carries the queue's done tag yields clean artifact names.
const processedMarker = " (processed)"

var illegalDirChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// Artifacts lists the files one job produced.
type Artifacts struct {
	TranscriptPath string
	SubtitlePath   string
	AudioPath      string
}

// Writer persists job results under the configured directory policy.
type Writer struct {
	outputDir string
	encoder   AudioEncoder
	logger    *slog.Logger
}

// AudioEncoder exports a captured clip as compressed audio.
type AudioEncoder interface {
	EncodeMP3(ctx context.Context, src, dst string) error
}

// NewWriter builds a writer. outputDir is the configured destination,
// empty to write next to each source file.
func NewWriter(outputDir string, encoder AudioEncoder, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		outputDir: strings.TrimSpace(outputDir),
		encoder:   encoder,
		logger:    logging.WithComponent(logger, "output"),
	}
}

// ResolveDir picks the destination directory for one source file.
// Empty config writes beside the source; an absolute path is created
// and shared by every job; a relative name becomes a sanitized sibling
// folder of the source. Any creation failure falls back to the source
// directory.
func (w *Writer) ResolveDir(source string) string {
	if w.outputDir == "" {
		return filepath.Dir(source)
	}
	if filepath.IsAbs(w.outputDir) {
		dir := filepath.Clean(w.outputDir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.logger.Warn("create output dir failed, writing beside source",
				logging.Error(err))
			return filepath.Dir(source)
		}
		return dir
	}
	dir := filepath.Join(filepath.Dir(source), SanitizeFolderName(w.outputDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.logger.Warn("create output dir failed, writing beside source",
			logging.Error(err))
		return filepath.Dir(source)
	}
	return dir
}

// SanitizeFolderName replaces characters that are illegal in directory
// names, trims trailing dots and spaces, and falls back to "_" when
// nothing survives.
func SanitizeFolderName(name string) string {
	s := illegalDirChars.ReplaceAllString(name, "_")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ". ")
	if s == "" {
		return "_"
	}
	return s
}

// Write serializes the segments for one source file. clipPath, when
// non-empty, is a captured audio clip to export beside the text
// artifacts. rangeSuffix, when non-empty, is appended to the base name
// so sub-range outputs never collide with full-file ones.
func (w *Writer) Write(ctx context.Context, source string, segments []engine.Segment, clipPath, rangeSuffix string) (Artifacts, error) {
	dir := w.ResolveDir(source)
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base = strings.ReplaceAll(base, processedMarker, "")
	base += rangeSuffix

	var artifacts Artifacts
	artifacts.TranscriptPath = filepath.Join(dir, base+".txt")
	artifacts.SubtitlePath = filepath.Join(dir, base+".srt")

	if err := os.WriteFile(artifacts.TranscriptPath, []byte(renderTranscript(segments)), 0o644); err != nil {
		return artifacts, fmt.Errorf("write transcript: %w", err)
	}
	if err := os.WriteFile(artifacts.SubtitlePath, []byte(renderSubtitles(segments)), 0o644); err != nil {
		return artifacts, fmt.Errorf("write subtitles: %w", err)
	}
	w.logger.Info("wrote transcript",
		logging.String(logging.FieldArtifact, artifacts.TranscriptPath))
	w.logger.Info("wrote subtitles",
		logging.String(logging.FieldArtifact, artifacts.SubtitlePath))

	if clipPath != "" && w.encoder != nil {
		audioPath := filepath.Join(dir, base+"_audio.mp3")
		if err := w.encoder.EncodeMP3(ctx, clipPath, audioPath); err != nil {
			// Losing the audio export does not lose the transcript.
			w.logger.Warn("audio export failed", logging.Error(err),
				logging.String(logging.FieldArtifact, audioPath))
		} else {
			artifacts.AudioPath = audioPath
			w.logger.Info("wrote audio export",
				logging.String(logging.FieldArtifact, audioPath))
		}
	}
	return artifacts, nil
}

func renderTranscript(segments []engine.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, segment := range segments {
		lines = append(lines, strings.TrimSpace(segment.Text))
	}
	return strings.Join(lines, "\n")
}

func renderSubtitles(segments []engine.Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			timecode.FormatSubtitle(segment.Start),
			timecode.FormatSubtitle(segment.End),
			strings.TrimSpace(segment.Text))
	}
	return b.String()
}
