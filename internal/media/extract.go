package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Extractor clips media with ffmpeg. The engine consumes 16kHz mono WAV
// renditions; audio artifacts are exported as MP3.
type Extractor struct {
	FFmpegBinary string
}

// NewExtractor returns the production extractor using ffmpeg from PATH.
func NewExtractor() *Extractor {
	return &Extractor{FFmpegBinary: "ffmpeg"}
}

// ExtractClip renders [startSeconds, endSeconds) of src into dst as 16kHz
// mono WAV, the input format the transcription worker expects.
func (e *Extractor) ExtractClip(ctx context.Context, src string, startSeconds, endSeconds float64, dst string) error {
	if endSeconds <= startSeconds {
		return fmt.Errorf("extract clip: empty range [%v, %v)", startSeconds, endSeconds)
	}
	args := []string{
		"-nostdin", "-y", "-v", "error",
		"-ss", formatSeconds(startSeconds),
		"-to", formatSeconds(endSeconds),
		"-i", src,
		"-vn", "-ac", "1", "-ar", "16000",
		"-f", "wav",
		dst,
	}
	return e.run(ctx, args)
}

// ExtractAudioSlice renders [startSeconds, endSeconds) of src into dst
// as WAV at the source's channel count and sample rate. This feeds the
// user-facing audio export, which must not inherit the engine's 16kHz
// mono rendition.
func (e *Extractor) ExtractAudioSlice(ctx context.Context, src string, startSeconds, endSeconds float64, dst string) error {
	if endSeconds <= startSeconds {
		return fmt.Errorf("extract audio slice: empty range [%v, %v)", startSeconds, endSeconds)
	}
	args := []string{
		"-nostdin", "-y", "-v", "error",
		"-ss", formatSeconds(startSeconds),
		"-to", formatSeconds(endSeconds),
		"-i", src,
		"-vn",
		"-f", "wav",
		dst,
	}
	return e.run(ctx, args)
}

// EncodeMP3 transcodes a captured clip into the `_audio` MP3 artifact.
func (e *Extractor) EncodeMP3(ctx context.Context, src, dst string) error {
	args := []string{
		"-nostdin", "-y", "-v", "error",
		"-i", src,
		"-vn", "-codec:a", "libmp3lame", "-qscale:a", "2",
		dst,
	}
	return e.run(ctx, args)
}

func (e *Extractor) run(ctx context.Context, args []string) error {
	binary := e.FFmpegBinary
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, detail)
	}
	return nil
}

func formatSeconds(seconds float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", seconds), "0"), ".")
}
