package media

import (
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/magnusua/WhisperFastGUI/internal/timecode"
)

const probeTimeout = 30 * time.Second

// Prober reports media durations. The pipeline and queue store depend on the
// interface so tests can substitute fixed values.
type Prober interface {
	Duration(ctx context.Context, path string) float64
}

// FFProbe probes container duration via ffprobe, decoding the whole file
// through ffmpeg when ffprobe is unavailable or fails.
type FFProbe struct {
	FFProbeBinary string
	FFmpegBinary  string
}

// NewProber returns the production prober using binaries from PATH.
func NewProber() *FFProbe {
	return &FFProbe{FFProbeBinary: "ffprobe", FFmpegBinary: "ffmpeg"}
}

// Duration returns the media duration in seconds, or 0 when both the probe
// and the decode fallback fail. Callers must treat 0 as "unknown" and
// substitute a sentinel instead of dividing by it.
func (p *FFProbe) Duration(ctx context.Context, path string) float64 {
	if seconds, ok := p.probe(ctx, path); ok {
		return seconds
	}
	if seconds, ok := p.decode(ctx, path); ok {
		return seconds
	}
	return 0
}

func (p *FFProbe) probe(ctx context.Context, path string) (float64, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, p.binary(p.FFProbeBinary, "ffprobe"),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"--", path)
	output, err := cmd.Output()
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

var decodeTimeRe = regexp.MustCompile(`time=(\d+:\d{2}:\d{2}\.\d+)`)

// decode measures length by running the file through a null muxer and taking
// the last progress timestamp ffmpeg printed. Slow, but it works on
// containers whose headers carry no duration.
func (p *FFProbe) decode(ctx context.Context, path string) (float64, bool) {
	cmd := exec.CommandContext(ctx, p.binary(p.FFmpegBinary, "ffmpeg"),
		"-nostdin", "-v", "info",
		"-i", path,
		"-f", "null", "-")
	output, err := cmd.CombinedOutput()
	if err != nil && len(output) == 0 {
		return 0, false
	}

	matches := decodeTimeRe.FindAllStringSubmatch(string(output), -1)
	if len(matches) == 0 {
		return 0, false
	}
	seconds, ok := timecode.Parse(matches[len(matches)-1][1])
	if !ok || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

func (p *FFProbe) binary(configured, fallback string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return fallback
}
