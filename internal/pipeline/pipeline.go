// Package pipeline orchestrates transcription runs: it resolves each
// queued job's effective time range, borrows the engine, consumes the
// segment stream, and hands results to the output writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/magnusua/WhisperFastGUI/internal/config"
	"github.com/magnusua/WhisperFastGUI/internal/engine"
	"github.com/magnusua/WhisperFastGUI/internal/language"
	"github.com/magnusua/WhisperFastGUI/internal/logging"
	"github.com/magnusua/WhisperFastGUI/internal/media"
	"github.com/magnusua/WhisperFastGUI/internal/notifications"
	"github.com/magnusua/WhisperFastGUI/internal/output"
	"github.com/magnusua/WhisperFastGUI/internal/queue"
	"github.com/magnusua/WhisperFastGUI/internal/timecode"
)

// Mode selects which queue entries a run covers.
type Mode int

const (
	ModeSingle Mode = iota
	ModeAll
	ModeUnprocessed
)

// fullFileEpsilon absorbs probe imprecision: a range this close to the
// whole file is treated as the whole file, so no temp clip is cut.
const fullFileEpsilon = 0.5

// Prompter confirms extracting an audio copy from an audio source.
// Video sources are exported without asking.
type Prompter interface {
	ConfirmAudioExtract(ctx context.Context, name string) bool
}

// EngineSource hands out a loaded engine for the requested model and
// device mode.
type EngineSource interface {
	Acquire(ctx context.Context, model, deviceMode string) (engine.Engine, error)
}

// Clipper cuts time ranges of a source into WAV renditions: a 16kHz
// mono one for the engine and a native-quality one for audio exports.
type Clipper interface {
	ExtractClip(ctx context.Context, src string, startSeconds, endSeconds float64, dst string) error
	ExtractAudioSlice(ctx context.Context, src string, startSeconds, endSeconds float64, dst string) error
}

// Result summarizes one run.
type Result struct {
	Processed int
	Skipped   int
	Cancelled bool
}

// Pipeline processes queued jobs. At most one run may be active at a
// time; callers serialize.
type Pipeline struct {
	store    *queue.Store
	engines  EngineSource
	prober   media.Prober
	clipper  Clipper
	writer   *output.Writer
	notifier notifications.Service
	prompter Prompter
	settings config.Settings
	logger   *slog.Logger

	// TempDir overrides the clip scratch directory. Empty uses the
	// system default.
	TempDir string
	// OnProgress, when set, receives throttled per-job progress in
	// [0, 1].
	OnProgress func(index int, fraction float64)
	// PlaySound overrides the completion chime.
	PlaySound func(ctx context.Context)
}

// Options collects the pipeline's collaborators.
type Options struct {
	Store    *queue.Store
	Engines  EngineSource
	Prober   media.Prober
	Clipper  Clipper
	Writer   *output.Writer
	Notifier notifications.Service
	Prompter Prompter
	Settings config.Settings
	Logger   *slog.Logger
}

// New builds a pipeline from its collaborators.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService("")
	}
	return &Pipeline{
		store:     opts.Store,
		engines:   opts.Engines,
		prober:    opts.Prober,
		clipper:   opts.Clipper,
		writer:    opts.Writer,
		notifier:  notifier,
		prompter:  opts.Prompter,
		settings:  opts.Settings,
		logger:    logging.WithComponent(logger, "pipeline"),
		PlaySound: notifications.PlayFinishSound,
	}
}

// Run processes the selected jobs in queue order. index is only
// consulted for ModeSingle. Any job failure aborts the remainder of
// the run; jobs already completed stay marked processed.
func (p *Pipeline) Run(ctx context.Context, mode Mode, index int) (Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))

	indices, err := p.buildIndices(mode, index)
	if err != nil {
		return Result{}, err
	}
	if len(indices) == 0 {
		logger.Info("nothing to process")
		return Result{}, nil
	}

	eng, err := p.engines.Acquire(ctx, p.settings.WhisperModel, p.settings.DeviceMode)
	if err != nil {
		p.notifier.NotifyRunFailed(ctx, err, "")
		return Result{}, fmt.Errorf("acquire engine: %w", err)
	}

	started := time.Now()
	logger.Info("run started",
		logging.Int("jobs", len(indices)),
		logging.String(logging.FieldModel, p.settings.WhisperModel))
	p.notifier.NotifyRunStarted(ctx, len(indices))

	var result Result
	for _, i := range indices {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		job, err := p.store.Job(i)
		if err != nil {
			p.notifyFailure(logger, err, "")
			return result, err
		}
		if err := p.processJob(ctx, logger, eng, i, job); err != nil {
			if errors.Is(err, context.Canceled) {
				result.Cancelled = true
				break
			}
			p.notifyFailure(logger, err, filepath.Base(job.Path))
			return result, err
		}
		result.Processed++
		p.notifier.NotifyFileCompleted(ctx, filepath.Base(job.Path))
	}

	if result.Cancelled {
		result.Skipped = len(indices) - result.Processed
		logger.Info("run cancelled", logging.Int("skipped", result.Skipped))
	} else {
		logger.Info("run completed",
			logging.Int("processed", result.Processed),
			logging.Duration("elapsed", time.Since(started)))
		if p.settings.PlaySoundOnDone && p.PlaySound != nil {
			p.PlaySound(context.WithoutCancel(ctx))
		}
	}
	p.notifier.NotifyRunCompleted(context.WithoutCancel(ctx),
		result.Processed, result.Skipped, time.Since(started))
	return result, nil
}

func (p *Pipeline) buildIndices(mode Mode, index int) ([]int, error) {
	jobs := p.store.Jobs()
	switch mode {
	case ModeSingle:
		if index < 0 || index >= len(jobs) {
			return nil, queue.ErrInvalidIndex
		}
		return []int{index}, nil
	case ModeUnprocessed:
		var indices []int
		for i, job := range jobs {
			if !job.Processed {
				indices = append(indices, i)
			}
		}
		return indices, nil
	default:
		indices := make([]int, len(jobs))
		for i := range jobs {
			indices[i] = i
		}
		return indices, nil
	}
}

// effectiveRange resolves a job's textual bounds against the probed
// duration. A malformed or inverted range falls back to the full file
// so it still produces output.
func (p *Pipeline) effectiveRange(ctx context.Context, job queue.Job) (startSec, endSec, duration float64, isSegment bool) {
	startSec, ok := timecode.Parse(job.Start)
	if !ok {
		startSec = 0
	}
	duration = p.prober.Duration(ctx, job.Path)
	if duration <= 0 {
		duration = 1
	}
	endSec, ok = timecode.Parse(job.End)
	if !ok {
		endSec = duration
	}
	if endSec > duration {
		endSec = duration
	}
	if endSec <= startSec {
		startSec = 0
		endSec = duration
	}
	isSegment = startSec >= fullFileEpsilon || duration-endSec >= fullFileEpsilon
	return startSec, endSec, duration, isSegment
}

func (p *Pipeline) processJob(ctx context.Context, logger *slog.Logger, eng engine.Engine, index int, job queue.Job) error {
	name := filepath.Base(job.Path)
	jobLogger := logger.With(
		logging.Int(logging.FieldJobIndex, index),
		logging.String(logging.FieldJobPath, job.Path))

	startSec, endSec, duration, isSegment := p.effectiveRange(ctx, job)
	jobLogger.Info("processing",
		logging.Float64("start_sec", startSec),
		logging.Float64("end_sec", endSec),
		logging.Bool("sub_range", isSegment))

	wantAudio := p.settings.SaveAudio
	if wantAudio && media.KindOf(job.Path) == media.KindAudio {
		if p.prompter == nil || !p.prompter.ConfirmAudioExtract(ctx, name) {
			wantAudio = false
		}
	}

	var clipPath string
	if isSegment {
		path, err := p.extractClip(ctx, job.Path, startSec, endSec)
		if err != nil {
			return err
		}
		clipPath = path
		defer os.Remove(clipPath)
	}

	// The export slice keeps the source's channels and sample rate; the
	// engine clip must not leak into user artifacts.
	var audioClip string
	if wantAudio {
		path, err := p.extractAudioSlice(ctx, job.Path, startSec, endSec)
		if err != nil {
			return err
		}
		audioClip = path
		defer os.Remove(audioClip)
	}

	target := job.Path
	if isSegment {
		target = clipPath
	}
	stream, err := eng.Transcribe(ctx, engine.Request{
		AudioPath: target,
		Language:  language.Hint(p.settings.Language),
		VADFilter: true,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	info := stream.Info()
	jobLogger.Info("transcription started",
		logging.String("language", info.Language),
		logging.Float64("language_probability", info.LanguageProbability))

	segments, err := p.consume(ctx, jobLogger, stream, index, startSec, endSec, duration, isSegment)
	if err != nil {
		return err
	}

	if p.OnProgress != nil {
		p.OnProgress(index, 1)
	}

	rangeSuffix := ""
	if isSegment {
		rangeSuffix = timecode.RangeToken(startSec, endSec)
	}
	if _, err := p.writer.Write(ctx, job.Path, segments, audioClip, rangeSuffix); err != nil {
		return err
	}
	if err := p.store.MarkProcessed(index); err != nil {
		return err
	}
	jobLogger.Info("job completed", logging.Int("segments", len(segments)))
	return nil
}

// consume drains the stream, offsetting times for sub-range clips so
// written timestamps are relative to the original file.
func (p *Pipeline) consume(ctx context.Context, logger *slog.Logger, stream engine.Stream, index int, startSec, endSec, duration float64, isSegment bool) ([]engine.Segment, error) {
	span := endSec - startSec
	if !isSegment {
		span = duration
	}
	if span <= 0 {
		span = 1
	}

	progressThrottle := logging.NewThrottle(100*time.Millisecond, 0)
	logThrottle := logging.NewThrottle(500*time.Millisecond, 2)

	var segments []engine.Segment
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segment, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if logThrottle.Allow() {
			logger.Info("segment",
				logging.String("at", timecode.FormatSubtitle(segment.Start)),
				logging.String("text", segment.Text))
		}
		if p.OnProgress != nil && progressThrottle.Allow() {
			fraction := segment.End / span
			if fraction > 1 {
				fraction = 1
			}
			p.OnProgress(index, fraction)
		}
		if isSegment {
			segment.Start += startSec
			segment.End += startSec
		}
		segments = append(segments, segment)
	}
	return segments, nil
}

func (p *Pipeline) extractClip(ctx context.Context, source string, startSec, endSec float64) (string, error) {
	dir := p.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "clip_"+uuid.NewString()+".wav")
	if err := p.clipper.ExtractClip(ctx, source, startSec, endSec, path); err != nil {
		return "", fmt.Errorf("extract clip: %w", err)
	}
	return path, nil
}

func (p *Pipeline) extractAudioSlice(ctx context.Context, source string, startSec, endSec float64) (string, error) {
	dir := p.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "audio_"+uuid.NewString()+".wav")
	if err := p.clipper.ExtractAudioSlice(ctx, source, startSec, endSec, path); err != nil {
		return "", fmt.Errorf("extract audio slice: %w", err)
	}
	return path, nil
}

func (p *Pipeline) notifyFailure(logger *slog.Logger, err error, name string) {
	logger.Error("run aborted", logging.Error(err))
	p.notifier.NotifyRunFailed(context.Background(), err, name)
}
