package engine

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/magnusua/WhisperFastGUI/internal/logging"
)

//go:embed assets/fw_worker.py
var workerScript []byte

// DefaultPython is the interpreter used when none is configured.
const DefaultPython = "python3"

const workerStartTimeout = 5 * time.Minute

// WorkerOptions configure a transcription worker process.
type WorkerOptions struct {
	Python  string
	Model   string
	Device  string
	Compute string
	Logger  *slog.Logger
}

// Worker runs one model inside a persistent helper process and serves
// transcription requests over its pipes. A worker handles one stream at
// a time.
type Worker struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Scanner
	logger     *slog.Logger
	scriptPath string

	mu     sync.Mutex
	stream *workerStream
	closed bool
}

type workerEvent struct {
	Event               string  `json:"event"`
	Language            string  `json:"language"`
	LanguageProbability float64 `json:"language_probability"`
	Duration            float64 `json:"duration"`
	Start               float64 `json:"start"`
	End                 float64 `json:"end"`
	Text                string  `json:"text"`
	Message             string  `json:"message"`
}

type workerRequest struct {
	Op       string `json:"op"`
	Audio    string `json:"audio,omitempty"`
	Language string `json:"language,omitempty"`
	VAD      bool   `json:"vad_filter"`
}

// StartWorker launches the helper process and blocks until the model
// has loaded.
func StartWorker(ctx context.Context, opts WorkerOptions) (*Worker, error) {
	python := opts.Python
	if python == "" {
		python = DefaultPython
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "engine")

	scriptPath, err := writeWorkerScript()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(python, scriptPath,
		"--model", opts.Model,
		"--device", opts.Device,
		"--compute", opts.Compute)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(scriptPath)
		return nil, fmt.Errorf("engine: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		os.Remove(scriptPath)
		return nil, fmt.Errorf("engine: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		os.Remove(scriptPath)
		return nil, fmt.Errorf("engine: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		os.Remove(scriptPath)
		return nil, fmt.Errorf("engine: start %s: %w", python, err)
	}

	go forwardStderr(stderr, logger)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	worker := &Worker{
		cmd:        cmd,
		stdin:      stdin,
		stdout:     scanner,
		logger:     logger,
		scriptPath: scriptPath,
	}

	if err := worker.awaitReady(ctx); err != nil {
		worker.kill()
		return nil, err
	}
	logger.Info("model loaded",
		logging.String(logging.FieldModel, opts.Model),
		logging.String(logging.FieldDevice, opts.Device),
		logging.String("compute", opts.Compute))
	return worker, nil
}

func writeWorkerScript() (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("fw_worker_%d.py", os.Getpid()))
	if err := os.WriteFile(path, workerScript, 0o700); err != nil {
		return "", fmt.Errorf("engine: write helper script: %w", err)
	}
	return path, nil
}

func forwardStderr(r io.Reader, logger *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			logger.Debug("worker stderr", logging.String("line", line))
		}
	}
}

// awaitReady consumes events until the model reports loaded. The load
// can take minutes on first use while weights download.
func (w *Worker) awaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, workerStartTimeout)
	defer cancel()

	type outcome struct {
		event workerEvent
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		event, err := w.readEvent()
		ch <- outcome{event, err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("engine: model load: %w", ctx.Err())
	case out := <-ch:
		if out.err != nil {
			return fmt.Errorf("engine: model load: %w", out.err)
		}
		switch out.event.Event {
		case "ready":
			return nil
		case "error":
			return fmt.Errorf("engine: model load: %s", out.event.Message)
		default:
			return fmt.Errorf("engine: unexpected event %q during load", out.event.Event)
		}
	}
}

func (w *Worker) readEvent() (workerEvent, error) {
	if !w.stdout.Scan() {
		if err := w.stdout.Err(); err != nil {
			return workerEvent{}, err
		}
		return workerEvent{}, fmt.Errorf("worker exited")
	}
	var event workerEvent
	if err := json.Unmarshal(w.stdout.Bytes(), &event); err != nil {
		return workerEvent{}, fmt.Errorf("decode worker event: %w", err)
	}
	return event, nil
}

// Transcribe sends one request and returns its segment stream. The
// previous stream, if any, is drained first.
func (w *Worker) Transcribe(ctx context.Context, req Request) (Stream, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, errors.New("engine: worker closed")
	}
	if w.stream != nil {
		if err := w.stream.drain(); err != nil {
			return nil, err
		}
		w.stream = nil
	}

	payload, err := json.Marshal(workerRequest{
		Op:       "transcribe",
		Audio:    req.AudioPath,
		Language: req.Language,
		VAD:      req.VADFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: encode request: %w", err)
	}
	if _, err := w.stdin.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("engine: send request: %w", err)
	}

	event, err := w.readEvent()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	switch event.Event {
	case "info":
	case "error":
		return nil, fmt.Errorf("engine: %s", event.Message)
	default:
		return nil, fmt.Errorf("engine: unexpected event %q", event.Event)
	}

	stream := &workerStream{
		worker: w,
		ctx:    ctx,
		info: Info{
			Language:            event.Language,
			LanguageProbability: event.LanguageProbability,
			Duration:            event.Duration,
		},
	}
	w.stream = stream
	return stream, nil
}

// Close asks the worker to shut down and reaps the process.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	shutdown, _ := json.Marshal(workerRequest{Op: "shutdown"})
	w.stdin.Write(append(shutdown, '\n'))
	w.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- w.cmd.Wait() }()
	select {
	case err := <-done:
		os.Remove(w.scriptPath)
		return err
	case <-time.After(10 * time.Second):
		w.cmd.Process.Kill()
		<-done
		os.Remove(w.scriptPath)
		return errors.New("engine: worker killed after shutdown timeout")
	}
}

func (w *Worker) kill() {
	w.stdin.Close()
	if w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
	w.cmd.Wait()
	os.Remove(w.scriptPath)
	w.closed = true
}

// workerStream reads segment events lazily off the worker's stdout.
type workerStream struct {
	worker *Worker
	ctx    context.Context
	info   Info
	done   bool
}

func (s *workerStream) Info() Info { return s.info }

func (s *workerStream) Next() (Segment, error) {
	if s.done {
		return Segment{}, io.EOF
	}
	if err := s.ctx.Err(); err != nil {
		return Segment{}, err
	}
	event, err := s.worker.readEvent()
	if err != nil {
		s.done = true
		return Segment{}, fmt.Errorf("engine: %w", err)
	}
	switch event.Event {
	case "segment":
		return Segment{Start: event.Start, End: event.End, Text: event.Text}, nil
	case "done":
		s.done = true
		return Segment{}, io.EOF
	case "error":
		s.done = true
		return Segment{}, fmt.Errorf("engine: %s", event.Message)
	default:
		s.done = true
		return Segment{}, fmt.Errorf("engine: unexpected event %q", event.Event)
	}
}

func (s *workerStream) Close() error { return s.drain() }

// drain consumes the remaining events so the worker is ready for the
// next request.
func (s *workerStream) drain() error {
	for !s.done {
		if _, err := s.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	return nil
}
