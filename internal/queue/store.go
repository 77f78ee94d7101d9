package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/magnusua/WhisperFastGUI/internal/fileutil"
	"github.com/magnusua/WhisperFastGUI/internal/logging"
	"github.com/magnusua/WhisperFastGUI/internal/media"
	"github.com/magnusua/WhisperFastGUI/internal/timecode"
)

// Prober is the duration source used to default a job's end timestamp.
type Prober interface {
	Duration(ctx context.Context, path string) float64
}

// Store manages the in-memory job list and its JSON file. All mutations
// rewrite the whole file; persistence is best-effort and never fails the
// caller, so a read-only disk degrades to a session-scoped queue.
type Store struct {
	path   string
	prober Prober
	logger *slog.Logger

	mu   sync.Mutex
	jobs []Job
}

// NewStore builds a queue store persisting to path.
func NewStore(path string, prober Prober, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   path,
		prober: prober,
		logger: logging.WithComponent(logger, "queue"),
	}
}

// Load reads the persisted queue once at startup. Records whose path no
// longer exists as a regular file are dropped silently; a record missing its
// end timestamp gets one recomputed from the probed duration.
func (s *Store) Load(ctx context.Context) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: create the empty file so later saves only ever replace.
			s.mu.Lock()
			s.persistLocked(nil)
			s.mu.Unlock()
		} else {
			s.logger.Warn("queue file unreadable, starting empty", logging.Error(err))
		}
		return
	}

	var records []Job
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("queue file corrupt, starting empty", logging.Error(err))
		return
	}

	jobs := make([]Job, 0, len(records))
	for _, record := range records {
		if record.Path == "" || !fileutil.IsRegularFile(record.Path) {
			continue
		}
		if strings.TrimSpace(record.Start) == "" {
			record.Start = timecode.Zero
		}
		if strings.TrimSpace(record.End) == "" {
			record.End = s.defaultEnd(ctx, record.Path)
		}
		jobs = append(jobs, record)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = jobs
}

// AddFiles validates and appends paths in input order. Duplicates are
// detected by exact normalized-path identity, not content; two paths to the
// same bytes are distinct jobs.
func (s *Store) AddFiles(ctx context.Context, paths []string) AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.jobs))
	for _, job := range s.jobs {
		existing[job.Path] = struct{}{}
	}

	var result AddResult
	for _, raw := range paths {
		path := normalizePath(raw)
		if path == "" {
			result.Invalid++
			continue
		}
		if _, dup := existing[path]; dup {
			result.Duplicates++
			continue
		}
		if !media.IsSupported(path) || !fileutil.IsRegularFile(path) {
			result.Invalid++
			continue
		}

		s.jobs = append(s.jobs, Job{
			Path:  path,
			Start: timecode.Zero,
			End:   s.defaultEnd(ctx, path),
		})
		existing[path] = struct{}{}
		result.Added++
	}

	if result.Added > 0 {
		s.persistLocked(s.jobs)
	}
	return result
}

// Jobs returns a snapshot of the current list in queue order.
func (s *Store) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Len returns the current queue length.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Job returns the job at index.
func (s *Store) Job(index int) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.jobs) {
		return Job{}, ErrInvalidIndex
	}
	return s.jobs[index], nil
}

// Reorder moves one job from one position to another, preserving the
// relative order of everything else.
func (s *Store) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from >= len(s.jobs) || to < 0 || to >= len(s.jobs) {
		return ErrInvalidIndex
	}
	if from == to {
		return nil
	}
	job := s.jobs[from]
	s.jobs = append(s.jobs[:from], s.jobs[from+1:]...)
	s.jobs = append(s.jobs[:to], append([]Job{job}, s.jobs[to:]...)...)
	s.persistLocked(s.jobs)
	return nil
}

// UpdateRange overwrites the textual range fields of one job. Blank start or
// end keeps the prior value; the interior splits may be legitimately blank.
func (s *Store) UpdateRange(index int, start, split1, split2, end string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.jobs) {
		return ErrInvalidIndex
	}
	job := &s.jobs[index]
	if trimmed := strings.TrimSpace(start); trimmed != "" {
		job.Start = trimmed
	}
	job.Split1 = strings.TrimSpace(split1)
	job.Split2 = strings.TrimSpace(split2)
	if trimmed := strings.TrimSpace(end); trimmed != "" {
		job.End = trimmed
	}
	s.persistLocked(s.jobs)
	return nil
}

// MarkProcessed flips a job's status after a fully successful run.
func (s *Store) MarkProcessed(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.jobs) {
		return ErrInvalidIndex
	}
	s.jobs[index].Processed = true
	s.persistLocked(s.jobs)
	return nil
}

// Remove deletes one job.
func (s *Store) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.jobs) {
		return ErrInvalidIndex
	}
	s.jobs = append(s.jobs[:index], s.jobs[index+1:]...)
	s.persistLocked(s.jobs)
	return nil
}

// Clear empties the queue.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = nil
	s.persistLocked(s.jobs)
}

func (s *Store) defaultEnd(ctx context.Context, path string) string {
	if s.prober == nil {
		return timecode.Zero
	}
	duration := s.prober.Duration(ctx, path)
	if duration <= 0 {
		return timecode.Zero
	}
	return timecode.FormatSubtitle(duration)
}

// persistLocked rewrites the whole queue file. Callers hold s.mu. Failures
// are logged and swallowed.
func (s *Store) persistLocked(jobs []Job) {
	if jobs == nil {
		jobs = []Job{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		s.logger.Warn("encode queue failed", logging.Error(err))
		return
	}
	if err := fileutil.WriteAtomic(s.path, append(data, '\n'), 0o644); err != nil {
		s.logger.Warn("persist queue failed", logging.Error(err))
	}
}

func normalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return filepath.Clean(raw)
	}
	return filepath.Clean(abs)
}
