// Package deps checks the external tools the transcriber shells out
// to: ffmpeg/ffprobe for media handling, a Python interpreter carrying
// faster-whisper for the engine, and nvidia-smi for GPU probing.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines one external dependency.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// PythonModule, when set, additionally verifies the module is
	// importable by Command.
	PythonModule string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Default lists the tools a working installation needs. python names
// the interpreter, empty for the default.
func Default(python string) []Requirement {
	if strings.TrimSpace(python) == "" {
		python = "python3"
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Required for clip extraction and audio export",
		},
		{
			Name:        "FFprobe",
			Command:     "ffprobe",
			Description: "Required for media duration probing",
		},
		{
			Name:         "Python / faster-whisper",
			Command:      python,
			Description:  "Runs the transcription engine",
			PythonModule: "faster_whisper",
		},
		{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "GPU detection; absent means CPU-only",
			Optional:    true,
		},
	}
}

// Check evaluates the requirements and reports availability.
func Check(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		if req.PythonModule != "" {
			if err := checkPythonModule(ctx, cmd, req.PythonModule); err != nil {
				status.Detail = fmt.Sprintf("module %q not importable: %v", req.PythonModule, err)
				results = append(results, status)
				continue
			}
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// AllRequired reports whether every non-optional dependency is present.
func AllRequired(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return false
		}
	}
	return true
}

func checkPythonModule(ctx context.Context, python, module string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, python, "-c", "import "+module)
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return err
		}
		if idx := strings.LastIndexByte(detail, '\n'); idx >= 0 {
			detail = detail[idx+1:]
		}
		return fmt.Errorf("%s", detail)
	}
	return nil
}
