// Package diagnostics gathers the environment report behind the diag
// command: external tools, system resources, state-dir permissions,
// and GPU availability.
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sys/unix"

	"github.com/magnusua/WhisperFastGUI/internal/deps"
	"github.com/magnusua/WhisperFastGUI/internal/engine"
)

// Check is one named pass/fail line of the report.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Report is the full environment summary.
type Report struct {
	Checks []Check
	Tools  []deps.Status
}

// Healthy reports whether every check and every required tool passed.
func (r Report) Healthy() bool {
	for _, check := range r.Checks {
		if !check.Passed {
			return false
		}
	}
	return deps.AllRequired(r.Tools)
}

// Run collects the report. python selects the engine interpreter,
// empty for the default.
func Run(ctx context.Context, stateDir, python string) Report {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	report := Report{
		Checks: []Check{
			hostCheck(ctx),
			cpuCheck(ctx),
			memoryCheck(ctx),
			stateDirCheck(stateDir),
			gpuCheck(ctx),
		},
		Tools: deps.Check(ctx, deps.Default(python)),
	}
	return report
}

func hostCheck(ctx context.Context) Check {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Check{Name: "System", Detail: fmt.Sprintf("error: %v", err)}
	}
	return Check{
		Name:   "System",
		Passed: true,
		Detail: fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelVersion),
	}
}

func cpuCheck(ctx context.Context) Check {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 {
		return Check{Name: "CPU", Detail: fmt.Sprintf("error: %v", err)}
	}
	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		counts = 0
	}
	return Check{
		Name:   "CPU",
		Passed: true,
		Detail: fmt.Sprintf("%s, %d threads", infos[0].ModelName, counts),
	}
}

func memoryCheck(ctx context.Context) Check {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Check{Name: "Memory", Detail: fmt.Sprintf("error: %v", err)}
	}
	totalGiB := float64(vm.Total) / (1 << 30)
	detail := fmt.Sprintf("%.1f GiB total, %.0f%% used", totalGiB, vm.UsedPercent)
	// The large models want several GiB resident while transcribing.
	passed := totalGiB >= 4
	if !passed {
		detail += " (below 4 GiB, large models will not fit)"
	}
	return Check{Name: "Memory", Passed: passed, Detail: detail}
}

func stateDirCheck(stateDir string) Check {
	info, err := os.Stat(stateDir)
	if err != nil {
		return Check{Name: "State directory", Detail: fmt.Sprintf("%s (error: %v)", stateDir, err)}
	}
	if !info.IsDir() {
		return Check{Name: "State directory", Detail: fmt.Sprintf("%s (error: not a directory)", stateDir)}
	}
	if err := unix.Access(stateDir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Check{Name: "State directory", Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", stateDir, err)}
	}
	return Check{Name: "State directory", Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", stateDir)}
}

func gpuCheck(ctx context.Context) Check {
	capability := engine.DetectCapability(ctx)
	if !capability.Available {
		// CPU-only is a supported configuration, not a failure.
		return Check{Name: "GPU", Passed: true, Detail: "no CUDA device, CPU mode"}
	}
	return Check{
		Name:   "GPU",
		Passed: true,
		Detail: fmt.Sprintf("%s (compute %d.x)", capability.Name, capability.ComputeMajor),
	}
}
