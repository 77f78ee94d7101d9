package engine

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/magnusua/WhisperFastGUI/internal/config"
)

// Compute type identifiers passed to the backend.
const (
	computeFloat16 = "float16"
	computeInt8    = "int8"
)

// Device identifiers passed to the backend.
const (
	deviceCUDA = "cuda"
	deviceCPU  = "cpu"
)

// Capability describes the GPU visible to the backend, if any.
type Capability struct {
	Available    bool
	Name         string
	ComputeMajor int
}

// DetectCapability queries nvidia-smi for an attached CUDA device. A
// missing binary or any query failure means no GPU.
func DetectCapability(ctx context.Context) Capability {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=name,compute_cap",
		"--format=csv,noheader")
	output, err := cmd.Output()
	if err != nil {
		return Capability{}
	}
	return parseCapability(string(output))
}

func parseCapability(output string) Capability {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	name, capField, ok := strings.Cut(line, ",")
	if !ok {
		return Capability{}
	}
	majorText, _, _ := strings.Cut(strings.TrimSpace(capField), ".")
	major, err := strconv.Atoi(majorText)
	if err != nil {
		return Capability{}
	}
	return Capability{
		Available:    true,
		Name:         strings.TrimSpace(name),
		ComputeMajor: major,
	}
}

// ResolveDevice maps a configured device mode and the detected
// capability onto the device and compute type handed to the backend.
// GPU and AUTO both take the GPU when one is present; half precision
// requires compute capability 7.x or newer, older cards and the CPU
// path quantize to int8.
func ResolveDevice(mode string, capability Capability) (device, compute string) {
	useCUDA := capability.Available &&
		(mode == config.DeviceGPU || mode == config.DeviceAuto)
	if !useCUDA {
		return deviceCPU, computeInt8
	}
	if capability.ComputeMajor >= 7 {
		return deviceCUDA, computeFloat16
	}
	return deviceCUDA, computeInt8
}
