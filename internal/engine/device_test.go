package engine

import (
	"testing"

	"github.com/magnusua/WhisperFastGUI/internal/config"
)

func TestParseCapability(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Capability
	}{
		{
			name:   "ampere card",
			output: "NVIDIA GeForce RTX 3080, 8.6\n",
			want:   Capability{Available: true, Name: "NVIDIA GeForce RTX 3080", ComputeMajor: 8},
		},
		{
			name:   "pascal card",
			output: "NVIDIA GeForce GTX 1060, 6.1\n",
			want:   Capability{Available: true, Name: "NVIDIA GeForce GTX 1060", ComputeMajor: 6},
		},
		{
			name:   "multiple gpus uses first",
			output: "GPU A, 8.9\nGPU B, 7.5\n",
			want:   Capability{Available: true, Name: "GPU A", ComputeMajor: 8},
		},
		{
			name:   "empty output",
			output: "",
			want:   Capability{},
		},
		{
			name:   "garbage",
			output: "No devices were found",
			want:   Capability{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseCapability(tc.output); got != tc.want {
				t.Errorf("parseCapability(%q) = %+v, want %+v", tc.output, got, tc.want)
			}
		})
	}
}

func TestResolveDevice(t *testing.T) {
	ampere := Capability{Available: true, ComputeMajor: 8}
	pascal := Capability{Available: true, ComputeMajor: 6}
	none := Capability{}

	tests := []struct {
		name        string
		mode        string
		capability  Capability
		wantDevice  string
		wantCompute string
	}{
		{"auto with modern gpu", config.DeviceAuto, ampere, "cuda", "float16"},
		{"gpu with modern gpu", config.DeviceGPU, ampere, "cuda", "float16"},
		{"auto with old gpu", config.DeviceAuto, pascal, "cuda", "int8"},
		{"gpu mode no gpu present", config.DeviceGPU, none, "cpu", "int8"},
		{"cpu mode ignores gpu", config.DeviceCPU, ampere, "cpu", "int8"},
		{"auto without gpu", config.DeviceAuto, none, "cpu", "int8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			device, compute := ResolveDevice(tc.mode, tc.capability)
			if device != tc.wantDevice || compute != tc.wantCompute {
				t.Errorf("ResolveDevice(%s) = %s/%s, want %s/%s",
					tc.mode, device, compute, tc.wantDevice, tc.wantCompute)
			}
		})
	}
}
