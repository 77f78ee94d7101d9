package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/magnusua/WhisperFastGUI/internal/config"
	"github.com/magnusua/WhisperFastGUI/internal/logging"
)

// State reports what the manager currently holds, for status output.
type State struct {
	Loaded       bool
	Model        string
	DeviceMode   string
	Device       string
	Compute      string
	GPUAvailable bool
	GPUName      string
}

// Manager owns at most one loaded engine and swaps it when the
// requested model or device mode changes.
type Manager struct {
	python string
	logger *slog.Logger

	start  func(ctx context.Context, opts WorkerOptions) (Engine, error)
	detect func(ctx context.Context) Capability

	mu           sync.Mutex
	engine       Engine
	model        string
	deviceMode   string
	device       string
	compute      string
	capability   Capability
	probed       bool
	warnedNoCUDA bool
}

// NewManager builds an engine manager. python selects the interpreter
// for the helper process; empty means the default.
func NewManager(python string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		python: python,
		logger: logging.WithComponent(logger, "engine"),
		start: func(ctx context.Context, opts WorkerOptions) (Engine, error) {
			return StartWorker(ctx, opts)
		},
		detect: DetectCapability,
	}
}

// Acquire returns an engine loaded with the requested model on the
// requested device mode. Reuse compares the resolved (device, compute)
// pair, not the mode itself, so switching AUTO to GPU on a CUDA host
// keeps the loaded model.
func (m *Manager) Acquire(ctx context.Context, model, deviceMode string) (Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	capability := m.capabilityLocked(ctx)
	device, compute := ResolveDevice(deviceMode, capability)
	if device == deviceCPU && deviceMode != config.DeviceCPU && !m.warnedNoCUDA {
		m.warnedNoCUDA = true
		m.logger.Warn("no CUDA device available, falling back to CPU")
	}

	if m.engine != nil && m.model == model && m.device == device && m.compute == compute {
		m.deviceMode = deviceMode
		return m.engine, nil
	}
	if m.engine != nil {
		m.logger.Info("swapping model",
			logging.String("from", m.model),
			logging.String("to", model))
		m.closeLocked()
	}

	m.logger.Info("loading model",
		logging.String(logging.FieldModel, model),
		logging.String(logging.FieldDevice, device))
	engine, err := m.start(ctx, WorkerOptions{
		Python:  m.python,
		Model:   model,
		Device:  device,
		Compute: compute,
		Logger:  m.logger,
	})
	if err != nil {
		return nil, err
	}
	m.engine = engine
	m.model = model
	m.deviceMode = deviceMode
	m.device = device
	m.compute = compute
	return engine, nil
}

// Unload releases the current engine and frees its memory. A later
// Acquire reloads from scratch.
func (m *Manager) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engine == nil {
		return
	}
	m.logger.Info("unloading model", logging.String(logging.FieldModel, m.model))
	m.closeLocked()
	runtime.GC()
}

// Reset drops the loaded engine without touching the device probe
// cache, forcing the next Acquire to reload.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// State reports the manager's current contents. It probes the GPU if
// that has not happened yet.
func (m *Manager) State(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	capability := m.capabilityLocked(ctx)
	return State{
		Loaded:       m.engine != nil,
		Model:        m.model,
		DeviceMode:   m.deviceMode,
		Device:       m.device,
		Compute:      m.compute,
		GPUAvailable: capability.Available,
		GPUName:      capability.Name,
	}
}

func (m *Manager) capabilityLocked(ctx context.Context) Capability {
	if !m.probed {
		m.capability = m.detect(ctx)
		m.probed = true
		if m.capability.Available {
			m.logger.Info("CUDA device detected",
				logging.String("gpu", m.capability.Name),
				logging.Int("compute_major", m.capability.ComputeMajor))
		}
	}
	return m.capability
}

func (m *Manager) closeLocked() {
	if m.engine == nil {
		return
	}
	if err := m.engine.Close(); err != nil {
		m.logger.Warn("engine shutdown", logging.Error(err))
	}
	m.engine = nil
	m.model = ""
	m.deviceMode = ""
	m.device = ""
	m.compute = ""
}
