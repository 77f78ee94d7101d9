// Package config owns the persisted settings file and the application state
// directory. The on-disk schema is a JSON object with fixed keys; unknown
// keys are tolerated and missing keys fall back to defaults, so older and
// newer builds can share one file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magnusua/WhisperFastGUI/internal/fileutil"
)

// Device modes a user can request. AUTO and GPU resolve to CUDA only when
// hardware acceleration is actually present.
const (
	DeviceAuto = "AUTO"
	DeviceGPU  = "GPU"
	DeviceCPU  = "CPU"
)

// LanguageAuto asks the engine to detect the spoken language itself.
const LanguageAuto = "auto"

// Settings mirrors the persisted settings.json object.
type Settings struct {
	Language        string `json:"language"`
	OutputDir       string `json:"output_dir"`
	WatchDir        string `json:"watch_dir"`
	WatchEnabled    bool   `json:"watch_enabled"`
	DeviceMode      string `json:"device_mode"`
	PlaySoundOnDone bool   `json:"play_sound_on_finish"`
	SaveAudio       bool   `json:"save_audio_mp3"`
	TrayMode        string `json:"tray_mode"`
	WhisperModel    string `json:"whisper_model"`
	NotifyTopic     string `json:"notify_topic"`
	LogLevel        string `json:"log_level"`
}

// Store loads and saves settings and anchors all state-file paths.
type Store struct {
	stateDir string
}

// NewStore anchors a settings store at stateDir; empty selects the default
// per-user state directory.
func NewStore(stateDir string) (*Store, error) {
	dir := strings.TrimSpace(stateDir)
	if dir == "" {
		dir = DefaultStateDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	return &Store{stateDir: dir}, nil
}

// DefaultStateDir resolves the per-user state directory.
func DefaultStateDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "whisperfast")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".whisperfast"
	}
	return filepath.Join(home, ".whisperfast")
}

// StateDir returns the resolved state directory.
func (s *Store) StateDir() string { return s.stateDir }

// SettingsPath returns the settings file location.
func (s *Store) SettingsPath() string { return filepath.Join(s.stateDir, "settings.json") }

// QueuePath returns the persisted queue file location.
func (s *Store) QueuePath() string { return filepath.Join(s.stateDir, "request_queue.json") }

// LockPath returns the processing-lock file location.
func (s *Store) LockPath() string { return filepath.Join(s.stateDir, "whisperfast.lock") }

// LogPath returns the session log file location.
func (s *Store) LogPath() string { return filepath.Join(s.stateDir, "whisperfast.log") }

// Load reads settings.json, creating it with defaults on first run. A
// corrupt file degrades to defaults rather than failing startup.
func (s *Store) Load() Settings {
	path := s.SettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		settings := Default()
		_ = s.Save(settings)
		return settings
	}

	settings := Default()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Default()
	}
	return Normalize(settings)
}

// Save writes the settings file atomically; the error is informational, a
// failed save never blocks the caller.
func (s *Store) Save(settings Settings) error {
	data, err := json.MarshalIndent(Normalize(settings), "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return fileutil.WriteAtomic(s.SettingsPath(), append(data, '\n'), 0o644)
}

// Normalize coerces out-of-range values back to defaults.
func Normalize(settings Settings) Settings {
	switch strings.ToUpper(strings.TrimSpace(settings.DeviceMode)) {
	case DeviceGPU:
		settings.DeviceMode = DeviceGPU
	case DeviceCPU:
		settings.DeviceMode = DeviceCPU
	default:
		settings.DeviceMode = DeviceAuto
	}

	if !KnownModel(settings.WhisperModel) {
		settings.WhisperModel = DefaultModel
	}
	if strings.TrimSpace(settings.Language) == "" {
		settings.Language = LanguageAuto
	}
	if !validTrayMode(settings.TrayMode) {
		settings.TrayMode = defaultTrayMode
	}
	if strings.TrimSpace(settings.LogLevel) == "" {
		settings.LogLevel = defaultLogLevel
	}
	return settings
}

func validTrayMode(mode string) bool {
	switch mode {
	case "panel", "tray", "panel_tray":
		return true
	default:
		return false
	}
}
