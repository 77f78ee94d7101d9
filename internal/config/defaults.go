package config

// DefaultModel balances speed and quality on consumer hardware.
const DefaultModel = "large-v3-turbo"

const (
	defaultTrayMode = "panel"
	defaultLogLevel = "info"
)

// whisperModels is the known engine model catalog, from fastest to largest.
var whisperModels = []string{
	"tiny",
	"base",
	"small",
	"medium",
	"large-v2",
	"large-v3",
	"large-v3-turbo",
}

// Models returns the known model catalog in size order.
func Models() []string {
	cp := make([]string, len(whisperModels))
	copy(cp, whisperModels)
	return cp
}

// KnownModel reports whether name is in the catalog.
func KnownModel(name string) bool {
	for _, model := range whisperModels {
		if model == name {
			return true
		}
	}
	return false
}

// Default returns the settings written on first run.
func Default() Settings {
	return Settings{
		Language:     LanguageAuto,
		DeviceMode:   DeviceAuto,
		TrayMode:     defaultTrayMode,
		WhisperModel: DefaultModel,
		LogLevel:     defaultLogLevel,
	}
}
