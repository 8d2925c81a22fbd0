// Package config loads ha-history settings from built-in defaults, an
// optional YAML file and the environment, in that order of precedence.
package config

import (
	"os"
	"time"
)

// DefaultConfigPaths lists the files searched when no path is given.
// The first one found is used.
var DefaultConfigPaths = []string{
	"ha-history.yaml",
	"ha-history.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "HA_HISTORY_CONFIG"

// Config holds all ha-history settings.
type Config struct {
	HomeAssistant HomeAssistantConfig `koanf:"home_assistant" validate:"required"`
	Units         UnitsConfig         `koanf:"units"`
	Locale        LocaleConfig        `koanf:"locale"`
	Log           LogConfig           `koanf:"log"`
	History       HistoryConfig       `koanf:"history"`
}

// HomeAssistantConfig describes how to reach Home Assistant.
type HomeAssistantConfig struct {
	WebSocketURL string        `koanf:"websocket_url" validate:"required,url"`
	RESTURL      string        `koanf:"rest_url"      validate:"omitempty,url"`
	Token        string        `koanf:"token"`
	Timeout      time.Duration `koanf:"timeout"       validate:"gt=0"`
}

// UnitsConfig overrides units reported by Home Assistant.
type UnitsConfig struct {
	// Temperature is used for climate and water heater entities. Empty means
	// the unit from get_config.
	Temperature string `koanf:"temperature"`
}

// LocaleConfig selects the display language and extra translations.
type LocaleConfig struct {
	Language     string `koanf:"language"     validate:"required"`
	Translations string `koanf:"translations"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"loglevel"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// HistoryConfig holds query defaults.
type HistoryConfig struct {
	Hours                  int  `koanf:"hours"                    validate:"gt=0"`
	MinimalResponse        bool `koanf:"minimal_response"`
	SignificantChangesOnly bool `koanf:"significant_changes_only"`
	SkipInitialState       bool `koanf:"skip_initial_state"`
}

// Window returns the default history span.
func (h HistoryConfig) Window() time.Duration {
	return time.Duration(h.Hours) * time.Hour
}

func defaultConfig() *Config {
	return &Config{
		HomeAssistant: HomeAssistantConfig{
			WebSocketURL: "ws://supervisor/core/api/websocket",
			Timeout:      30 * time.Second,
		},
		Locale: LocaleConfig{
			Language: "en",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		History: HistoryConfig{
			Hours:           24,
			MinimalResponse: true,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
