package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
)

// envMappings maps environment variable names (lower-cased) to config keys.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"supervisor_token": "home_assistant.token",

	"ha_history_url":      "home_assistant.websocket_url",
	"ha_history_rest_url": "home_assistant.rest_url",
	"ha_history_token":    "home_assistant.token",
	"ha_history_timeout":  "home_assistant.timeout",

	"ha_history_temperature_unit": "units.temperature",

	"ha_history_language":     "locale.language",
	"ha_history_translations": "locale.translations",

	"ha_history_log_level":  "log.level",
	"ha_history_log_format": "log.format",
	"ha_history_log_caller": "log.caller",

	"ha_history_hours":                    "history.hours",
	"ha_history_minimal_response":         "history.minimal_response",
	"ha_history_significant_changes_only": "history.significant_changes_only",
	"ha_history_skip_initial_state":       "history.skip_initial_state",
}

// Load builds the configuration in three layers:
//  1. built-in defaults
//  2. the YAML file at path, or the first of DefaultConfigPaths if path is ""
//  3. environment variables
//
// HA_HISTORY_TOKEN takes precedence over SUPERVISOR_TOKEN.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeInternal, err, "failed to load defaults")
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.ErrInvalidConfig(path, "cannot load config file").WithCause(err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, err, "failed to load environment variables")
	}
	if token := os.Getenv("HA_HISTORY_TOKEN"); token != "" {
		if err := k.Set("home_assistant.token", token); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInternal, err, "failed to set token")
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.ErrInvalidConfig(path, "cannot decode configuration").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// redacted replaces a secret in Settings output.
const redacted = "********"

// Settings returns the configuration as flat dotted keys, the shape used by
// config files and the environment. The token is masked.
func (c *Config) Settings() map[string]any {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return map[string]any{}
	}
	settings := k.All()
	if token, _ := settings["home_assistant.token"].(string); token != "" {
		settings["home_assistant.token"] = redacted
	}
	return settings
}
