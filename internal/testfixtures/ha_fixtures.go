// Package testfixtures provides a fake Home Assistant WebSocket server and
// factory functions for history payloads used across package tests.
package testfixtures

import (
	"time"
)

// Map is a shorthand for map[string]any used in JSON structures.
type Map = map[string]any

// HAMessage represents a message from the Home Assistant WebSocket API.
type HAMessage struct {
	ID      int      `json:"id,omitempty"`
	Type    string   `json:"type"`
	Success *bool    `json:"success,omitempty"`
	Result  any      `json:"result,omitempty"`
	Error   *HAError `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
}

// HAError represents an error response from Home Assistant.
type HAError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// CommonEntityIDs provides common test entity IDs used across tests.
var CommonEntityIDs = struct {
	Sensor       string
	BinarySensor string
	Person       string
	Climate      string
	Counter      string
	Light        string
}{
	Sensor:       "sensor.temperature",
	BinarySensor: "binary_sensor.motion",
	Person:       "person.alice",
	Climate:      "climate.living_room",
	Counter:      "counter.visitors",
	Light:        "light.living_room",
}

// BaseTime is a fixed instant used by history fixtures.
var BaseTime = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// =====================================
// HAMessage Fixtures
// =====================================

// BoolPtr returns a pointer to a bool value.
func BoolPtr(b bool) *bool {
	return &b
}

// NewSuccessMessage creates a successful HAMessage response.
func NewSuccessMessage(id int, result any) HAMessage {
	return HAMessage{
		ID:      id,
		Type:    "result",
		Success: BoolPtr(true),
		Result:  result,
	}
}

// NewErrorMessage creates an error HAMessage response.
func NewErrorMessage(id int, code, message string) HAMessage {
	return HAMessage{
		ID:      id,
		Type:    "result",
		Success: BoolPtr(false),
		Error: &HAError{
			Code:    code,
			Message: message,
		},
	}
}

// NewAuthRequiredMessage creates an auth_required message.
func NewAuthRequiredMessage() HAMessage {
	return HAMessage{Type: "auth_required"}
}

// NewAuthOKMessage creates an auth_ok message.
func NewAuthOKMessage() HAMessage {
	return HAMessage{Type: "auth_ok"}
}

// NewAuthInvalidMessage creates an auth_invalid message.
func NewAuthInvalidMessage(message string) HAMessage {
	return HAMessage{
		Type:    "auth_invalid",
		Message: message,
	}
}

// NewPongMessage creates a pong response message.
func NewPongMessage(id int) HAMessage {
	return HAMessage{
		ID:   id,
		Type: "pong",
	}
}

// NewHAConfig creates a get_config result.
func NewHAConfig(temperatureUnit string) Map {
	return Map{
		"version":       "2024.6.0",
		"location_name": "Test Home",
		"time_zone":     "Europe/Amsterdam",
		"language":      "en",
		"unit_system": map[string]string{
			"length":      "km",
			"temperature": temperatureUnit,
		},
		"components": []string{"history", "recorder"},
	}
}

// =====================================
// History Fixtures
// =====================================

// Unix returns BaseTime plus the given minutes as float Unix seconds.
func Unix(minutes int) float64 {
	return float64(BaseTime.Add(time.Duration(minutes) * time.Minute).Unix())
}

// ISO returns BaseTime plus the given minutes as an ISO 8601 string.
func ISO(minutes int) string {
	return BaseTime.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339)
}

// CompactState creates a compact-format history record as sent by
// history/history_during_period. Nil attributes are omitted.
func CompactState(state string, minute int, attrs Map) Map {
	m := Map{
		"s":  state,
		"lc": Unix(minute),
	}
	if attrs != nil {
		m["a"] = attrs
	}
	return m
}

// FullState creates a REST-format history record.
func FullState(entityID, state string, minute int, attrs Map) Map {
	m := Map{
		"entity_id":    entityID,
		"state":        state,
		"last_changed": ISO(minute),
		"last_updated": ISO(minute),
	}
	if attrs != nil {
		m["attributes"] = attrs
	}
	return m
}

// MinimalState creates an intermediate minimal_response record.
func MinimalState(state string, minute int) Map {
	return Map{
		"state":        state,
		"last_changed": ISO(minute),
	}
}

// SensorHistory creates compact records for a numeric sensor with a unit.
func SensorHistory(unit string, states ...string) []Map {
	out := make([]Map, 0, len(states))
	for i, s := range states {
		out = append(out, CompactState(s, i, Map{"unit_of_measurement": unit}))
	}
	return out
}

// StatEntry creates a statistics entry at BaseTime plus minutes.
func StatEntry(minute int, mean, minV, maxV float64) Map {
	return Map{
		"start": Unix(minute) * 1000,
		"end":   Unix(minute+60) * 1000,
		"mean":  mean,
		"min":   minV,
		"max":   maxV,
	}
}
