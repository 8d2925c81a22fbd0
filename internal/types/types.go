// Package types provides wire type definitions for the Home Assistant WebSocket and REST APIs.
package types

import (
	"math"
	"time"
)

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

// HAConfig represents the subset of the Home Assistant configuration used for chart defaults.
type HAConfig struct {
	Version      string            `json:"version"`
	LocationName string            `json:"location_name"`
	TimeZone     string            `json:"time_zone"`
	Language     string            `json:"language,omitempty"`
	UnitSystem   map[string]string `json:"unit_system"`
	Components   []string          `json:"components"`
}

// TemperatureUnit returns the configured temperature unit, or "" when unknown.
func (c *HAConfig) TemperatureUnit() string {
	if c == nil || c.UnitSystem == nil {
		return ""
	}
	return c.UnitSystem["temperature"]
}

// HistoryState represents a historical state entry.
// The WebSocket API sends the compact format (s/a/lc/lu with float Unix
// seconds); the REST API sends the full format.
type HistoryState struct {
	// Compact format fields
	LU float64        `json:"lu,omitempty"` // Last updated (Unix timestamp)
	LC float64        `json:"lc,omitempty"` // Last changed (Unix timestamp)
	S  string         `json:"s,omitempty"`  // State
	A  map[string]any `json:"a,omitempty"`  // Attributes

	// Full format fields
	EntityID    string         `json:"entity_id,omitempty"`
	LastUpdated string         `json:"last_updated,omitempty"`
	LastChanged string         `json:"last_changed,omitempty"`
	State       string         `json:"state,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// GetState returns the state value (handles both compact and full format).
func (h *HistoryState) GetState() string {
	if h.S != "" {
		return h.S
	}
	return h.State
}

// GetAttributes returns the attributes (handles both compact and full format).
func (h *HistoryState) GetAttributes() map[string]any {
	if h.A != nil {
		return h.A
	}
	return h.Attributes
}

// GetLastUpdated returns the last updated time.
// In the compact format an omitted lu means it equals lc.
func (h *HistoryState) GetLastUpdated() time.Time {
	if h.LU > 0 {
		return unixFloat(h.LU)
	}
	if h.LastUpdated != "" {
		return parseTime(h.LastUpdated)
	}
	return h.GetLastChanged()
}

// GetLastChanged returns the last changed time.
func (h *HistoryState) GetLastChanged() time.Time {
	if h.LC > 0 {
		return unixFloat(h.LC)
	}
	if h.LastChanged != "" {
		return parseTime(h.LastChanged)
	}
	if h.LU > 0 {
		return unixFloat(h.LU)
	}
	if h.LastUpdated != "" {
		return parseTime(h.LastUpdated)
	}
	return time.Time{}
}

func unixFloat(ts float64) time.Time {
	// Some integrations report milliseconds.
	if ts > 1e12 {
		ts /= 1000
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StatEntry represents a statistics entry for a sensor.
type StatEntry struct {
	Start any      `json:"start"` // Can be float64 (Unix timestamp) or string (ISO format)
	End   any      `json:"end,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Mean  *float64 `json:"mean,omitempty"`
	Sum   *float64 `json:"sum,omitempty"`
	State *float64 `json:"state,omitempty"`
}

// GetStartTime returns the start time.
// Timestamps above 1e12 are treated as milliseconds.
func (s *StatEntry) GetStartTime() time.Time {
	switch v := s.Start.(type) {
	case float64:
		return unixFloat(v)
	case string:
		return parseTime(v)
	default:
		return time.Time{}
	}
}

// TimeRange represents a time range for history queries.
type TimeRange struct {
	StartTime time.Time
	EndTime   time.Time
}
