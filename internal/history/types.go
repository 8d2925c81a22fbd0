// Package history shapes raw Home Assistant state history into presentation
// models: line-chart series grouped by unit, state timelines, and map paths.
//
// ComputeHistory is a pure function. It holds no state between calls, never
// returns an error, and skips malformed input instead of failing.
package history

import (
	"math"
	"time"
)

// Attribute keys with special meaning to the processor.
const (
	AttrUnitOfMeasurement = "unit_of_measurement"
	AttrFriendlyName      = "friendly_name"
	AttrDeviceClass       = "device_class"
	AttrLatitude          = "latitude"
	AttrLongitude         = "longitude"
)

// Attributes is the string-keyed attribute bag carried by an observation.
// A nil Attributes means the record was sent without attributes.
type Attributes map[string]any

// Project returns a new Attributes holding only the listed keys that are
// present. The result is never nil.
func (a Attributes) Project(keys []string) Attributes {
	out := make(Attributes, len(keys))
	for _, k := range keys {
		if v, ok := a[k]; ok {
			out[k] = v
		}
	}
	return out
}

// String returns the attribute as a string when it is one.
func (a Attributes) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// Number returns the attribute as a finite float64 when it is numeric.
func (a Attributes) Number(key string) (float64, bool) {
	var f float64
	switch v := a[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Observation is one state record for one entity at one instant.
// Records inside a minimal response may omit EntityID and Attributes.
type Observation struct {
	EntityID    string     `json:"entity_id,omitempty"`
	State       string     `json:"state"`
	Attributes  Attributes `json:"attributes,omitempty"`
	LastChanged time.Time  `json:"last_changed,omitzero"`
	LastUpdated time.Time  `json:"last_updated,omitzero"`
}

// EntityHistory is the chronological sequence of observations for one entity.
type EntityHistory []Observation

// RawHistory is one history response: one EntityHistory per queried entity.
type RawHistory []EntityHistory

// LocalizeFunc maps a translation key to a display string.
// It returns "" when the key is unknown.
type LocalizeFunc func(key string) string

// Locale carries the display settings used to render timeline labels.
type Locale struct {
	Language string `json:"language"`
}

// Config supplies the unit-system defaults and locale for ComputeHistory.
type Config struct {
	TemperatureUnit string `json:"temperature_unit"`
	Locale          Locale `json:"locale"`
}

// LineChartState is one retained point of a line-chart series.
type LineChartState struct {
	State       string     `json:"state"`
	LastChanged time.Time  `json:"last_changed"`
	Attributes  Attributes `json:"attributes,omitempty"`
}

// LineChartEntity is the compressed numeric series for one entity.
type LineChartEntity struct {
	Domain   string           `json:"domain"`
	Name     string           `json:"name"`
	EntityID string           `json:"entity_id"`
	States   []LineChartState `json:"states"`
}

// LineChartUnit groups all series that share a unit of measurement.
type LineChartUnit struct {
	Unit       string            `json:"unit"`
	Identifier string            `json:"identifier"`
	Data       []LineChartEntity `json:"data"`
}

// TimelineState is one state transition of a timeline entity.
type TimelineState struct {
	StateLocalize string    `json:"state_localize"`
	State         string    `json:"state"`
	LastChanged   time.Time `json:"last_changed"`
}

// TimelineEntity is the run-length compressed state timeline of one entity.
type TimelineEntity struct {
	Name     string          `json:"name"`
	EntityID string          `json:"entity_id"`
	Data     []TimelineState `json:"data"`
}

// LatLng is a geographic coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapEntity is a map marker entry.
type MapEntity struct {
	EntityID string `json:"entity_id"`
	Color    string `json:"color"`
}

// MapPath is the trail of one entity on the map.
type MapPath struct {
	Points         []LatLng `json:"points"`
	Color          string   `json:"color"`
	GradualOpacity float64  `json:"gradual_opacity"`
}

// MapData holds the map markers and trails.
type MapData struct {
	Entities []MapEntity `json:"entities"`
	Paths    []MapPath   `json:"paths"`
}

// Result is the shaped history. All collections are non-nil.
type Result struct {
	Line     []LineChartUnit  `json:"line"`
	Timeline []TimelineEntity `json:"timeline"`
	Map      MapData          `json:"map"`
}

// IsEmpty reports whether the result holds no data in any collection.
func (r Result) IsEmpty() bool {
	return len(r.Line) == 0 && len(r.Timeline) == 0 &&
		len(r.Map.Entities) == 0 && len(r.Map.Paths) == 0
}

func emptyResult() Result {
	return Result{
		Line:     []LineChartUnit{},
		Timeline: []TimelineEntity{},
		Map: MapData{
			Entities: []MapEntity{},
			Paths:    []MapPath{},
		},
	}
}
