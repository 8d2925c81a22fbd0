package history

import (
	"strconv"

	"github.com/home-assistant-blueprints/ha-history-go/internal/localize"
)

// StateDisplay renders an observation's state as a human-readable label.
//
// Lookup order:
//   - unknown and unavailable use state.default.<state>
//   - numeric states with a unit are formatted for the locale
//   - component.<domain>.state.<device_class>.<state>
//   - component.<domain>.state._.<state>
//   - the raw state
func StateDisplay(fn LocalizeFunc, obs Observation, locale Locale) string {
	if fn == nil {
		fn = func(string) string { return "" }
	}

	state := obs.State
	if state == "unknown" || state == "unavailable" {
		if s := fn("state.default." + state); s != "" {
			return s
		}
		return state
	}

	if unit, ok := obs.Attributes.String(AttrUnitOfMeasurement); ok && unit != "" {
		if v, err := strconv.ParseFloat(state, 64); err == nil {
			num := localize.FormatNumber(locale.Language, v)
			if unit == "%" {
				return num + unit
			}
			return num + " " + unit
		}
	}

	domain := ComputeDomain(obs.EntityID)
	if dc, ok := obs.Attributes.String(AttrDeviceClass); ok && dc != "" {
		if s := fn("component." + domain + ".state." + dc + "." + state); s != "" {
			return s
		}
	}
	if s := fn("component." + domain + ".state._." + state); s != "" {
		return s
	}
	return state
}
