package history

import "slices"

// Domains whose line points are keyed on last_updated and carry projected attributes.
var lastUpdatedDomains = []string{"climate", "humidifier", "water_heater"}

// Attributes kept when projecting a last-updated-domain observation.
var lineAttributesToKeep = []string{
	"temperature",
	"current_temperature",
	"target_temp_low",
	"target_temp_high",
	"hvac_action",
	"humidity",
	"mode",
}

// Fallback units for entities that report no unit_of_measurement.
// An empty value means the configured temperature unit.
var domainUnits = map[string]string{
	"climate":      "",
	"counter":      "#",
	"humidifier":   "%",
	"input_number": "#",
	"number":       "#",
	"water_heater": "",
}

var palette = []string{
	"#44739e", "#984ea3", "#00d2d5", "#ff7f00", "#af8d00", "#7f80cd",
	"#b3e900", "#c42e60", "#a65628", "#f781bf", "#8dd3c7", "#bebada",
	"#fb8072", "#80b1d3", "#fdb462", "#fccde5", "#bc80bd", "#ffed6f",
	"#c4eaff", "#cf8c00", "#1b9e77", "#d95f02", "#e7298a", "#e6ab02",
	"#a6761d", "#0097ff", "#00d067", "#f43600", "#4ba93b", "#5779bb",
	"#927acc", "#97ee3f", "#bf3947", "#9f5b00", "#f48758", "#8caed6",
	"#f2b94f", "#eff26e", "#e43872", "#d9b100", "#9d7a00", "#698cff",
	"#d9d9d9", "#00d27e", "#d06800", "#009f82", "#c49200", "#cbe8ff",
	"#fecddf", "#c27eb6", "#8cd2ce", "#c4b8d9", "#f883b0", "#a49100",
	"#f48800", "#27d0df", "#a04a9b",
}

// mapPathOpacity is the gradual opacity applied to every map path.
const mapPathOpacity = 0.8

// ColorByIndex returns the palette color for a position, cycling when the
// index exceeds the palette.
func ColorByIndex(index int) string {
	if index < 0 {
		index = -index
	}
	return palette[index%len(palette)]
}

// UsesLastUpdated reports whether a domain's line points are keyed on
// last_updated instead of last_changed.
func UsesLastUpdated(domain string) bool {
	return slices.Contains(lastUpdatedDomains, domain)
}

// DomainUnit returns the fallback unit for a domain. Climate and water heater
// entities resolve to temperatureUnit.
func DomainUnit(domain, temperatureUnit string) (string, bool) {
	unit, ok := domainUnits[domain]
	if !ok {
		return "", false
	}
	if unit == "" {
		return temperatureUnit, true
	}
	return unit, true
}
