package history

import (
	"reflect"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ComputeHistory shapes one raw history response into line, timeline and map
// collections. Entities with no observations, or with no entity id on any
// observation, are skipped. raw is never modified.
//
// An entity with coordinates appears in the map output and is also routed to
// either the line or the timeline output.
func ComputeHistory(cfg Config, raw RawHistory, localize LocalizeFunc) Result {
	result := emptyResult()
	if len(raw) == 0 {
		return result
	}

	var units []string
	byUnit := make(map[string][]entityRecords)

	for _, obs := range raw {
		rec, ok := normalizeEntity(obs)
		if !ok {
			continue
		}

		if points := rec.path(); len(points) > 0 {
			color := ColorByIndex(len(result.Map.Entities))
			result.Map.Entities = append(result.Map.Entities, MapEntity{
				EntityID: rec.entityID,
				Color:    color,
			})
			result.Map.Paths = append(result.Map.Paths, MapPath{
				Points:         points,
				Color:          color,
				GradualOpacity: mapPathOpacity,
			})
		}

		unit := rec.unit(cfg.TemperatureUnit)
		if unit == "" {
			result.Timeline = append(result.Timeline, processTimelineEntity(localize, cfg.Locale, rec))
			continue
		}

		if _, seen := byUnit[unit]; !seen {
			units = append(units, unit)
		}
		byUnit[unit] = append(byUnit[unit], rec)
	}

	result.Line = lo.Map(units, func(unit string, _ int) LineChartUnit {
		return processLineChartEntities(unit, byUnit[unit])
	})
	return result
}

// processTimelineEntity keeps only state transitions and localizes each one.
func processTimelineEntity(localize LocalizeFunc, locale Locale, rec entityRecords) TimelineEntity {
	data := make([]TimelineState, 0, len(rec.observations))
	for i, o := range rec.observations {
		if n := len(data); n > 0 && data[n-1].State == o.State {
			continue
		}
		data = append(data, TimelineState{
			StateLocalize: StateDisplay(localize, rec.display(i), locale),
			State:         o.State,
			LastChanged:   changedAt(o),
		})
	}

	head := rec.head()
	return TimelineEntity{
		Name:     ComputeStateName(head),
		EntityID: head.EntityID,
		Data:     data,
	}
}

// processLineChartEntities builds the series of one unit group.
func processLineChartEntities(unit string, group []entityRecords) LineChartUnit {
	ids := lo.Map(group, func(rec entityRecords, _ int) string {
		return rec.entityID
	})
	return LineChartUnit{
		Unit:       unit,
		Identifier: strings.Join(ids, ""),
		Data:       lo.Map(group, func(rec entityRecords, _ int) LineChartEntity { return processLineChartEntity(rec) }),
	}
}

func processLineChartEntity(rec entityRecords) LineChartEntity {
	last := rec.tail()
	domain := ComputeDomain(last.EntityID)
	byUpdate := UsesLastUpdated(domain)

	states := make([]LineChartState, 0, len(rec.observations))
	for _, o := range rec.observations {
		point := LineChartState{
			State:       o.State,
			LastChanged: changedAt(o),
			Attributes:  o.Attributes,
		}
		if byUpdate {
			point.LastChanged = updatedAt(o)
			point.Attributes = o.Attributes.Project(lineAttributesToKeep)
		}

		// Drop a point only inside a flat run: it must match both of the
		// last two retained points.
		if n := len(states); n > 1 && equalState(point, states[n-1]) && equalState(point, states[n-2]) {
			continue
		}
		states = append(states, point)
	}

	return LineChartEntity{
		Domain:   domain,
		Name:     ComputeStateName(last),
		EntityID: last.EntityID,
		States:   states,
	}
}

// equalState compares two line points. Points without attributes compare on
// state alone.
func equalState(a, b LineChartState) bool {
	if a.State != b.State {
		return false
	}
	if a.Attributes == nil || b.Attributes == nil {
		return true
	}
	return lo.EveryBy(lineAttributesToKeep, func(key string) bool {
		va, okA := a.Attributes[key]
		vb, okB := b.Attributes[key]
		if okA != okB {
			return false
		}
		return reflect.DeepEqual(va, vb)
	})
}

func changedAt(o Observation) time.Time {
	if o.LastChanged.IsZero() {
		return o.LastUpdated
	}
	return o.LastChanged
}

func updatedAt(o Observation) time.Time {
	if o.LastUpdated.IsZero() {
		return o.LastChanged
	}
	return o.LastUpdated
}
