package history

import "strings"

// ComputeDomain returns the domain part of an entity id ("sensor" for
// "sensor.kitchen"). An id without a dot yields "".
func ComputeDomain(entityID string) string {
	domain, _, ok := strings.Cut(entityID, ".")
	if !ok {
		return ""
	}
	return domain
}

// ComputeObjectID returns the object part of an entity id ("kitchen" for
// "sensor.kitchen").
func ComputeObjectID(entityID string) string {
	_, object, ok := strings.Cut(entityID, ".")
	if !ok {
		return entityID
	}
	return object
}

// ComputeStateName returns the display name of an observation: its
// friendly_name attribute, or the object id with underscores as spaces.
func ComputeStateName(obs Observation) string {
	if name, ok := obs.Attributes.String(AttrFriendlyName); ok && name != "" {
		return name
	}
	return strings.ReplaceAll(ComputeObjectID(obs.EntityID), "_", " ")
}

// entityRecords is one entity's observations together with the identity
// resolved across the whole sequence.
//
// Minimal responses send full records only at the ends of a sequence;
// intermediate records carry just state and last_changed. Records lacking
// an entity id are marked sparse and borrow identity and attributes from
// the last record when a display value is needed.
type entityRecords struct {
	entityID     string
	domain       string
	observations []Observation
	sparse       []bool
	fallback     Attributes
}

// normalizeEntity resolves the identity of one entity's observations.
// It returns false when the sequence is empty or no record names the entity.
func normalizeEntity(obs EntityHistory) (entityRecords, bool) {
	if len(obs) == 0 {
		return entityRecords{}, false
	}

	first, last := obs[0], obs[len(obs)-1]
	entityID := first.EntityID
	if entityID == "" {
		entityID = last.EntityID
	}
	if entityID == "" {
		for _, o := range obs {
			if o.EntityID != "" {
				entityID = o.EntityID
				break
			}
		}
	}
	if entityID == "" {
		return entityRecords{}, false
	}

	sparse := make([]bool, len(obs))
	for i, o := range obs {
		sparse[i] = o.EntityID == ""
	}

	return entityRecords{
		entityID:     entityID,
		domain:       ComputeDomain(entityID),
		observations: obs,
		sparse:       sparse,
		fallback:     last.Attributes,
	}, true
}

// display returns the i-th observation with a resolved entity id. Sparse
// records always take the attributes of the last record, even when they
// carry some of their own.
func (e entityRecords) display(i int) Observation {
	o := e.observations[i]
	if e.sparse[i] {
		o.EntityID = e.entityID
		o.Attributes = e.fallback
	}
	return o
}

// head returns the first observation with a resolved entity id.
func (e entityRecords) head() Observation {
	return e.display(0)
}

// tail returns the last observation with a resolved entity id.
func (e entityRecords) tail() Observation {
	return e.display(len(e.observations) - 1)
}

// unit resolves the unit of measurement. The first observation carrying the
// attribute wins, even when its value is empty; otherwise the domain table
// applies.
func (e entityRecords) unit(temperatureUnit string) string {
	for _, o := range e.observations {
		if v, ok := o.Attributes[AttrUnitOfMeasurement]; ok {
			s, _ := v.(string)
			return s
		}
	}
	unit, _ := DomainUnit(e.domain, temperatureUnit)
	return unit
}

// path extracts the geographic trail, in order, from observations carrying
// finite numeric latitude and longitude.
func (e entityRecords) path() []LatLng {
	var points []LatLng
	for _, o := range e.observations {
		lat, okLat := o.Attributes.Number(AttrLatitude)
		lng, okLng := o.Attributes.Number(AttrLongitude)
		if okLat && okLng {
			points = append(points, LatLng{Latitude: lat, Longitude: lng})
		}
	}
	return points
}
