package model

// NormalizeCharacter maps a raw character entry into the domain record shape.
// Relation references are resolved to identifiers; an unresolvable reference
// leaves the field absent rather than failing the record.
func NormalizeCharacter(raw RawCharacter) Character {
	c := Character{
		ID:           int(raw.ID),
		Name:         raw.Name,
		Status:       raw.Status,
		Species:      raw.Species,
		Type:         raw.Type,
		Gender:       raw.Gender,
		OriginName:   raw.Origin.Name,
		LocationName: raw.Location.Name,
		Image:        raw.Image,
		EpisodeCount: len(raw.Episode),
		Created:      raw.Created,
	}

	if id, ok := raw.Origin.Resolve(); ok {
		c.OriginID = &id
	}
	if id, ok := raw.Location.Resolve(); ok {
		c.LocationID = &id
	}

	return c
}

// NormalizeLocation maps a raw location entry into the domain record shape.
// Resident references that cannot be resolved are dropped from the ID list;
// the resident count still reflects the full raw list.
func NormalizeLocation(raw RawLocation) Location {
	l := Location{
		ID:            int(raw.ID),
		Name:          raw.Name,
		Type:          raw.Type,
		Dimension:     raw.Dimension,
		ResidentCount: len(raw.Residents),
		Created:       raw.Created,
	}

	for _, ref := range raw.Residents {
		if id, ok := ref.Resolve(); ok {
			l.ResidentIDs = append(l.ResidentIDs, id)
		}
	}

	return l
}
