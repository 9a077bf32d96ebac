package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// The REST and GraphQL endpoints return structurally different entries for
// the same resources: REST identifies entities by number and relations by
// resource URL, GraphQL identifies both by an ID scalar serialized as a
// string. The raw types below absorb both shapes so a single normalizer
// serves both transports.

// EntityID unmarshals either a JSON number (REST) or a string ID scalar
// (GraphQL). A value that is neither is a malformed entry: the identifier is
// a mandatory field, so the error propagates and fails the page parse.
type EntityID int

// UnmarshalJSON implements json.Unmarshaler.
func (e *EntityID) UnmarshalJSON(b []byte) error {
	s := trimQuotes(b)
	if s == "" || s == "null" {
		*e = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("entity id %q is not numeric: %w", s, err)
	}
	*e = EntityID(n)
	return nil
}

func trimQuotes(b []byte) string {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

// RawRef is a relation reference as it appears on the wire. REST populates
// Name and URL; GraphQL populates ID and Name. Either side may be null or
// junk, which is why resolution degrades instead of erroring.
type RawRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Resolve returns the referenced entity's identifier, preferring the direct
// ID scalar and falling back to parsing the resource URL. Unresolvable
// references yield (0, false).
func (r RawRef) Resolve() (int, bool) {
	if r.ID != "" {
		if id, err := strconv.Atoi(r.ID); err == nil && id > 0 {
			return id, true
		}
		return 0, false
	}
	return ResolveRef(r.URL)
}

// RefList unmarshals a relation list in either wire shape: an array of
// resource URLs (REST) or an array of {id} objects (GraphQL).
type RefList []RawRef

// UnmarshalJSON implements json.Unmarshaler.
func (l *RefList) UnmarshalJSON(b []byte) error {
	var objs []RawRef
	if err := json.Unmarshal(b, &objs); err == nil {
		*l = objs
		return nil
	}

	var urls []string
	if err := json.Unmarshal(b, &urls); err != nil {
		return fmt.Errorf("relation list is neither object nor url form: %w", err)
	}

	refs := make(RefList, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, RawRef{URL: u})
	}
	*l = refs
	return nil
}

// RawCharacter is one character entry as returned by either transport.
type RawCharacter struct {
	ID       EntityID `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   string   `json:"gender"`
	Origin   RawRef   `json:"origin"`
	Location RawRef   `json:"location"`
	Image    string   `json:"image"`
	Episode  RefList  `json:"episode"`
	URL      string   `json:"url"`
	Created  string   `json:"created"`
}

// RawLocation is one location entry as returned by either transport.
type RawLocation struct {
	ID        EntityID `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Dimension string   `json:"dimension"`
	Residents RefList  `json:"residents"`
	URL       string   `json:"url"`
	Created   string   `json:"created"`
}
