// Package model defines the normalized domain records produced from raw API
// pages, the raw wire shapes they are parsed from, and the reference resolver
// used for relation fields.
package model

// Kind identifies the record variant.
type Kind string

const (
	// KindCharacter is a character record.
	KindCharacter Kind = "character"

	// KindLocation is a location record.
	KindLocation Kind = "location"
)

// Record is a normalized domain entity produced from one raw page entry.
// Records are immutable once produced; relation fields may be absent (nil)
// but are never malformed after normalization.
type Record interface {
	Kind() Kind
	RecordID() int
	RecordName() string
}

// Character is the normalized character record.
type Character struct {
	ID           int
	Name         string
	Status       string
	Species      string
	Type         string
	Gender       string
	OriginName   string
	OriginID     *int
	LocationName string
	LocationID   *int
	Image        string
	EpisodeCount int
	Created      string
}

// Kind implements Record.
func (c Character) Kind() Kind { return KindCharacter }

// RecordID implements Record.
func (c Character) RecordID() int { return c.ID }

// RecordName implements Record.
func (c Character) RecordName() string { return c.Name }

// Location is the normalized location record.
type Location struct {
	ID            int
	Name          string
	Type          string
	Dimension     string
	ResidentCount int
	ResidentIDs   []int
	Created       string
}

// Kind implements Record.
func (l Location) Kind() Kind { return KindLocation }

// RecordID implements Record.
func (l Location) RecordID() int { return l.ID }

// RecordName implements Record.
func (l Location) RecordName() string { return l.Name }

// SplitRecords separates a mixed record stream into its concrete variants,
// preserving order within each variant.
func SplitRecords(records []Record) ([]Character, []Location) {
	var chars []Character
	var locs []Location
	for _, r := range records {
		switch rec := r.(type) {
		case Character:
			chars = append(chars, rec)
		case Location:
			locs = append(locs, rec)
		}
	}
	return chars, locs
}
