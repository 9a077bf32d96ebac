// Package export serializes normalized records to CSV files. It is a
// downstream consumer of the fetch result and never influences fetching.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ram-tools/ram-client/pkg/model"
)

// Default output file names.
const (
	CharactersFile = "characters.csv"
	LocationsFile  = "locations.csv"
)

var characterHeaders = []string{"id", "name", "status", "species", "origin_name", "location_id", "location_name"}

var locationHeaders = []string{"id", "name", "type", "dimension", "resident_count"}

// WriteCharacters writes character records as CSV. Absent relation fields
// serialize as empty strings.
func WriteCharacters(w io.Writer, chars []model.Character) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(characterHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, c := range chars {
		locationID := ""
		if c.LocationID != nil {
			locationID = strconv.Itoa(*c.LocationID)
		}

		row := []string{
			strconv.Itoa(c.ID),
			c.Name,
			c.Status,
			c.Species,
			c.OriginName,
			locationID,
			c.LocationName,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write character %d: %w", c.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteLocations writes location records as CSV.
func WriteLocations(w io.Writer, locs []model.Location) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(locationHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, l := range locs {
		row := []string{
			strconv.Itoa(l.ID),
			l.Name,
			l.Type,
			l.Dimension,
			strconv.Itoa(l.ResidentCount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write location %d: %w", l.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportRecords splits a mixed record stream by kind and writes one CSV per
// kind into dir, returning the paths written.
func ExportRecords(dir string, records []model.Record) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	chars, locs := model.SplitRecords(records)
	var paths []string

	if len(chars) > 0 {
		path := filepath.Join(dir, CharactersFile)
		if err := writeFile(path, func(w io.Writer) error {
			return WriteCharacters(w, chars)
		}); err != nil {
			return paths, err
		}
		log.Info().Int("records", len(chars)).Str("path", path).Msg("Wrote characters CSV")
		paths = append(paths, path)
	}

	if len(locs) > 0 {
		path := filepath.Join(dir, LocationsFile)
		if err := writeFile(path, func(w io.Writer) error {
			return WriteLocations(w, locs)
		}); err != nil {
			return paths, err
		}
		log.Info().Int("records", len(locs)).Str("path", path).Msg("Wrote locations CSV")
		paths = append(paths, path)
	}

	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
