package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ram-tools/ram-client/pkg/model"
)

func intPtr(v int) *int { return &v }

func TestWriteCharacters(t *testing.T) {
	chars := []model.Character{
		{
			ID:           1,
			Name:         "Rick Sanchez",
			Status:       "Alive",
			Species:      "Human",
			OriginName:   "Earth (C-137)",
			LocationID:   intPtr(3),
			LocationName: "Citadel of Ricks",
		},
		{
			ID:         2,
			Name:       "Morty Smith",
			Status:     "Alive",
			Species:    "Human",
			OriginName: "unknown",
			// No LocationID: the cell stays empty.
			LocationName: "unknown",
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteCharacters(&buf, chars))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,status,species,origin_name,location_id,location_name", lines[0])
	assert.Equal(t, "1,Rick Sanchez,Alive,Human,Earth (C-137),3,Citadel of Ricks", lines[1])
	assert.Equal(t, "2,Morty Smith,Alive,Human,unknown,,unknown", lines[2])
}

func TestWriteCharactersQuotesCommas(t *testing.T) {
	chars := []model.Character{
		{ID: 5, Name: "Sanchez, Rick", Status: "Alive"},
	}

	var buf strings.Builder
	require.NoError(t, WriteCharacters(&buf, chars))
	assert.Contains(t, buf.String(), `"Sanchez, Rick"`)
}

func TestWriteLocations(t *testing.T) {
	locs := []model.Location{
		{ID: 3, Name: "Citadel of Ricks", Type: "Space station", Dimension: "unknown", ResidentCount: 101},
	}

	var buf strings.Builder
	require.NoError(t, WriteLocations(&buf, locs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,type,dimension,resident_count", lines[0])
	assert.Equal(t, "3,Citadel of Ricks,Space station,unknown,101", lines[1])
}

func TestExportRecords(t *testing.T) {
	dir := t.TempDir()
	records := []model.Record{
		model.Character{ID: 1, Name: "Rick Sanchez"},
		model.Location{ID: 1, Name: "Earth (C-137)"},
		model.Character{ID: 2, Name: "Morty Smith"},
	}

	paths, err := ExportRecords(dir, records)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	charBody, err := os.ReadFile(filepath.Join(dir, CharactersFile))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(charBody), "\n"))

	locBody, err := os.ReadFile(filepath.Join(dir, LocationsFile))
	require.NoError(t, err)
	assert.Contains(t, string(locBody), "Earth (C-137)")
}

func TestExportRecordsSkipsEmptyKinds(t *testing.T) {
	dir := t.TempDir()
	records := []model.Record{
		model.Character{ID: 1, Name: "Rick Sanchez"},
	}

	paths, err := ExportRecords(dir, records)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	_, err = os.Stat(filepath.Join(dir, LocationsFile))
	assert.True(t, os.IsNotExist(err))
}
