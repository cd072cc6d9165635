package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	joined := joinedFixture()

	flat, err := Project(joined)
	require.NoError(t, err)
	require.Len(t, flat, len(joined))
	assert.Equal(t, joinedIDs(joined), flatIDs(flat))

	assert.Equal(t, FlatRecord{
		EntryID:        10,
		FirstName:      "Jean",
		LastName:       "Luc",
		WorkTitle:      "Engineer",
		EmployeeID:     1,
		EmployeeEmail:  "jean.luc@fwri.org",
		EntryDateTime:  "2023-10-15 14:30:00",
		ImageData:      "aW1nMTAwMA==",
		ImageName:      "front_door",
		ImageExtension: "jpg",
	}, flat[0])
}

func TestProject_Empty(t *testing.T) {
	flat, err := Project(nil)
	require.NoError(t, err)
	assert.NotNil(t, flat)
	assert.Empty(t, flat)
}

func TestProject_MalformedEntryDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "Missing Z", value: "2023-10-15T14:30:00"},
		{name: "Space separator", value: "2023-10-15 14:30:00Z"},
		{name: "Date only", value: "2023-10-15"},
		{name: "Out of range month", value: "2023-13-15T14:30:00Z"},
		{name: "Empty", value: ""},
		{name: "Fractional seconds", value: "2023-10-15T14:30:00.999Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined := joinedFixture()
			joined[1].KeyCardEntry.EntryDateTime = tt.value

			flat, err := Project(joined)
			assert.Nil(t, flat)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 13, perr.EntryID)
		})
	}
}
