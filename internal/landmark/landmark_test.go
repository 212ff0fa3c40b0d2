package landmark

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "landmarks": [
    {"name": "Golden Gate Bridge", "latitude": 37.8199, "longitude": -122.4783},
    {"name": "Ferry Building", "latitude": 37.7955, "longitude": -122.3937},
    {"name": "Statue of Liberty", "latitude": 40.6892, "longitude": -74.0445}
  ]
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	places := c.Places()
	assert.Equal(t, "Golden Gate Bridge", places[0].Name)
	assert.Equal(t, "Statue of Liberty", places[2].Name)
}

func TestParseSkipsMalformedEntries(t *testing.T) {
	data := `{
	  "landmarks": [
	    {"name": "", "latitude": 1, "longitude": 2},
	    {"name": "No coordinates"},
	    {"name": "Missing longitude", "latitude": 10},
	    {"name": "Valid", "latitude": 10, "longitude": 20}
	  ]
	}`

	c, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Valid", c.Places()[0].Name)
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	c, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	assert.NotNil(t, c.Nearby(0, 0, 10))
}

func TestParseYAMLSkipsNonFiniteCoordinates(t *testing.T) {
	data := `
landmarks:
  - name: Broken
    latitude: .nan
    longitude: 2
  - name: Also broken
    latitude: .inf
    longitude: 2
  - name: Fine
    latitude: 48.8584
    longitude: 2.2945
`

	c, err := ParseYAML([]byte(data))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Fine", c.Places()[0].Name)
}

func TestNearby(t *testing.T) {
	c, err := Parse([]byte(sampleJSON))
	require.NoError(t, err)

	// Downtown San Francisco: both SF landmarks are within 10 km, the
	// Statue of Liberty is not.
	nearby := c.Nearby(37.7749, -122.4194, 10)
	require.Len(t, nearby, 2)
	assert.Equal(t, "Golden Gate Bridge", nearby[0].Name)
	assert.Equal(t, "Ferry Building", nearby[1].Name)

	// Middle of the Pacific: nothing nearby, but never nil.
	empty := c.Nearby(0, -150, 10)
	require.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSightings(t *testing.T) {
	c, err := Parse([]byte(sampleJSON))
	require.NoError(t, err)

	sightings := c.Sightings(37.7749, -122.4194, 10)
	require.Len(t, sightings, 2)

	for _, s := range sightings {
		assert.GreaterOrEqual(t, s.Bearing, 0.0)
		assert.Less(t, s.Bearing, 360.0)
		assert.Greater(t, s.DistanceKm, 0.0)
		assert.LessOrEqual(t, s.DistanceKm, 10.0)
	}

	// The Golden Gate Bridge lies northwest of downtown.
	assert.InDelta(t, 315, sightings[0].Bearing, 20)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	c, err := Parse([]byte(sampleJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteJSON(&buf))

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, c.Places(), again.Places())
}
