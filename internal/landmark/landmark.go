// Package landmark provides the static catalog of named places that appear
// on the compass when the wearer is near them.
package landmark

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/truenorth/compassd/internal/geomath"
)

// DefaultRadiusKm is the distance threshold below which a landmark is
// considered nearby.
const DefaultRadiusKm = 10.0

// Place is an immutable named point.
type Place struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Sighting pairs a place with its distance and bearing from an observer.
type Sighting struct {
	Place
	DistanceKm float64 `json:"distance_km"`
	Bearing    float64 `json:"bearing"`
}

// Catalog holds the loaded landmark list in file order.
type Catalog struct {
	places []Place
}

// catalogFile mirrors the on-disk format: a root object with a "landmarks"
// collection.
type catalogFile struct {
	Landmarks []rawPlace `json:"landmarks" yaml:"landmarks"`
}

// rawPlace uses pointer coordinates so missing fields can be told apart
// from zero values during validation.
type rawPlace struct {
	Name      string   `json:"name" yaml:"name"`
	Latitude  *float64 `json:"latitude" yaml:"latitude"`
	Longitude *float64 `json:"longitude" yaml:"longitude"`
}

func (r rawPlace) place() (Place, bool) {
	if r.Name == "" || r.Latitude == nil || r.Longitude == nil {
		return Place{}, false
	}

	lat, lon := *r.Latitude, *r.Longitude
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return Place{}, false
	}

	return Place{Name: r.Name, Latitude: lat, Longitude: lon}, true
}

// Load reads and parses the JSON landmark catalog at the specified path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read landmarks: %w", err)
	}

	return Parse(data)
}

// Parse decodes a JSON landmarks document. Entries with a missing name or
// missing/non-finite coordinates are dropped with a warning instead of
// failing the whole load.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse landmarks: %w", err)
	}

	return fromRaw(file.Landmarks), nil
}

// ParseYAML decodes a YAML landmarks document with the same structure and
// validation as Parse.
func ParseYAML(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse landmarks: %w", err)
	}

	return fromRaw(file.Landmarks), nil
}

func fromRaw(raw []rawPlace) *Catalog {
	c := &Catalog{places: make([]Place, 0, len(raw))}

	for i, r := range raw {
		place, ok := r.place()
		if !ok {
			log.Warn().
				Int("entry", i).
				Str("name", r.Name).
				Msg("Skipping malformed landmark entry")
			continue
		}
		c.places = append(c.places, place)
	}

	return c
}

// Len returns the number of valid places in the catalog.
func (c *Catalog) Len() int {
	return len(c.places)
}

// Places returns a copy of the catalog contents in load order.
func (c *Catalog) Places() []Place {
	out := make([]Place, len(c.places))
	copy(out, c.places)
	return out
}

// Nearby returns the places within radiusKm of the observer, in load order.
// The result is never nil. A non-positive radius falls back to
// DefaultRadiusKm.
func (c *Catalog) Nearby(lat, lon, radiusKm float64) []Place {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	nearby := make([]Place, 0)
	for _, p := range c.places {
		if geomath.DistanceKm(lat, lon, p.Latitude, p.Longitude) <= radiusKm {
			nearby = append(nearby, p)
		}
	}

	return nearby
}

// Sightings returns the nearby places paired with their distance and
// bearing from the observer. The result is never nil.
func (c *Catalog) Sightings(lat, lon, radiusKm float64) []Sighting {
	nearby := c.Nearby(lat, lon, radiusKm)

	sightings := make([]Sighting, 0, len(nearby))
	for _, p := range nearby {
		sightings = append(sightings, Sighting{
			Place:      p,
			DistanceKm: geomath.DistanceKm(lat, lon, p.Latitude, p.Longitude),
			Bearing:    geomath.Bearing(lat, lon, p.Latitude, p.Longitude),
		})
	}

	return sightings
}

// WriteJSON writes the catalog in the on-disk JSON format.
func (c *Catalog) WriteJSON(w io.Writer) error {
	out := struct {
		Landmarks []Place `json:"landmarks"`
	}{Landmarks: c.places}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
