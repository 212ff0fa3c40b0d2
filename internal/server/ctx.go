package server

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/truenorth/compassd/assets"
	"github.com/truenorth/compassd/internal/compass"
	"github.com/truenorth/compassd/internal/config"
	"github.com/truenorth/compassd/internal/landmark"
	"github.com/truenorth/compassd/internal/orientation"
)

// ServerContext holds dependencies for request handlers. It also implements
// orientation.Listener: orientation updates drive the heading animator and
// location updates refresh the cached nearby-landmark list.
type ServerContext struct {
	Config   *config.Config
	Catalog  *landmark.Catalog
	Manager  *orientation.Manager
	Animator *compass.Animator
	Speaker  compass.Speaker

	IndexHTML []byte
	Favicon   []byte

	mu     sync.Mutex
	nearby []landmark.Sighting
}

type pageData struct {
	CSS string
	JS  string
}

// NewServerContext initializes the context and assembles the web page from
// the embedded assets.
func NewServerContext(cfg *config.Config, catalog *landmark.Catalog, manager *orientation.Manager,
	animator *compass.Animator, speaker compass.Speaker) (*ServerContext, error) {

	index, favicon, err := buildAssets()
	if err != nil {
		return nil, err
	}

	if speaker == nil {
		speaker = compass.NopSpeaker{}
	}

	log.Info().
		Int("landmarks", catalog.Len()).
		Int("index_bytes", len(index)).
		Msg("Server context initialized")

	return &ServerContext{
		Config:    cfg,
		Catalog:   catalog,
		Manager:   manager,
		Animator:  animator,
		Speaker:   speaker,
		IndexHTML: index,
		Favicon:   favicon,
		nearby:    []landmark.Sighting{},
	}, nil
}

// buildAssets minifies the embedded CSS/JS/SVG and inlines them into the
// index page template.
func buildAssets() (index, favicon []byte, err error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	cssMin, err := m.String("text/css", string(assets.CSS))
	if err != nil {
		return nil, nil, fmt.Errorf("minify css: %w", err)
	}

	jsMin, err := m.String("text/javascript", string(assets.JS))
	if err != nil {
		return nil, nil, fmt.Errorf("minify js: %w", err)
	}

	tmpl, err := template.New("index").Parse(string(assets.IndexTemplate))
	if err != nil {
		return nil, nil, fmt.Errorf("parse index template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData{CSS: cssMin, JS: jsMin}); err != nil {
		return nil, nil, fmt.Errorf("render index template: %w", err)
	}

	indexMin, err := m.String("text/html", buf.String())
	if err != nil {
		return nil, nil, fmt.Errorf("minify index: %w", err)
	}

	faviconMin, err := m.Bytes("image/svg+xml", assets.Favicon)
	if err != nil {
		return nil, nil, fmt.Errorf("minify favicon: %w", err)
	}

	return []byte(indexMin), faviconMin, nil
}

// OrientationChanged feeds the new heading into the animator.
func (s *ServerContext) OrientationChanged(m *orientation.Manager) {
	s.Animator.SetHeading(m.Heading())
}

// LocationChanged recomputes the nearby-landmark cache. The list only needs
// to change when the wearer moves, not on every heading sample.
func (s *ServerContext) LocationChanged(m *orientation.Manager) {
	fix, ok := m.Location()
	if !ok {
		return
	}

	sightings := s.Catalog.Sightings(fix.Latitude, fix.Longitude, s.Config.NearbyRadiusKm)

	s.mu.Lock()
	s.nearby = sightings
	s.mu.Unlock()

	log.Debug().
		Float64("lat", fix.Latitude).
		Float64("lon", fix.Longitude).
		Int("nearby", len(sightings)).
		Msg("Nearby landmarks recalculated")
}

// AccuracyChanged logs interference transitions.
func (s *ServerContext) AccuracyChanged(m *orientation.Manager) {
	if m.HasInterference() {
		log.Warn().Msg("Magnetic interference detected, compass may be unreliable")
	} else {
		log.Info().Msg("Magnetic interference cleared")
	}
}

// Nearby returns the cached nearby sightings. The result is never nil.
func (s *ServerContext) Nearby() []landmark.Sighting {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]landmark.Sighting, len(s.nearby))
	copy(out, s.nearby)
	return out
}
