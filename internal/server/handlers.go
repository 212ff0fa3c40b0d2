// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/truenorth/compassd/internal/compass"
	"github.com/truenorth/compassd/internal/landmark"
)

type stateResponse struct {
	Heading          *float64            `json:"heading"`
	DisplayedHeading *float64            `json:"displayed_heading"`
	Direction        string              `json:"direction,omitempty"`
	Pitch            float64             `json:"pitch"`
	Interference     bool                `json:"interference"`
	Location         *locationResponse   `json:"location,omitempty"`
	Nearby           []landmark.Sighting `json:"nearby"`
}

type locationResponse struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`
	Time      time.Time `json:"time"`
}

type readoutResponse struct {
	Heading   float64 `json:"heading"`
	Direction string  `json:"direction"`
	Text      string  `json:"text"`
}

// finiteOrNil maps the pre-first-sample NaN to a JSON null.
func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// HandleState serves the current compass snapshot.
func (s *ServerContext) HandleState(w http.ResponseWriter, r *http.Request) {
	displayed := s.Animator.Displayed()

	resp := stateResponse{
		Heading:          finiteOrNil(s.Manager.Heading()),
		DisplayedHeading: finiteOrNil(displayed),
		Pitch:            s.Manager.Pitch(),
		Interference:     s.Manager.HasInterference(),
		Nearby:           s.Nearby(),
	}

	if !math.IsNaN(displayed) {
		resp.Direction = compass.DirectionName(displayed)
	}

	if fix, ok := s.Manager.Location(); ok {
		resp.Location = &locationResponse{
			Latitude:  fix.Latitude,
			Longitude: fix.Longitude,
			Altitude:  fix.Altitude,
			Time:      fix.Time,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleLandmarks serves the full landmark catalog.
func (s *ServerContext) HandleLandmarks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = s.Catalog.WriteJSON(w)
}

// HandleReadout serves the spoken form of the current heading. A POST also
// forwards the text to the speech sink.
func (s *ServerContext) HandleReadout(w http.ResponseWriter, r *http.Request) {
	heading := s.Manager.Heading()
	if math.IsNaN(heading) {
		http.Error(w, "no heading sample yet", http.StatusServiceUnavailable)
		return
	}

	text := compass.Readout(heading)

	if r.Method == http.MethodPost {
		if err := s.Speaker.Speak(r.Context(), text); err != nil {
			log.Error().Err(err).Msg("Speech sink failed")
			http.Error(w, "speech sink failed", http.StatusBadGateway)
			return
		}
		log.Info().Str("text", text).Msg("Heading read aloud")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(readoutResponse{
		Heading:   heading,
		Direction: compass.SpokenDirection(heading),
		Text:      text,
	})
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/favicon.svg" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// Routes registers all handlers on a mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.HandleState)
	mux.HandleFunc("/api/landmarks", s.HandleLandmarks)
	mux.HandleFunc("/api/readout", s.HandleReadout)
	mux.HandleFunc("/favicon.svg", s.HandleFavicon)
	mux.HandleFunc("/", s.HandleIndex)
	return mux
}
