package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truenorth/compassd/internal/compass"
	"github.com/truenorth/compassd/internal/config"
	"github.com/truenorth/compassd/internal/landmark"
	"github.com/truenorth/compassd/internal/orientation"
)

const testLandmarks = `{
  "landmarks": [
    {"name": "Ferry Building", "latitude": 37.7955, "longitude": -122.3937},
    {"name": "Statue of Liberty", "latitude": 40.6892, "longitude": -74.0445}
  ]
}`

type fakeSpeaker struct {
	mu     sync.Mutex
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.spoken = append(f.spoken, text)
	return nil
}

type fixedSource struct {
	sample orientation.Sample
	fix    orientation.Fix
}

func (s *fixedSource) Run(ctx context.Context, sink orientation.Sink) error {
	sink.Fix(s.fix)
	sink.Sample(s.sample)
	<-ctx.Done()
	return ctx.Err()
}

func newTestContext(t *testing.T) (*ServerContext, *fakeSpeaker) {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	catalog, err := landmark.Parse([]byte(testLandmarks))
	require.NoError(t, err)

	src := &fixedSource{
		sample: orientation.Sample{MagneticHeading: 100},
		fix: orientation.Fix{
			Latitude:  37.7749,
			Longitude: -122.4194,
			Time:      time.Now(),
		},
	}
	manager := orientation.NewManager(src, orientation.StaticDeclination(0), 0)
	animator := compass.NewAnimator(clock.NewMock(), 250*time.Millisecond, 15)
	speaker := &fakeSpeaker{}

	ctx, err := NewServerContext(cfg, catalog, manager, animator, speaker)
	require.NoError(t, err)

	manager.AddListener(ctx)
	manager.Start(context.Background())
	t.Cleanup(manager.Stop)

	require.Eventually(t, func() bool {
		return manager.Heading() == 100 && manager.HasLocation()
	}, time.Second, 5*time.Millisecond)

	return ctx, speaker
}

func TestHandleState(t *testing.T) {
	ctx, _ := newTestContext(t)

	rec := httptest.NewRecorder()
	ctx.HandleState(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var state struct {
		Heading          *float64            `json:"heading"`
		DisplayedHeading *float64            `json:"displayed_heading"`
		Direction        string              `json:"direction"`
		Interference     bool                `json:"interference"`
		Location         *struct{ Latitude float64 } `json:"location"`
		Nearby           []landmark.Sighting `json:"nearby"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	require.NotNil(t, state.Heading)
	assert.InDelta(t, 100, *state.Heading, 1e-9)
	require.NotNil(t, state.DisplayedHeading)
	assert.InDelta(t, 100, *state.DisplayedHeading, 1e-9)
	assert.Equal(t, "E", state.Direction)
	assert.False(t, state.Interference)
	require.NotNil(t, state.Location)
	assert.InDelta(t, 37.7749, state.Location.Latitude, 1e-9)

	// Only the Ferry Building is within the default 10 km radius.
	require.Len(t, state.Nearby, 1)
	assert.Equal(t, "Ferry Building", state.Nearby[0].Name)
	assert.Greater(t, state.Nearby[0].DistanceKm, 0.0)
}

func TestHandleStateBeforeFirstSample(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	catalog, err := landmark.Parse([]byte(testLandmarks))
	require.NoError(t, err)

	manager := orientation.NewManager(nil, nil, 0)
	animator := compass.NewAnimator(clock.NewMock(), 250*time.Millisecond, 15)
	ctx, err := NewServerContext(cfg, catalog, manager, animator, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctx.HandleState(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var state map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "null", string(state["heading"]))
	assert.Equal(t, "null", string(state["displayed_heading"]))
	assert.Equal(t, "[]", string(state["nearby"]))
}

func TestHandleReadout(t *testing.T) {
	ctx, speaker := newTestContext(t)

	rec := httptest.NewRecorder()
	ctx.HandleReadout(rec, httptest.NewRequest(http.MethodGet, "/api/readout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var readout struct {
		Heading   float64 `json:"heading"`
		Direction string  `json:"direction"`
		Text      string  `json:"text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &readout))
	assert.InDelta(t, 100, readout.Heading, 1e-9)
	assert.Equal(t, "east", readout.Direction)
	assert.Equal(t, "Heading 100 degrees east", readout.Text)

	// GET must not reach the speech sink.
	assert.Empty(t, speaker.spoken)

	rec = httptest.NewRecorder()
	ctx.HandleReadout(rec, httptest.NewRequest(http.MethodPost, "/api/readout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Heading 100 degrees east"}, speaker.spoken)
}

func TestHandleReadoutSpeakerFailure(t *testing.T) {
	ctx, speaker := newTestContext(t)
	speaker.err = errors.New("engine offline")

	rec := httptest.NewRecorder()
	ctx.HandleReadout(rec, httptest.NewRequest(http.MethodPost, "/api/readout", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleIndexETag(t *testing.T) {
	ctx, _ := newTestContext(t)

	rec := httptest.NewRecorder()
	ctx.HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, rec.Body.String(), "<title>compassd</title>")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	ctx.HandleIndex(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestHandleLandmarks(t *testing.T) {
	ctx, _ := newTestContext(t)

	rec := httptest.NewRecorder()
	ctx.HandleLandmarks(rec, httptest.NewRequest(http.MethodGet, "/api/landmarks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	parsed, err := landmark.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, parsed.Len())
}

func TestRoutesNotFound(t *testing.T) {
	ctx, _ := newTestContext(t)

	srv := httptest.NewServer(RequestLogger(ctx.Routes()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/no-such-page")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
