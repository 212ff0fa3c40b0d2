package orientation

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/truenorth/compassd/internal/geomath"
)

// SimulatedSource produces a random-walk heading around a fixed location.
// It stands in for real head-mounted hardware during development and demos.
type SimulatedSource struct {
	// Interval between sensor samples. Defaults to 100ms.
	Interval time.Duration
	// Step is the maximum heading change per tick, in degrees. Defaults
	// to 2.
	Step float64
	// Heading is the initial magnetic heading.
	Heading float64
	// Pitch is reported unchanged with every sample.
	Pitch float64

	// Location emitted once at startup and refreshed every FixInterval
	// (default 3s).
	Latitude    float64
	Longitude   float64
	Altitude    float64
	FixInterval time.Duration

	// Seed for the random walk; 0 seeds from the current time.
	Seed int64
}

// Run emits samples until the context is canceled.
func (s *SimulatedSource) Run(ctx context.Context, sink Sink) error {
	interval := s.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	fixInterval := s.FixInterval
	if fixInterval <= 0 {
		fixInterval = 3 * time.Second
	}
	step := s.Step
	if step <= 0 {
		step = 2
	}
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	heading := s.Heading

	log.Info().
		Dur("interval", interval).
		Float64("step", step).
		Float64("lat", s.Latitude).
		Float64("lon", s.Longitude).
		Msg("Simulated orientation source started")

	sink.Fix(Fix{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Altitude:  s.Altitude,
		Time:      time.Now(),
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	fixTicker := time.NewTicker(fixInterval)
	defer fixTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-fixTicker.C:
			sink.Fix(Fix{
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
				Altitude:  s.Altitude,
				Time:      time.Now(),
			})
		case <-ticker.C:
			heading = geomath.Mod(heading+(rng.Float64()*2-1)*step, 360)
			sink.Sample(Sample{
				MagneticHeading: heading,
				Pitch:           s.Pitch,
			})
		}
	}
}
