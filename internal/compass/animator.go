package compass

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/truenorth/compassd/internal/geomath"
)

const (
	// DefaultSnapThreshold is the angular distance, in degrees, below which
	// a new heading is applied immediately instead of animated.
	DefaultSnapThreshold = 15.0

	// DefaultDuration is how long one sweep toward a new heading takes.
	DefaultDuration = 250 * time.Millisecond
)

// Animator smooths the displayed heading. Small changes between consecutive
// samples are applied immediately; larger jumps (sensor recalibration,
// fast head motion) sweep linearly along the shorter arc over a fixed
// duration. Samples that arrive while a sweep is in flight are held until
// it completes, then the snap-or-animate decision runs again against the
// just-settled value, so rapid sensor updates cannot make the needle
// jitter.
//
// The zero value is not usable; construct with NewAnimator. Animator is
// safe for concurrent use.
type Animator struct {
	mu        sync.Mutex
	clock     clock.Clock
	duration  time.Duration
	threshold float64

	heading   float64 // latest true heading sample, normalized
	displayed float64 // NaN until the first sample arrives
	animating bool
	from      float64
	to        float64
	started   time.Time
}

// NewAnimator creates an animator driven by the given clock. A nil clock
// uses the wall clock; non-positive duration or threshold fall back to the
// defaults.
func NewAnimator(clk clock.Clock, duration time.Duration, snapThreshold float64) *Animator {
	if clk == nil {
		clk = clock.New()
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if snapThreshold <= 0 {
		snapThreshold = DefaultSnapThreshold
	}

	return &Animator{
		clock:     clk,
		duration:  duration,
		threshold: snapThreshold,
		heading:   math.NaN(),
		displayed: math.NaN(),
	}
}

// SetHeading records a new heading sample. Unless a sweep is already in
// flight, it immediately decides whether the display snaps to the sample or
// starts animating toward it.
func (a *Animator) SetHeading(heading float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.heading = geomath.Mod(heading, 360)

	now := a.clock.Now()
	a.advance(now)
	if a.animating {
		// Decision deferred: the sweep completion re-runs it.
		return
	}
	a.decide(now)
}

// Heading returns the latest raw heading sample, or NaN before the first
// sample.
func (a *Animator) Heading() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.heading
}

// Displayed advances the animation to the current instant and returns the
// heading that should be drawn, normalized to [0, 360). It returns NaN
// before the first sample.
func (a *Animator) Displayed() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.advance(a.clock.Now())
	return a.displayed
}

// Animating reports whether a sweep is currently in flight.
func (a *Animator) Animating() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.advance(a.clock.Now())
	return a.animating
}

// decide runs the snap-or-animate decision against the latest sample.
// Callers must hold the mutex and ensure no sweep is in flight.
func (a *Animator) decide(now time.Time) {
	target, snap := geomath.AnimationTarget(a.displayed, a.heading, a.threshold)
	if snap {
		a.displayed = geomath.Mod(target, 360)
		return
	}

	a.from = a.displayed
	a.to = target
	a.started = now
	a.animating = true
}

// advance moves an in-flight sweep to the given instant. When the sweep
// completes it re-runs the decision, since the head may have kept moving
// while the previous sweep ran.
func (a *Animator) advance(now time.Time) {
	if !a.animating {
		return
	}

	elapsed := now.Sub(a.started)
	if elapsed < a.duration {
		frac := float64(elapsed) / float64(a.duration)
		a.displayed = geomath.Mod(a.from+(a.to-a.from)*frac, 360)
		return
	}

	a.displayed = geomath.Mod(a.to, 360)
	a.animating = false

	if !math.IsNaN(a.heading) && a.heading != a.displayed {
		a.decide(now)
	}
}
