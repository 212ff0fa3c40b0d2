package orientation

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/truenorth/compassd/internal/geomath"
)

// DefaultArmDisplacement compensates for the sensor arm mounting angle of
// the target headset, in degrees. The arm can be rotated anywhere from 0 to
// about 12 degrees, so the default splits the difference.
const DefaultArmDisplacement = 6.0

// Manager collects readings from a Source, corrects headings to true north,
// and notifies listeners of changes. All snapshot accessors are safe for
// concurrent use; listener callbacks run on the source's goroutine.
type Manager struct {
	source      Source
	declination DeclinationSource
	armOffset   float64

	mu           sync.Mutex
	listeners    []Listener
	heading      float64
	pitch        float64
	interference bool
	fix          *Fix
	decl         *float64
	tracking     bool
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewManager creates a manager fed by the given source. declination may be
// nil, in which case magnetic headings pass through uncorrected until a
// source is provided. armDisplacement is subtracted from every corrected
// heading; pass DefaultArmDisplacement unless the device is calibrated
// differently.
func NewManager(source Source, declination DeclinationSource, armDisplacement float64) *Manager {
	return &Manager{
		source:      source,
		declination: declination,
		armOffset:   armDisplacement,
		heading:     math.NaN(),
	}
}

// AddListener registers a listener. Listeners are notified in registration
// order; adding the same listener twice is a no-op.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.listeners {
		if existing == l {
			return
		}
	}
	m.listeners = append(m.listeners, l)
}

// RemoveListener unregisters a listener. Removing an unknown listener is a
// no-op.
func (m *Manager) RemoveListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.listeners {
		if existing == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

// Start begins consuming the source. It returns immediately; readings are
// processed on a background goroutine until Stop is called or the context
// is canceled. Calling Start while already tracking is a no-op.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.tracking || m.source == nil {
		m.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.tracking = true
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		if err := m.source.Run(ctx, (*managerSink)(m)); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Orientation source stopped")
		}
	}()
}

// Stop stops consuming the source and waits for the feed goroutine to
// exit. Listeners are no longer notified afterward.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.tracking {
		m.mu.Unlock()
		return
	}
	m.tracking = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
}

// Heading returns the latest true-north heading in [0, 360), or NaN before
// the first sample.
func (m *Manager) Heading() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heading
}

// Pitch returns the latest head tilt angle in degrees.
func (m *Manager) Pitch() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pitch
}

// HasInterference reports whether magnetic interference currently makes the
// compass unreliable.
func (m *Manager) HasInterference() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interference
}

// HasLocation reports whether a location fix has been received.
func (m *Manager) HasLocation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fix != nil
}

// Location returns the latest fix, if any.
func (m *Manager) Location() (Fix, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fix == nil {
		return Fix{}, false
	}
	return *m.fix, true
}

// managerSink adapts the manager to the Sink interface without exposing the
// sample/fix entry points on Manager itself.
type managerSink Manager

func (s *managerSink) Sample(sample Sample) {
	(*Manager)(s).applySample(sample)
}

func (s *managerSink) Fix(fix Fix) {
	(*Manager)(s).applyFix(fix)
}

func (m *Manager) applySample(s Sample) {
	m.mu.Lock()
	trueHeading := geomath.TrueNorth(s.MagneticHeading, m.decl)
	m.heading = geomath.Mod(trueHeading-m.armOffset, 360)
	m.pitch = s.Pitch
	accuracyChanged := s.Interference != m.interference
	m.interference = s.Interference
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, l := range listeners {
		l.OrientationChanged(m)
	}
	if accuracyChanged {
		for _, l := range listeners {
			l.AccuracyChanged(m)
		}
	}
}

func (m *Manager) applyFix(f Fix) {
	m.mu.Lock()
	m.fix = &f
	if m.declination != nil {
		d := m.declination.Declination(f)
		m.decl = &d
	}
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, l := range listeners {
		l.LocationChanged(m)
	}
}

// snapshotListeners returns the listener slice for iteration outside the
// lock. Callers must hold the mutex.
func (m *Manager) snapshotListeners() []Listener {
	out := make([]Listener, len(m.listeners))
	copy(out, m.listeners)
	return out
}
