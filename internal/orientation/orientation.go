// Package orientation tracks the wearer's heading, pitch and location and
// fans updates out to registered listeners. Sensor fusion itself is out of
// scope: sources deliver already-resolved magnetic headings.
package orientation

import (
	"context"
	"time"
)

// Sample is one resolved sensor reading: a magnetic heading with pitch and
// a magnetic-interference flag, as produced by the device's sensor fusion.
type Sample struct {
	MagneticHeading float64
	Pitch           float64
	Interference    bool
}

// Fix is an immutable location snapshot.
type Fix struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Time      time.Time
}

// Sink receives the readings a Source produces. Each call hands over a
// complete, immutable snapshot.
type Sink interface {
	Sample(s Sample)
	Fix(f Fix)
}

// Source feeds orientation and location readings into a sink until the
// context is canceled. Run blocks; the returned error is nil on a clean
// shutdown.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}

// DeclinationSource resolves the magnetic declination at a location, in
// degrees east of true north. A geomagnetic field model lives behind this
// interface; the compass only consumes its output.
type DeclinationSource interface {
	Declination(fix Fix) float64
}

// StaticDeclination reports the same declination everywhere. Useful when
// the deployment region is known and no field model is available.
type StaticDeclination float64

// Declination returns the fixed value regardless of location.
func (d StaticDeclination) Declination(Fix) float64 {
	return float64(d)
}

// Listener is notified when the wearer's orientation, location, or compass
// accuracy changes. Listeners are invoked in registration order.
type Listener interface {
	OrientationChanged(m *Manager)
	LocationChanged(m *Manager)
	AccuracyChanged(m *Manager)
}
