package orientation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

// UDPSource reads orientation and location readings from JSON datagrams on
// a UDP port. Sensor datagrams carry a "heading" field, location datagrams
// carry "latitude"/"longitude":
//
//	{"heading": 182.5, "pitch": -3.0, "interference": false}
//	{"latitude": 37.77, "longitude": -122.42, "altitude": 16}
//
// Datagrams that parse but carry neither field are dropped with a warning.
type UDPSource struct {
	// Listen is the UDP address to bind, e.g. ":7453".
	Listen string
}

type datagram struct {
	Heading      *float64 `json:"heading"`
	Pitch        float64  `json:"pitch"`
	Interference bool     `json:"interference"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  float64  `json:"altitude"`
}

// Run listens for datagrams until the context is canceled.
func (s *UDPSource) Run(ctx context.Context, sink Sink) error {
	conn, err := net.ListenPacket("udp", s.Listen)
	if err != nil {
		return fmt.Errorf("listen udp: %w", err)
	}

	log.Info().Str("addr", conn.LocalAddr().String()).Msg("UDP orientation source started")

	// Unblock ReadFrom when the context ends.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read datagram: %w", err)
		}

		if err := dispatchDatagram(buf[:n], sink); err != nil {
			log.Warn().Err(err).Stringer("from", addr).Msg("Dropping datagram")
		}
	}
}

// dispatchDatagram parses one datagram and forwards it to the sink.
func dispatchDatagram(data []byte, sink Sink) error {
	var d datagram
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("parse datagram: %w", err)
	}

	switch {
	case d.Heading != nil:
		sink.Sample(Sample{
			MagneticHeading: *d.Heading,
			Pitch:           d.Pitch,
			Interference:    d.Interference,
		})
	case d.Latitude != nil && d.Longitude != nil:
		sink.Fix(Fix{
			Latitude:  *d.Latitude,
			Longitude: *d.Longitude,
			Altitude:  d.Altitude,
			Time:      time.Now(),
		})
	default:
		return errors.New("datagram carries neither heading nor location")
	}

	return nil
}
