package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/truenorth/compassd/internal/compass"
	"github.com/truenorth/compassd/internal/landmark"
	"github.com/truenorth/compassd/internal/logger"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	File      string  `short:"f" long:"file"   env:"LANDMARKS_FILE" description:"Path to landmark catalog"  default:"landmarks.json"`
	Latitude  float64 `long:"lat"              description:"Observer latitude, degrees"  required:"true"`
	Longitude float64 `long:"lon"              description:"Observer longitude, degrees" required:"true"`
	RadiusKm  float64 `short:"r" long:"radius" description:"Search radius, km"           default:"10"`
	JSON      bool    `short:"j" long:"json"   description:"Print sightings as JSON"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	catalog, err := landmark.Load(opts.File)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.File).Msg("Failed to load landmarks")
	}

	sightings := catalog.Sightings(opts.Latitude, opts.Longitude, opts.RadiusKm)

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sightings); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode sightings")
		}
		return
	}

	if len(sightings) == 0 {
		fmt.Printf("No landmarks within %.1f km of %.5f, %.5f (catalog: %d places)\n",
			opts.RadiusKm, opts.Latitude, opts.Longitude, catalog.Len())
		return
	}

	for _, s := range sightings {
		fmt.Printf("%-32s %7.2f km  %5.1f° %s\n",
			s.Name, s.DistanceKm, s.Bearing, compass.DirectionName(s.Bearing))
	}
}
