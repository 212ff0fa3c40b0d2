package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/truenorth/compassd/internal/landmark"
	"github.com/truenorth/compassd/internal/logger"
)

// lmconv converts a YAML landmark list into the JSON catalog format the
// daemon loads, dropping malformed entries along the way.

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string `short:"i" long:"input"  description:"YAML landmark list to read" required:"true"`
	Output string `short:"o" long:"output" description:"JSON catalog to write (stdout if omitted)"`
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

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to read input")
	}

	catalog, err := landmark.ParseYAML(data)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to parse landmark list")
	}

	out := os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to create output")
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				log.Error().Err(closeErr).Str("path", opts.Output).Msg("Failed to close file")
			}
		}()
		out = f
	}

	if err := catalog.WriteJSON(out); err != nil {
		log.Fatal().Err(err).Msg("Failed to write catalog")
	}

	log.Info().
		Int("places", catalog.Len()).
		Str("output", opts.Output).
		Msg("Landmark catalog written")
}
