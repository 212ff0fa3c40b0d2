package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/truenorth/compassd/internal/compass"
	"github.com/truenorth/compassd/internal/config"
	"github.com/truenorth/compassd/internal/landmark"
	"github.com/truenorth/compassd/internal/logger"
	"github.com/truenorth/compassd/internal/orientation"
	"github.com/truenorth/compassd/internal/server"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"      env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"      env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	Landmarks  string `short:"m" long:"landmarks" env:"LANDMARKS_FILE" description:"Path to landmark catalog (overrides config)"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Landmarks != "" {
		cfg.Landmarks = opts.Landmarks
	}

	catalog := &landmark.Catalog{}
	if cfg.Landmarks != "" {
		catalog, err = landmark.Load(cfg.Landmarks)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Landmarks).Msg("Failed to load landmarks")
		}
	} else {
		log.Warn().Msg("No landmark catalog configured, compass will show directions only")
	}

	source := buildSource(cfg)

	var declination orientation.DeclinationSource
	if cfg.DeclinationDeg != nil {
		declination = orientation.StaticDeclination(*cfg.DeclinationDeg)
	}

	manager := orientation.NewManager(source, declination, *cfg.ArmDisplacementDeg)
	animator := compass.NewAnimator(
		nil,
		time.Duration(cfg.AnimationMs)*time.Millisecond,
		cfg.SnapThresholdDeg)

	var speaker compass.Speaker = compass.NopSpeaker{}
	if cfg.Speech.Command != "" {
		speaker = compass.ExecSpeaker{Command: cfg.Speech.Command, Args: cfg.Speech.Args}
	}

	srvCtx, err := server.NewServerContext(cfg, catalog, manager, animator, speaker)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server context")
	}

	manager.AddListener(srvCtx)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager.Start(ctx)
	defer manager.Stop()

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:    listenAddr,
		Handler: server.RequestLogger(srvCtx.Routes()),
	}

	log.Info().
		Str("addr", listenAddr).
		Str("source", cfg.Source.Kind).
		Int("landmarks", catalog.Len()).
		Msg("Compass server started")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Compass server stopped")
}

// buildSource constructs the orientation feed selected in the config.
func buildSource(cfg *config.Config) orientation.Source {
	switch cfg.Source.Kind {
	case config.SourceUDP:
		return &orientation.UDPSource{Listen: cfg.Source.Listen}
	default:
		return &orientation.SimulatedSource{
			Interval:  time.Duration(cfg.Source.IntervalMs) * time.Millisecond,
			Step:      cfg.Source.StepDeg,
			Heading:   cfg.Source.HeadingDeg,
			Latitude:  cfg.Source.Latitude,
			Longitude: cfg.Source.Longitude,
			Altitude:  cfg.Source.Altitude,
		}
	}
}
