// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

// Command geogedcom converts a parsed GEDCOM genealogy into GeoJSON points
// and lines.
//
// # Commands
//
//   - convert: runs one conversion from a file or stdin and writes the outputs
//     to the configured store.
//   - serve: exposes the conversion API over HTTP.
//
// Settings come from environment variables (see internal/platform/config);
// command line flags override them. No business logic lives here. All wiring
// is explicit constructor injection.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keldaan-ag/gedcom-shp/internal/core/conversion"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geocode"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/apperr"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/blob"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/config"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/constants"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/metrics"
)

// app carries the state shared by every command.
type app struct {
	cfg *config.Config
	log *slog.Logger

	debug bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err and, for validation failures, every failing field.
func printError(writer io.Writer, err error) {
	fmt.Fprintf(writer, "Error: %s\n", err)
	if ae := apperr.As(err); ae != nil {
		for _, detail := range ae.Details {
			fmt.Fprintf(writer, "  %s: %s\n", detail.Field, detail.Message)
		}
	}
}

func newRootCmd() *cobra.Command {
	state := &app{}

	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Map a genealogy: GEDCOM parser JSON to GeoJSON points and lines",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.init(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&state.debug, "debug", false, "Activate debug log output (overrides DEBUG)")

	rootCmd.AddCommand(
		newConvertCmd(state),
		newServeCmd(state),
	)

	return rootCmd
}

// init loads the configuration and the logger.
func (state *app) init(cmd *cobra.Command) error {

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = state.debug
	}
	state.cfg = cfg

	// 2. Logger, JSON to stderr: stdout carries the run summary
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	state.log = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))
	slog.SetDefault(state.log)

	state.log.Debug("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("output_driver", cfg.OutputDriver),
		slog.Duration("geocoder_delay", cfg.GeocoderDelay),
	)

	return nil
}

// newService wires the geocoder, the output store and the conversion service.
func (state *app) newService(ctx context.Context, recorder *metrics.Metrics) (*conversion.Service, blob.Store, error) {
	cfg := state.cfg

	orchestratorOptions := []geocode.Option{geocode.WithLogger(state.log)}
	serviceOptions := []conversion.Option{
		conversion.WithLogger(state.log),
		conversion.WithTimeout(cfg.ConversionTimeout),
	}
	if recorder != nil {
		orchestratorOptions = append(orchestratorOptions, geocode.WithRecorder(recorder))
		serviceOptions = append(serviceOptions, conversion.WithRecorder(recorder))
	}

	client := geocode.NewNominatimClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout)
	orchestrator, err := geocode.NewOrchestrator(client, cfg.GeocoderDelay, orchestratorOptions...)
	if err != nil {
		return nil, nil, err
	}

	store, err := blob.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	serviceOptions = append(serviceOptions, conversion.WithStore(store))

	return conversion.NewService(orchestrator, serviceOptions...), store, nil
}
