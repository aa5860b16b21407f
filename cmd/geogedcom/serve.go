// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keldaan-ag/gedcom-shp/internal/api"
	"github.com/keldaan-ag/gedcom-shp/internal/core/conversion"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/constants"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/metrics"
)

func newServeCmd(state *app) *cobra.Command {
	var port string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the conversion API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				state.cfg.ServerPort = port
			}
			return state.serve(cmd.Context())
		},
	}

	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Listening port (overrides SERVER_PORT)")

	return serveCmd
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests.
func (state *app) serve(parent context.Context) error {
	cfg, log := state.cfg, state.log

	// 1. Configuration
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("output_driver", cfg.OutputDriver),
	)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Domain wiring
	registry := metrics.New(true)
	service, store, err := state.newService(ctx, registry)
	if err != nil {
		return err
	}

	// 3. Health handlers (wired with real dependency checkers)
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStore: func(ctx context.Context) error {
			_, err := store.List(ctx, constants.ReadinessPrefix)
			return err
		},
	}, log)

	// 4. HTTP server
	server := api.NewServer(ctx, cfg, log, api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Metrics:    registry.Handler(),
		Conversion: conversion.NewHandler(service, cfg.SosaRoot),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 5. Graceful shutdown; block until OS signal or server error
	select {
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
		return err
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		return err
	}

	log.Info("server_stopped_cleanly")
	return nil
}
