// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/ctxutil"
)

// Orchestrator runs lookups sequentially against one [Lookuper].
//
// # Concurrency
//
// An Orchestrator serializes its own calls: concurrent Resolve calls on the
// same value queue behind each other.
type Orchestrator struct {
	lookuper Lookuper
	delay    time.Duration
	logger   *slog.Logger
	recorder Recorder

	// serial guards the single shared external resource.
	serial chan struct{}

	// limiter and wait are replaced by tests only.
	limiter *rate.Limiter
	wait    func(ctx context.Context, d time.Duration) error
}

// Option customizes an [Orchestrator].
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(orchestrator *Orchestrator) { orchestrator.logger = logger }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(orchestrator *Orchestrator) { orchestrator.recorder = recorder }
}

// NewOrchestrator constructs an [Orchestrator].
//
// # Parameters
//   - lookuper: the external geocoding boundary.
//   - delay: the post-lookup pause; zero means [DefaultDelay].
//
// # Returns
//   - ErrDelayTooShort if delay is positive and below [MinInterval].
func NewOrchestrator(lookuper Lookuper, delay time.Duration, options ...Option) (*Orchestrator, error) {
	if delay == 0 {
		delay = DefaultDelay
	}
	if delay < MinInterval {
		return nil, fmt.Errorf("%w: %s < %s", ErrDelayTooShort, delay, MinInterval)
	}

	orchestrator := &Orchestrator{
		lookuper: lookuper,
		delay:    delay,
		logger:   slog.Default(),
		serial:   make(chan struct{}, 1),
		limiter:  rate.NewLimiter(rate.Every(MinInterval), 1),
		wait:     sleep,
	}
	for _, option := range options {
		option(orchestrator)
	}

	return orchestrator, nil
}

// Delay returns the post-lookup pause.
func (orchestrator *Orchestrator) Delay() time.Duration { return orchestrator.delay }

/*
Resolve geocodes places one at a time, in order.

Each place gets exactly one lookup followed by the full delay. Failures mark
the place unresolved and the run goes on. Progress is pushed to observer (may
be nil) without ever blocking the lookup loop; Resolve returns only once every
notification has been delivered.

When ctx is cancelled the places not yet resolved are marked unresolved and
ctx's error is returned together with the partial result. Log entries carry
the run id found in ctx.
*/
func (orchestrator *Orchestrator) Resolve(ctx context.Context, places []string, observer Observer) (Result, error) {
	result := Result{
		Resolved:   make(map[string]Coordinates, len(places)),
		Unresolved: []string{},
	}

	logger := orchestrator.logger
	if runID := ctxutil.GetRunID(ctx); runID != "" {
		logger = logger.With(slog.String("run_id", runID))
	}

	// 1. Exclusive access to the external service
	select {
	case orchestrator.serial <- struct{}{}:
		defer func() { <-orchestrator.serial }()
	case <-ctx.Done():
		result.Unresolved = append(result.Unresolved, places...)
		return result, ctx.Err()
	}

	// 2. Progress dispatch; capacity covers every notification of the run
	notifications := make(chan Progress, len(places))
	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		for progress := range notifications {
			if observer != nil {
				observer.Observe(progress)
			}
		}
	}()
	defer func() {
		close(notifications)
		<-delivered
	}()

	logger.Info("geocode_started",
		slog.Int("places", len(places)),
		slog.Duration("delay", orchestrator.delay),
	)

	// 3. Strictly sequential lookups
	for index, place := range places {
		if err := orchestrator.limiter.Wait(ctx); err != nil {
			result.Unresolved = append(result.Unresolved, places[index:]...)
			return result, err
		}

		started := time.Now()
		coordinates, displayName, err := orchestrator.lookup(ctx, place)
		progress := Progress{
			Index:     index,
			Total:     len(places),
			Remaining: len(places) - index - 1,
			Place:     place,
		}

		if err != nil {
			result.Unresolved = append(result.Unresolved, place)
			progress.Err = err
			orchestrator.record(OutcomeUnresolved, started)
			logger.Warn("geocode_place_unresolved",
				slog.Int("index", index),
				slog.Int("total", len(places)),
				slog.String("place", place),
				slog.Any("error", err),
			)
		} else {
			result.Resolved[place] = coordinates
			progress.Resolved = true
			progress.DisplayName = displayName
			orchestrator.record(OutcomeResolved, started)
			logger.Info("geocode_place_resolved",
				slog.Int("index", index),
				slog.Int("total", len(places)),
				slog.String("place", place),
				slog.String("display_name", displayName),
			)
		}

		notifications <- progress

		// 4. Mandatory pause, also after a failure and after the last place
		if err := orchestrator.wait(ctx, orchestrator.delay); err != nil {
			result.Unresolved = append(result.Unresolved, places[index+1:]...)
			return result, err
		}
	}

	logger.Info("geocode_completed",
		slog.Int("resolved", len(result.Resolved)),
		slog.Int("unresolved", len(result.Unresolved)),
	)

	return result, nil
}

// lookup performs one external call and extracts the first candidate.
func (orchestrator *Orchestrator) lookup(ctx context.Context, place string) (Coordinates, string, error) {
	candidates, err := orchestrator.lookuper.Lookup(ctx, place)
	if err != nil {
		return Coordinates{}, "", fmt.Errorf("geocode: lookup %q: %w", place, err)
	}
	if len(candidates) == 0 {
		return Coordinates{}, "", ErrNoCandidate
	}

	first := candidates[0]
	latitude, err := parseCoordinate(first.Latitude)
	if err != nil {
		return Coordinates{}, "", err
	}
	longitude, err := parseCoordinate(first.Longitude)
	if err != nil {
		return Coordinates{}, "", err
	}

	return Coordinates{Latitude: latitude, Longitude: longitude}, first.DisplayName, nil
}

func (orchestrator *Orchestrator) record(outcome Outcome, started time.Time) {
	if orchestrator.recorder != nil {
		orchestrator.recorder.RecordLookup(outcome, time.Since(started))
	}
}

func parseCoordinate(raw string) (float64, error) {
	if raw == "" {
		return 0, ErrNoCoordinates
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNoCoordinates, raw)
	}
	return value, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
