// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package geocode resolves free-text place names to coordinates.

Lookups go to a single shared external service whose usage policy forbids
bursts, so the [Orchestrator] is deliberately sequential:

  - One lookup at a time, never in parallel.
  - A full post-lookup delay after every lookup, successful or not.
  - A token bucket floor of one call per [MinInterval] on top of the delay.

A place that cannot be resolved is recorded and skipped. Partial success is
the normal outcome of a run, not an error.
*/
package geocode

import (
	"context"
	"errors"
	"time"
)

// # Pacing

const (
	// DefaultDelay is the pause observed after every lookup.
	DefaultDelay = 2 * time.Second

	// MinInterval is the hard floor between two lookups. Delays below it are
	// rejected.
	MinInterval = time.Second
)

// # Errors

var (
	// ErrDelayTooShort is returned when a configured delay is below MinInterval.
	ErrDelayTooShort = errors.New("geocode: delay is below the service rate limit")

	// ErrNoCandidate is recorded when the service returned no result.
	ErrNoCandidate = errors.New("geocode: no candidate")

	// ErrNoCoordinates is recorded when the first candidate lacks a usable
	// latitude or longitude.
	ErrNoCoordinates = errors.New("geocode: candidate has no usable coordinates")

	// ErrMalformedResponse is returned by lookupers when the payload cannot be read.
	ErrMalformedResponse = errors.New("geocode: malformed response")

	// ErrUnexpectedStatus is returned by lookupers on a non-2xx reply.
	ErrUnexpectedStatus = errors.New("geocode: unexpected status")
)

// # Contracts & Types

// Coordinates is a resolved WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Candidate is one ranked answer of the external service. Coordinates are
// kept as the raw strings the service sent; empty means absent.
type Candidate struct {
	Latitude    string
	Longitude   string
	DisplayName string
}

// Lookuper is the external geocoding boundary: one call per place.
type Lookuper interface {
	Lookup(ctx context.Context, place string) ([]Candidate, error)
}

// Progress is pushed to an [Observer] after each place.
type Progress struct {
	// Index is the zero-based position of the place just processed.
	Index int
	// Total is the number of places in the run.
	Total int
	// Remaining is the number of places still to process.
	Remaining int
	// Place is the original place string.
	Place string
	// Resolved reports whether coordinates were found.
	Resolved bool
	// DisplayName is the service's label for the resolved place.
	DisplayName string
	// Err is the reason the place stayed unresolved.
	Err error
}

// Observer receives progress notifications.
type Observer interface {
	Observe(progress Progress)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(progress Progress)

// Observe calls f.
func (f ObserverFunc) Observe(progress Progress) { f(progress) }

// Outcome labels a lookup for metrics.
type Outcome string

const (
	OutcomeResolved   Outcome = "resolved"
	OutcomeUnresolved Outcome = "unresolved"
)

// Recorder receives one call per lookup.
type Recorder interface {
	RecordLookup(outcome Outcome, elapsed time.Duration)
}

// Result is the outcome of a geocoding run. Every input place ends up in
// exactly one of Resolved or Unresolved.
type Result struct {
	Resolved   map[string]Coordinates
	Unresolved []string
}

// Lookup returns the coordinates of a resolved place.
func (result Result) Lookup(place string) (Coordinates, bool) {
	coordinates, found := result.Resolved[place]
	return coordinates, found
}
