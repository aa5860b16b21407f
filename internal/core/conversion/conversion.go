// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package conversion runs the whole GEDCOM to GeoJSON pipeline for one record.

A run moves through fixed stages:

	upload → conversion → geocode → creation → complete

Upload decodes the parser JSON. Conversion indexes the record, collects its
places and numbers the ancestors of the chosen root. Geocode resolves the
places one at a time. Creation assembles both feature collections and writes
them, with the run report, to the output store.

Only a record that cannot be decoded, a failed write, or a cancelled context
abort a run. Unresolved places and an unknown root end up as warnings in the
[Report].
*/
package conversion

import (
	"context"
	"io"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geocode"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geometry"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/blob"
)

// # Stages

// Stage names a step of a run.
type Stage string

const (
	StageUpload     Stage = "upload"
	StageConversion Stage = "conversion"
	StageGeocode    Stage = "geocode"
	StageCreation   Stage = "creation"
	StageComplete   Stage = "complete"
)

// Event is pushed to an [Observer] when a stage starts and, during the
// geocode stage, after every place.
type Event struct {
	Stage    Stage
	Progress *geocode.Progress
}

// Observer receives run events.
type Observer interface {
	Observe(event Event)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(event Event)

// Observe calls f.
func (f ObserverFunc) Observe(event Event) { f(event) }

// # Report

// WarningKind classifies a recoverable problem of a run.
type WarningKind string

const (
	WarningUnresolvedPlace WarningKind = "unresolved_place"
	WarningRootNotFound    WarningKind = "root_not_found"
)

// Warning is a recoverable problem. Subject is the place or root query it
// concerns.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// Stats summarizes a run.
type Stats struct {
	Individuals int `json:"individuals"`
	Relations   int `json:"relations"`
	Places      int `json:"places"`
	Resolved    int `json:"resolved"`
	Points      int `json:"points"`
	Lines       int `json:"lines"`
	Numbered    int `json:"numbered"`
}

// Report is written next to the feature collections of every run.
type Report struct {
	RunID      string      `json:"run_id"`
	Source     string      `json:"source,omitempty"`
	Root       string      `json:"root,omitempty"`
	Prefix     string      `json:"prefix,omitempty"`
	Stats      Stats       `json:"stats"`
	Unresolved []string    `json:"unresolved"`
	Warnings   []Warning   `json:"warnings"`
	Outputs    []blob.Info `json:"outputs"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// # Contracts

// Request describes one run. Record takes precedence over Input; Input is
// decoded with [genealogy.Decode] otherwise.
type Request struct {
	Record *genealogy.Record
	Input  io.Reader

	// Source names the input, usually its file name. It defaults to the file
	// name recorded in the GEDCOM head and prefixes the output keys.
	Source string

	// Root selects the Sosa root by id or name. Empty skips numbering.
	Root string

	// Fields restricts the date properties of the points. Nil means all.
	Fields []geometry.Field
}

// Result holds both collections and the report of a run.
type Result struct {
	Points *geojson.FeatureCollection `json:"points"`
	Lines  *geojson.FeatureCollection `json:"lines"`
	Report Report                     `json:"report"`
}

// Resolver geocodes an ordered list of places. [geocode.Orchestrator]
// satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, places []string, observer geocode.Observer) (geocode.Result, error)
}

// Recorder receives one call per finished run.
type Recorder interface {
	RecordConversion(outcome string, elapsed time.Duration)
}

// Run outcomes passed to [Recorder].
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)
