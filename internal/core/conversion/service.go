// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package conversion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geocode"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geometry"
	"github.com/keldaan-ag/gedcom-shp/internal/core/lineage"
	"github.com/keldaan-ag/gedcom-shp/internal/core/place"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/blob"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/constants"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/ctxkey"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/ctxutil"
	"github.com/keldaan-ag/gedcom-shp/pkg/slice"
	"github.com/keldaan-ag/gedcom-shp/pkg/slug"
	"github.com/keldaan-ag/gedcom-shp/pkg/uuidv7"
)

// ErrNoInput is returned when a [Request] carries neither a record nor an input.
var ErrNoInput = errors.New("conversion: no record or input")

const (
	geoJSONContentType = "application/geo+json"
	jsonContentType    = "application/json"
)

// Service executes conversion runs.
type Service struct {
	resolver Resolver
	store    blob.Store
	logger   *slog.Logger
	recorder Recorder
	timeout  time.Duration
	now      func() time.Time
}

// Option customizes a [Service].
type Option func(*Service)

// WithStore sets the output store. Without one, runs are not persisted.
func WithStore(store blob.Store) Option {
	return func(service *Service) { service.store = store }
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(service *Service) { service.logger = logger }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(service *Service) { service.recorder = recorder }
}

// WithTimeout bounds every run. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(service *Service) { service.timeout = timeout }
}

// NewService constructs a [Service] around the geocoding resolver.
func NewService(resolver Resolver, options ...Option) *Service {
	service := &Service{
		resolver: resolver,
		now:      time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// Store returns the output store, or nil.
func (service *Service) Store() blob.Store { return service.store }

/*
Convert executes one run.

# Flow

 1. Decodes the input unless a record is given.
 2. Indexes the record, collects its places and numbers the root's ancestors.
 3. Geocodes the places sequentially.
 4. Builds the point and line collections.
 5. Writes both collections and the report under "<source slug>/<run id>/".

# Errors

  - [genealogy.ErrInvalidRecord] when the input cannot be decoded.
  - The context error when the run is cancelled or times out.
  - Any output store failure.
*/
func (service *Service) Convert(ctx context.Context, request Request, observer Observer) (*Result, error) {
	started := service.now()
	runID := uuidv7.New()

	ctx = ctxutil.WithRunID(ctx, runID)
	if service.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, service.timeout)
		defer cancel()
	}

	logger := service.loggerFor(ctx).With(slog.String("run_id", runID))

	result, err := service.run(ctx, logger, runID, request, notifier{observer})
	outcome := OutcomeSucceeded
	if err != nil {
		outcome = OutcomeFailed
		logger.Error("conversion_failed", slog.Any("error", err))
	}
	if service.recorder != nil {
		service.recorder.RecordConversion(outcome, service.now().Sub(started))
	}

	return result, err
}

func (service *Service) run(ctx context.Context, logger *slog.Logger, runID string, request Request, notify notifier) (*Result, error) {
	report := Report{
		RunID:      runID,
		Root:       request.Root,
		Unresolved: []string{},
		Warnings:   []Warning{},
		Outputs:    []blob.Info{},
		StartedAt:  service.now().UTC(),
	}

	// 1. Upload
	notify.stage(StageUpload)
	record := request.Record
	if record == nil {
		if request.Input == nil {
			return nil, ErrNoInput
		}
		decoded, err := genealogy.Decode(request.Input)
		if err != nil {
			return nil, err
		}
		record = decoded
	}

	report.Source = request.Source
	if report.Source == "" {
		report.Source = record.Head.File
	}
	report.Stats.Individuals = len(record.Individuals)
	report.Stats.Relations = len(record.Relations)

	logger.Info("conversion_started",
		slog.String("source", report.Source),
		slog.Int("individuals", report.Stats.Individuals),
		slog.Int("relations", report.Stats.Relations),
	)

	// 2. Conversion: index, places, numbering
	notify.stage(StageConversion)
	index := lineage.NewIndex(record)
	places := place.Collect(record)
	report.Stats.Places = len(places)

	var annotations lineage.Annotations
	if request.Root != "" {
		root, err := lineage.FindRoot(record, request.Root)
		if err != nil {
			report.Warnings = append(report.Warnings, Warning{
				Kind:    WarningRootNotFound,
				Subject: request.Root,
				Message: "No individual matches the root; Sosa numbering skipped",
			})
			logger.Warn("conversion_root_not_found", slog.String("root", request.Root))
		} else {
			annotations = lineage.Number(record, index, root.ID)
			report.Stats.Numbered = len(annotations)
			logger.Info("conversion_numbered",
				slog.String("root_id", root.ID),
				slog.Int("numbered", report.Stats.Numbered),
			)
		}
	}

	// 3. Geocode
	notify.stage(StageGeocode)
	locations, err := service.resolver.Resolve(ctx, places, geocode.ObserverFunc(func(progress geocode.Progress) {
		notify.progress(progress)
	}))
	if err != nil {
		return nil, fmt.Errorf("conversion: geocode: %w", err)
	}
	report.Stats.Resolved = len(locations.Resolved)
	report.Unresolved = append(report.Unresolved, locations.Unresolved...)
	report.Warnings = append(report.Warnings, slice.Map(locations.Unresolved, func(place string) Warning {
		return Warning{
			Kind:    WarningUnresolvedPlace,
			Subject: place,
			Message: "The place could not be geocoded",
		}
	})...)

	// 4. Creation
	notify.stage(StageCreation)
	points := geometry.BuildPoints(record, locations, annotations, geometry.Options{Fields: request.Fields})
	lines := geometry.BuildLines(record, locations, index)
	report.Stats.Points = len(points.Features)
	report.Stats.Lines = len(lines.Features)

	result := &Result{Points: points, Lines: lines}
	if service.store != nil {
		report.Prefix = outputPrefix(report.Source, runID)
		if err := service.persist(ctx, &report, points, lines); err != nil {
			return nil, err
		}
	} else {
		report.FinishedAt = service.now().UTC()
	}
	result.Report = report

	// 5. Complete
	notify.stage(StageComplete)
	logger.Info("conversion_completed",
		slog.Int("points", report.Stats.Points),
		slog.Int("lines", report.Stats.Lines),
		slog.Int("resolved", report.Stats.Resolved),
		slog.Int("places", report.Stats.Places),
		slog.Int("warnings", len(report.Warnings)),
	)

	return result, nil
}

// persist writes the collections then the report, which lists them.
func (service *Service) persist(ctx context.Context, report *Report, objects ...json.Marshaler) error {
	names := []string{constants.PointsObject, constants.LinesObject}

	for position, object := range objects {
		payload, err := object.MarshalJSON()
		if err != nil {
			return fmt.Errorf("conversion: encode %s: %w", names[position], err)
		}
		info, err := service.put(ctx, blob.Join(report.Prefix, names[position]), payload, geoJSONContentType)
		if err != nil {
			return err
		}
		report.Outputs = append(report.Outputs, info)
	}

	report.FinishedAt = service.now().UTC()
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("conversion: encode report: %w", err)
	}
	_, err = service.put(ctx, blob.Join(report.Prefix, constants.ReportObject), payload, jsonContentType)
	return err
}

func (service *Service) put(ctx context.Context, key string, payload []byte, contentType string) (blob.Info, error) {
	info, err := service.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{ContentType: contentType})
	if err != nil {
		return blob.Info{}, fmt.Errorf("conversion: write %s: %w", key, err)
	}
	return info, nil
}

func (service *Service) loggerFor(ctx context.Context) *slog.Logger {
	if _, scoped := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); scoped || service.logger == nil {
		return ctxutil.GetLogger(ctx)
	}
	return service.logger
}

// outputPrefix joins the slug of the source file name with the run id.
func outputPrefix(source, runID string) string {
	if stem := slug.FileStem(source); stem != "" {
		return blob.Join(stem, runID)
	}
	return runID
}

// notifier forwards events to an optional observer.
type notifier struct {
	observer Observer
}

func (notify notifier) stage(stage Stage) {
	if notify.observer != nil {
		notify.observer.Observe(Event{Stage: stage})
	}
}

func (notify notifier) progress(progress geocode.Progress) {
	if notify.observer != nil {
		notify.observer.Observe(Event{Stage: StageGeocode, Progress: &progress})
	}
}
