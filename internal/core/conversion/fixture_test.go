// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package conversion_test

import (
	"context"
	"sync"
	"time"

	"github.com/keldaan-ag/gedcom-shp/internal/core/geocode"
)

// household is the parser output of a father, a mother and their child,
// married in Lyon.
const household = `{
  "Head": { "File": "Famille Dupont.ged" },
  "Individuals": [
    { "Id": "@I1@", "Fullname": "Jean /Dupont/", "Sex": "M", "Birth": { "Place": "Lyon" }, "Relations": "@F1@" },
    { "Id": "@I2@", "Fullname": "Marie /Martin/", "Sex": "F", "Birth": { "Place": "Grenoble" }, "Relations": "@F1@" },
    { "Id": "@I3@", "Fullname": "Louis /Dupont/", "Sex": "M", "Birth": { "Place": "Annecy" }, "Relations": "@F1@" }
  ],
  "Relations": [
    { "Id": "@F1@", "Husband": "@I1@", "Wife": "@I2@", "Children": "@I3@", "Marriage": { "Place": "Lyon" } }
  ]
}`

var gazetteer = map[string]geocode.Coordinates{
	"Lyon":     {Latitude: 45.76, Longitude: 4.83},
	"Grenoble": {Latitude: 45.19, Longitude: 5.72},
	"Annecy":   {Latitude: 45.90, Longitude: 6.13},
}

// fakeResolver answers from a fixed gazetteer without pacing.
type fakeResolver struct {
	known map[string]geocode.Coordinates

	// entered and release, when set, hold Resolve until release is closed.
	entered chan struct{}
	release chan struct{}

	// block makes Resolve wait for the context to end.
	block bool

	mu    sync.Mutex
	calls [][]string
}

func newResolver(except ...string) *fakeResolver {
	known := make(map[string]geocode.Coordinates, len(gazetteer))
	for place, coordinates := range gazetteer {
		known[place] = coordinates
	}
	for _, place := range except {
		delete(known, place)
	}
	return &fakeResolver{known: known}
}

func (resolver *fakeResolver) Resolve(ctx context.Context, places []string, observer geocode.Observer) (geocode.Result, error) {
	resolver.mu.Lock()
	resolver.calls = append(resolver.calls, places)
	resolver.mu.Unlock()

	if resolver.entered != nil {
		resolver.entered <- struct{}{}
		<-resolver.release
	}
	result := geocode.Result{Resolved: map[string]geocode.Coordinates{}, Unresolved: []string{}}
	if resolver.block {
		<-ctx.Done()
		result.Unresolved = append(result.Unresolved, places...)
		return result, ctx.Err()
	}

	for index, place := range places {
		coordinates, found := resolver.known[place]
		if found {
			result.Resolved[place] = coordinates
		} else {
			result.Unresolved = append(result.Unresolved, place)
		}
		if observer != nil {
			observer.Observe(geocode.Progress{
				Index:     index,
				Total:     len(places),
				Remaining: len(places) - index - 1,
				Place:     place,
				Resolved:  found,
			})
		}
	}
	return result, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (recorder *fakeRecorder) RecordConversion(outcome string, _ time.Duration) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.outcomes = append(recorder.outcomes, outcome)
}
