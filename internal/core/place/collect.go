// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package place extracts the set of place names a genealogy refers to.

Places are compared by exact string equality. No normalization of case,
whitespace or accents is applied: "Lyon", "lyon" and "Lyon " are three
distinct places and will be geocoded three times. This keeps the mapping from
record to coordinates a plain lookup on the original string.
*/
package place

import (
	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
)

// Collect returns the distinct place names referenced by the record, in order
// of first occurrence: for each individual its birth place then its death
// place, then the places of every structured marriage. Bare marriage markers
// contribute nothing.
func Collect(record *genealogy.Record) []string {
	collector := newCollector()

	// 1. Births and deaths, individual by individual
	for index := range record.Individuals {
		individual := &record.Individuals[index]
		collector.add(individual.BirthPlace())
		collector.add(individual.DeathPlace())
	}

	// 2. Structured marriages
	for index := range record.Relations {
		for _, place := range record.Relations[index].Marriage.Places() {
			collector.add(place)
		}
	}

	return collector.places
}

type collector struct {
	seen   map[string]struct{}
	places []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{}), places: []string{}}
}

func (collector *collector) add(place string) {
	if place == "" {
		return
	}
	if _, found := collector.seen[place]; found {
		return
	}
	collector.seen[place] = struct{}{}
	collector.places = append(collector.places, place)
}
