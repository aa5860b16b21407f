// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package geometry assembles the GeoJSON outputs of a conversion.

Two collections are built from a record and the geocoded places:

  - Points: one feature per individual whose birth place was geocoded.
  - Lines: parent→child and husband↔wife links between those points.

Builders are pure. For identical inputs the encoded output is byte-identical:
features follow record order and property maps are encoded with sorted keys.
*/
package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geocode"
	"github.com/keldaan-ag/gedcom-shp/internal/core/lineage"
)

// LineType labels a line feature.
type LineType string

const (
	LineFatherChild LineType = "father-child"
	LineMotherChild LineType = "mother-child"
	LineMarriage    LineType = "marriage"
)

// Locator resolves a place string to coordinates. [geocode.Result] satisfies it.
type Locator interface {
	Lookup(place string) (geocode.Coordinates, bool)
}

// # Points

/*
BuildPoints returns one Point feature per individual whose birth place is
known to locations, in record order.

Absent or unreadable dates are reported as the Unix epoch (1970/1/1), never
as null. Months run 1..12 and days are the day of the month.

When annotations is non-nil every feature carries a color: the branch color
for numbered individuals, [lineage.FallbackColor] otherwise. Numbered
individuals also carry their sosa number and, when set, their branch.
*/
func BuildPoints(record *genealogy.Record, locations Locator, annotations lineage.Annotations, options Options) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()
	selected := options.selected()

	for position := range record.Individuals {
		individual := &record.Individuals[position]

		coordinates, found := locate(individual, locations)
		if !found {
			continue
		}

		feature := geojson.NewFeature(orb.Point{coordinates.Longitude, coordinates.Latitude})
		feature.Properties = pointProperties(individual, selected)

		if annotations != nil {
			annotate(feature.Properties, individual.ID, annotations)
		}

		collection.Append(feature)
	}

	return collection
}

func pointProperties(individual *genealogy.Individual, selected map[Field]bool) geojson.Properties {
	given, surname := genealogy.SplitFullname(individual.Fullname)

	properties := geojson.Properties{
		"firstName":  given,
		"name":       surname,
		"sex":        individual.Sex,
		"occupation": individual.Occupation,
		"id":         individual.ID,
	}

	birth := individual.Birth.When()
	death := individual.Death.When()

	dates := map[Field]int{
		FieldBirthYear:  birth.Year(),
		FieldBirthMonth: int(birth.Month()),
		FieldBirthDay:   birth.Day(),
		FieldDeathYear:  death.Year(),
		FieldDeathMonth: int(death.Month()),
		FieldDeathDay:   death.Day(),
	}
	for field, value := range dates {
		if selected[field] {
			properties[property[field]] = value
		}
	}

	return properties
}

func annotate(properties geojson.Properties, id string, annotations lineage.Annotations) {
	if color := annotations.ColorOf(id); color != "" {
		properties["color"] = color
	}

	annotation, found := annotations.Get(id)
	if !found {
		return
	}

	properties["sosa"] = annotation.Sosa
	if annotation.Branch != "" {
		properties["branch"] = annotation.Branch
	}
}

// # Lines

/*
BuildLines returns the relation links between located individuals.

For each relation, in record order, and each child in list order it emits a
father-child line (husband → child) then a mother-child line (wife → child).
A relation whose marriage is structured then gets one marriage line
(husband → wife). A bare marriage marker yields no line.

A line is emitted only when both endpoints exist and their birth places are
located. Any other case skips that line alone.
*/
func BuildLines(record *genealogy.Record, locations Locator, index *lineage.Index) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()

	link := func(fromID, toID string, kind LineType) {
		if feature, ok := buildLine(fromID, toID, kind, locations, index); ok {
			collection.Append(feature)
		}
	}

	for position := range record.Relations {
		relation := &record.Relations[position]

		for _, child := range relation.Children.IDs() {
			link(relation.Husband, child, LineFatherChild)
			link(relation.Wife, child, LineMotherChild)
		}

		if relation.Marriage.Structured() {
			link(relation.Husband, relation.Wife, LineMarriage)
		}
	}

	return collection
}

func buildLine(fromID, toID string, kind LineType, locations Locator, index *lineage.Index) (*geojson.Feature, bool) {
	from, found := index.Individual(fromID)
	if !found {
		return nil, false
	}
	to, found := index.Individual(toID)
	if !found {
		return nil, false
	}

	start, found := locate(from, locations)
	if !found {
		return nil, false
	}
	end, found := locate(to, locations)
	if !found {
		return nil, false
	}

	feature := geojson.NewFeature(orb.LineString{
		{start.Longitude, start.Latitude},
		{end.Longitude, end.Latitude},
	})
	feature.Properties = geojson.Properties{
		"from": from.Fullname,
		"to":   to.Fullname,
		"type": string(kind),
	}

	return feature, true
}

// locate returns the coordinates of an individual's birth place.
func locate(individual *genealogy.Individual, locations Locator) (geocode.Coordinates, bool) {
	place := individual.BirthPlace()
	if place == "" || locations == nil {
		return geocode.Coordinates{}, false
	}
	return locations.Lookup(place)
}
