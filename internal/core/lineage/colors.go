// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package lineage

import (
	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
)

// FallbackColor is used for individuals that carry no branch label.
const FallbackColor = "#808080"

// Palette is the fixed branch palette, assigned in order.
var Palette = [32]string{
	"#2f1e45", "#861043", "#b41e40", "#c83737", "#da5a3a", "#d4a864", "#c38e65", "#b16c59",
	"#944c4c", "#7f3748", "#5f253e", "#662c2a", "#8e4f24", "#c6801d", "#e5a732", "#9abf44",
	"#679c30", "#22783f", "#164a45", "#203b68", "#345f99", "#4293ca", "#64c3de", "#a6c4bf",
	"#829fa1", "#687f88", "#52636d", "#394451", "#3f2352", "#7d2f7e", "#a83690", "#ce4999",
}

/*
AssignColors gives each distinct branch the next unused [Palette] entry, in
order of first encounter over record's individuals, and stores the color on
the annotations. It returns the branch → color table.

Numbered individuals without a branch get [FallbackColor]. Branches beyond
the 32nd get no color at all: their annotations keep an empty Color and the
table maps them to "". Palette entries are not reused.
*/
func AssignColors(record *genealogy.Record, annotations Annotations) map[string]string {
	colors := map[string]string{}
	next := 0

	// 1. Branch table, first encounter order
	for position := range record.Individuals {
		annotation, found := annotations[record.Individuals[position].ID]
		if !found || annotation.Branch == "" {
			continue
		}
		if _, seen := colors[annotation.Branch]; seen {
			continue
		}

		color := ""
		if next < len(Palette) {
			color = Palette[next]
		}
		colors[annotation.Branch] = color
		next++
	}

	// 2. Color every annotation
	for id, annotation := range annotations {
		if annotation.Branch == "" {
			annotation.Color = FallbackColor
		} else {
			annotation.Color = colors[annotation.Branch]
		}
		annotations[id] = annotation
	}

	return colors
}

// ColorOf returns the display color of an individual once numbering ran.
// Individuals outside the numbered set get [FallbackColor].
func (annotations Annotations) ColorOf(id string) string {
	annotation, found := annotations[id]
	if !found {
		return FallbackColor
	}
	return annotation.Color
}
