// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keldaan-ag/gedcom-shp/pkg/slug"
)

/*
TestFrom covers accent removal and hyphen cleanup.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Famille Dupont", "famille-dupont"},
		{"Généalogie Müller", "genealogie-muller"},
		{"  --Arbre (v2)!!  ", "arbre-v2"},
		{"Ærø", "r"},
		{"", ""},
		{"田中", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestFrom_Truncates bounds the slug length.
*/
func TestFrom_Truncates(t *testing.T) {
	got := slug.From(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(got), slug.MaxLen)
	assert.False(t, strings.HasSuffix(got, "-"))
}

/*
TestFileStem drops directories and the extension.
*/
func TestFileStem(t *testing.T) {
	assert.Equal(t, "famille-dupont", slug.FileStem("Famille Dupont.ged"))
	assert.Equal(t, "export", slug.FileStem(`C:\Users\jean\export.GED`))
	assert.Equal(t, "tree-2024", slug.FileStem("/tmp/tree.2024.ged"))
	assert.Equal(t, "gedcom", slug.FileStem(".gedcom"))
	assert.Equal(t, "", slug.FileStem(""))
}
