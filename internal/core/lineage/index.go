// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package lineage computes ancestor (Sosa/Kekulé) numbers and lineage branches.

The root individual is number 1; the father of n is 2n and the mother 2n+1.
Every ancestor reached [BranchGeneration] generations above the root fixes a
branch label (its surname) that is propagated to its own ancestors and used
to pick a display color.

Results are returned as an [Annotations] side-table keyed by individual id.
The record itself is never modified.
*/
package lineage

import (
	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
)

// # Index

// Index provides O(1) lookups of individuals and relations by id.
type Index struct {
	individuals map[string]*genealogy.Individual
	relations   map[string]*genealogy.Relation
}

// NewIndex builds the id indices of record. When an id appears twice the
// first entity wins.
func NewIndex(record *genealogy.Record) *Index {
	index := &Index{
		individuals: make(map[string]*genealogy.Individual, len(record.Individuals)),
		relations:   make(map[string]*genealogy.Relation, len(record.Relations)),
	}

	for position := range record.Individuals {
		individual := &record.Individuals[position]
		if _, found := index.individuals[individual.ID]; !found {
			index.individuals[individual.ID] = individual
		}
	}

	for position := range record.Relations {
		relation := &record.Relations[position]
		if _, found := index.relations[relation.ID]; !found {
			index.relations[relation.ID] = relation
		}
	}

	return index
}

// Individual returns the individual with the given id.
func (index *Index) Individual(id string) (*genealogy.Individual, bool) {
	individual, found := index.individuals[id]
	return individual, found
}

// Relation returns the relation with the given id.
func (index *Index) Relation(id string) (*genealogy.Relation, bool) {
	relation, found := index.relations[id]
	return relation, found
}

/*
ParentRelation returns the relation in which individual appears as a child.

Only the relations listed in the individual's own Relations field are
scanned, in order. If the individual is (erroneously) a child of several of
them, the LAST match wins. Dangling relation ids are skipped.
*/
func (index *Index) ParentRelation(individual *genealogy.Individual) (*genealogy.Relation, bool) {
	var parents *genealogy.Relation

	for _, id := range individual.Relations.IDs() {
		relation, found := index.relations[id]
		if !found {
			continue
		}
		if relation.HasChild(individual.ID) {
			parents = relation
		}
	}

	return parents, parents != nil
}
