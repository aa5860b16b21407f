// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package lineage

import (
	"errors"
	"strings"

	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
)

const (
	// BranchGeneration is the generation (root = 0) whose surname labels a branch.
	BranchGeneration = 5

	// MaxGeneration is the deepest generation numbered. Sosa numbers of
	// generation 62 still fit in an int64.
	MaxGeneration = 62
)

// ErrRootNotFound is returned when no individual matches the requested root.
var ErrRootNotFound = errors.New("lineage: root individual not found")

// # Annotations

// Annotation is the lineage data attached to one numbered individual.
type Annotation struct {
	Sosa   int64  `json:"sosa"`
	Branch string `json:"branch,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Annotations maps individual ids to their annotation. A nil value means
// numbering was not run.
type Annotations map[string]Annotation

// Get returns the annotation of id.
func (annotations Annotations) Get(id string) (Annotation, bool) {
	annotation, found := annotations[id]
	return annotation, found
}

// # Ancestor Numbering

// ascent is one pending step of the walk towards the ancestors.
type ascent struct {
	id         string
	number     int64
	generation int
	branch     string

	// descendants holds the ids between the root and this step.
	descendants *descent
}

// descent is an immutable chain of ids, nearest first. Sibling steps share
// their common tail.
type descent struct {
	id    string
	child *descent
}

func (chain *descent) contains(id string) bool {
	for link := chain; link != nil; link = link.child {
		if link.id == id {
			return true
		}
	}
	return false
}

/*
ComputeSosa numbers the ancestors of rootID.

The walk uses an explicit stack seeded with (rootID, 1, generation 0, no
branch). For each step:

 1. An unknown id, or an id already among the step's own descendants (a
    cyclic ancestry), ends that path.
 2. At [BranchGeneration] the branch becomes the individual's surname.
 3. An individual without any relation ends the path unnumbered.
 4. Otherwise the individual receives the step's number and branch.
 5. The parent relation ([Index.ParentRelation]) yields the father (2n) and
    the mother (2n+1) at the next generation. A missing side is skipped.

The father's line is walked before the mother's, so an ancestor reached
through several paths keeps the numbers of the last visit in that order.
Pedigree collapse is still walked once per path; only a path returning to
one of its own descendants is cut.
*/
func ComputeSosa(index *Index, rootID string) Annotations {
	annotations := Annotations{}
	stack := []ascent{{id: rootID, number: 1}}

	for len(stack) > 0 {
		step := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// 1. Resolve
		if step.descendants.contains(step.id) {
			continue
		}
		individual, found := index.Individual(step.id)
		if !found {
			continue
		}

		// 2. Fix the branch label at the chosen depth
		if step.generation == BranchGeneration {
			step.branch = individual.Surname()
		}

		// 3. Leaf of the traversal
		if individual.Relations.Len() == 0 {
			continue
		}

		// 4. Number
		annotations[individual.ID] = Annotation{Sosa: step.number, Branch: step.branch}

		if step.generation >= MaxGeneration {
			continue
		}

		// 5. Ascend; mother pushed first so the father is walked first
		parents, found := index.ParentRelation(individual)
		if !found {
			continue
		}
		descendants := &descent{id: individual.ID, child: step.descendants}
		if parents.Wife != "" {
			stack = append(stack, ascent{
				id:         parents.Wife,
				number:     2*step.number + 1,
				generation: step.generation + 1,
				branch:     step.branch,

				descendants: descendants,
			})
		}
		if parents.Husband != "" {
			stack = append(stack, ascent{
				id:         parents.Husband,
				number:     2 * step.number,
				generation: step.generation + 1,
				branch:     step.branch,

				descendants: descendants,
			})
		}
	}

	return annotations
}

// # Root Selection

/*
FindRoot resolves the numbering root from a user query.

The query matches, in order of preference across the whole record: an
individual id, an exact full name ("Jean /Dupont/"), then a display name
("Jean Dupont") compared case-insensitively. The first individual matching the
best criterion wins.
*/
func FindRoot(record *genealogy.Record, query string) (*genealogy.Individual, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrRootNotFound
	}

	matchers := []func(individual *genealogy.Individual) bool{
		func(individual *genealogy.Individual) bool { return individual.ID == query },
		func(individual *genealogy.Individual) bool { return individual.Fullname == query },
		func(individual *genealogy.Individual) bool {
			return strings.EqualFold(genealogy.DisplayName(individual.Fullname), query)
		},
	}

	for _, matches := range matchers {
		for position := range record.Individuals {
			if individual := &record.Individuals[position]; matches(individual) {
				return individual, nil
			}
		}
	}

	return nil, ErrRootNotFound
}

// Number runs ancestor numbering from rootID and colors the resulting branches.
func Number(record *genealogy.Record, index *Index, rootID string) Annotations {
	annotations := ComputeSosa(index, rootID)
	AssignColors(record, annotations)
	return annotations
}
