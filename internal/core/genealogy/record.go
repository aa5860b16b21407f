// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package genealogy defines the typed record model produced by the external
GEDCOM parser.

The model mirrors the parser's JSON tree: a header, a flat list of individuals
and a flat list of relations (families). Entities reference each other by id
only, never by pointer, so every consumer that needs an entity by id builds
its own index.

Architecture:

  - Read-only: once decoded, a [Record] is never mutated by the pipeline.
  - Variants: fields that the source format expresses either as a single id or
    as a list of ids are modelled as a tagged [Refs]. Marriages are a tagged
    [Marriage] (bare marker, one event, or many events).
  - Annotations such as ancestor numbers live in a side-table owned by the
    lineage package, not on the entities.
*/
package genealogy

// # Record

// Record is the root of a parsed genealogy.
type Record struct {
	Head        Head         `json:"Head"`
	Individuals []Individual `json:"Individuals"`
	Relations   []Relation   `json:"Relations"`
}

// Head carries the file-level metadata emitted by the parser.
type Head struct {
	Source     *Source `json:"Source,omitempty"`
	File       string  `json:"File,omitempty"`
	Gedcom     *Format `json:"Gedcom,omitempty"`
	Characters string  `json:"Characters,omitempty"`
}

// Source identifies the software that exported the GEDCOM file.
type Source struct {
	Name    Refs   `json:"Name"`
	Version string `json:"Version,omitempty"`
}

// Format describes the GEDCOM dialect of the input.
type Format struct {
	Version string `json:"Version,omitempty"`
	Format  string `json:"Format,omitempty"`
}

// # Entities

// Individual is a single person of the genealogy.
type Individual struct {
	ID         string `json:"Id"`
	Fullname   string `json:"Fullname"`
	Sex        string `json:"Sex,omitempty"`
	Birth      *Event `json:"Birth,omitempty"`
	Death      *Event `json:"Death,omitempty"`
	Residence  *Event `json:"Residence,omitempty"`
	Occupation string `json:"Occupation,omitempty"`

	// Relations lists the relations this individual belongs to, either as a
	// spouse or as a child.
	Relations Refs `json:"Relations"`
}

// Surname returns the surname component of the full name.
func (individual *Individual) Surname() string {
	_, surname := SplitFullname(individual.Fullname)
	return surname
}

// BirthPlace returns the birth place, or "" when none was recorded.
func (individual *Individual) BirthPlace() string {
	if individual.Birth == nil {
		return ""
	}
	return individual.Birth.Place
}

// DeathPlace returns the death place, or "" when none was recorded.
func (individual *Individual) DeathPlace() string {
	if individual.Death == nil {
		return ""
	}
	return individual.Death.Place
}

// Relation is a family: a couple and the children attached to it.
type Relation struct {
	ID       string   `json:"Id"`
	Husband  string   `json:"Husband,omitempty"`
	Wife     string   `json:"Wife,omitempty"`
	Children Refs     `json:"Children"`
	Marriage Marriage `json:"Marriage"`
}

// HasChild reports whether id is listed among the relation's children.
func (relation *Relation) HasChild(id string) bool {
	return relation.Children.Contains(id)
}
