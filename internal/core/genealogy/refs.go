// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package genealogy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// # Reference Variant

// RefKind tells how a [Refs] value was expressed in the source.
type RefKind uint8

const (
	// RefNone means the field was absent or null.
	RefNone RefKind = iota
	// RefSingle means the field was a bare id string.
	RefSingle
	// RefMany means the field was an ordered list of ids.
	RefMany
)

// Refs is a reference field that is either empty, a single id, or an ordered
// list of ids. The original shape is kept so that it round-trips unchanged.
type Refs struct {
	kind RefKind
	ids  []string
}

// Single returns a single-id reference.
func Single(id string) Refs {
	return Refs{kind: RefSingle, ids: []string{id}}
}

// Many returns a list reference. An empty call still yields a list variant.
func Many(ids ...string) Refs {
	return Refs{kind: RefMany, ids: append([]string{}, ids...)}
}

// Kind returns the variant tag.
func (refs Refs) Kind() RefKind { return refs.kind }

// Len returns the number of referenced ids.
func (refs Refs) Len() int { return len(refs.ids) }

// IDs returns the referenced ids in source order regardless of the variant.
func (refs Refs) IDs() []string { return slices.Clone(refs.ids) }

// Contains reports whether id is referenced.
func (refs Refs) Contains(id string) bool { return slices.Contains(refs.ids, id) }

// MarshalJSON encodes the reference in its original shape.
func (refs Refs) MarshalJSON() ([]byte, error) {
	switch refs.kind {
	case RefSingle:
		return json.Marshal(refs.ids[0])
	case RefMany:
		return json.Marshal(append([]string{}, refs.ids...))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a string, or an array of strings.
func (refs *Refs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*refs = Refs{}
		return nil

	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*refs = Single(id)
		return nil

	case data[0] == '[':
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*refs = Refs{kind: RefMany, ids: ids}
		return nil
	}

	return fmt.Errorf("genealogy: reference must be a string or an array of strings, got %s", data)
}
