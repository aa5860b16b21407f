// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package genealogy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// MarriageMarker is the literal the parser emits for "married, no detail".
const MarriageMarker = "Y"

// MarriageKind tells how a [Marriage] was expressed in the source.
type MarriageKind uint8

const (
	// MarriageAbsent means no marriage was recorded.
	MarriageAbsent MarriageKind = iota
	// MarriageOccurred is the bare marker: a marriage took place, no details.
	MarriageOccurred
	// MarriageSingle is one structured marriage event.
	MarriageSingle
	// MarriageMany is an ordered list of structured marriage events.
	MarriageMany
)

// MarriageEvent is a structured marriage record.
type MarriageEvent struct {
	Date  *Date  `json:"Date,omitempty"`
	Place string `json:"Place,omitempty"`
}

// Marriage is the tagged marriage field of a [Relation].
type Marriage struct {
	kind   MarriageKind
	events []MarriageEvent
}

// Occurred returns the bare "married, no detail" marker.
func Occurred() Marriage {
	return Marriage{kind: MarriageOccurred}
}

// Married returns a single structured marriage event.
func Married(event MarriageEvent) Marriage {
	return Marriage{kind: MarriageSingle, events: []MarriageEvent{event}}
}

// MarriedMany returns a list of structured marriage events.
func MarriedMany(events ...MarriageEvent) Marriage {
	return Marriage{kind: MarriageMany, events: slices.Clone(events)}
}

// Kind returns the variant tag.
func (marriage Marriage) Kind() MarriageKind { return marriage.kind }

// Structured reports whether the marriage carries event details, as opposed
// to being absent or the bare marker.
func (marriage Marriage) Structured() bool {
	return marriage.kind == MarriageSingle || marriage.kind == MarriageMany
}

// Events returns the structured events in source order.
func (marriage Marriage) Events() []MarriageEvent { return slices.Clone(marriage.events) }

// Places returns the non-empty places of the structured events in order.
func (marriage Marriage) Places() []string {
	var places []string
	for _, event := range marriage.events {
		if event.Place != "" {
			places = append(places, event.Place)
		}
	}
	return places
}

// MarshalJSON encodes the marriage in its original shape.
func (marriage Marriage) MarshalJSON() ([]byte, error) {
	switch marriage.kind {
	case MarriageOccurred:
		return json.Marshal(MarriageMarker)
	case MarriageSingle:
		return json.Marshal(marriage.events[0])
	case MarriageMany:
		if marriage.events == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(marriage.events)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, the marker string, an event object, or an array
// of event objects. Any string is read as the marker.
func (marriage *Marriage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*marriage = Marriage{}
		return nil

	case data[0] == '"':
		*marriage = Occurred()
		return nil

	case data[0] == '{':
		var event MarriageEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		*marriage = Married(event)
		return nil

	case data[0] == '[':
		var events []MarriageEvent
		if err := json.Unmarshal(data, &events); err != nil {
			return err
		}
		*marriage = Marriage{kind: MarriageMany, events: events}
		return nil
	}

	return fmt.Errorf("genealogy: marriage must be a marker, an object or an array, got %s", data)
}
