// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package genealogy

import (
	"bytes"
	"encoding/json"
	"time"
)

// Epoch is the calendar value reported for an absent date.
var Epoch = time.Unix(0, 0).UTC()

// dateLayouts are the shapes the parser uses for normalized date values.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// # Events

// Event is a dated, located life event (birth, death, residence).
type Event struct {
	Date  *Date  `json:"Date,omitempty"`
	Place string `json:"Place,omitempty"`
}

// When returns the event's normalized date, or [Epoch] when no date value was
// recorded. Callers always get a calendar value, never an "unknown" marker.
func (event *Event) When() time.Time {
	if event == nil || event.Date == nil || event.Date.Value == nil {
		return Epoch
	}
	return *event.Date.Value
}

// UnmarshalJSON accepts a single event object or a list of them, in which
// case the first entry is kept.
func (event *Event) UnmarshalJSON(data []byte) error {
	type plain Event

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var events []plain
		if err := json.Unmarshal(data, &events); err != nil {
			return err
		}
		*event = Event{}
		if len(events) > 0 {
			*event = Event(events[0])
		}
		return nil
	}

	var single plain
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*event = Event(single)
	return nil
}

// # Dates

// Date is a GEDCOM date with its precision flags.
type Date struct {
	Original string `json:"Original,omitempty"`
	HasYear  bool   `json:"HasYear"`
	HasMonth bool   `json:"HasMonth"`
	HasDay   bool   `json:"HasDay"`

	// Value is the normalized instant. It is nil when the parser produced no
	// value or a value in an unknown layout.
	Value *time.Time `json:"Value,omitempty"`
}

// UnmarshalJSON reads the normalized value leniently: unknown layouts leave
// Value nil instead of failing the whole record.
func (date *Date) UnmarshalJSON(data []byte) error {
	var raw struct {
		Original string          `json:"Original"`
		HasYear  bool            `json:"HasYear"`
		HasMonth bool            `json:"HasMonth"`
		HasDay   bool            `json:"HasDay"`
		Value    json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*date = Date{
		Original: raw.Original,
		HasYear:  raw.HasYear,
		HasMonth: raw.HasMonth,
		HasDay:   raw.HasDay,
	}

	var value string
	if len(raw.Value) == 0 || json.Unmarshal(raw.Value, &value) != nil || value == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			date.Value = &parsed
			break
		}
	}

	return nil
}
