// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package geometry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a field selection names an unknown date property.
var ErrUnknownField = errors.New("geometry: unknown field")

// Field is a selectable date property of a point feature.
type Field string

const (
	FieldBirthYear  Field = "birth-year"
	FieldBirthMonth Field = "birth-month"
	FieldBirthDay   Field = "birth-day"
	FieldDeathYear  Field = "death-year"
	FieldDeathMonth Field = "death-month"
	FieldDeathDay   Field = "death-day"
)

// AllFields lists every date property in emission order.
var AllFields = []Field{
	FieldBirthYear, FieldBirthMonth, FieldBirthDay,
	FieldDeathYear, FieldDeathMonth, FieldDeathDay,
}

// property is the GeoJSON property name of each field.
var property = map[Field]string{
	FieldBirthYear:  "birthYear",
	FieldBirthMonth: "birthMonth",
	FieldBirthDay:   "birthDay",
	FieldDeathYear:  "deathYear",
	FieldDeathMonth: "deathMonth",
	FieldDeathDay:   "deathDay",
}

/*
ParseFields reads a comma separated field selection such as
"birth-year,death-year". Both the selector form and the property form
("birthYear") are accepted. An empty selection means every field.
*/
func ParseFields(raw string) ([]Field, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var fields []Field
	seen := map[Field]bool{}

	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		field, ok := lookupField(token)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, token)
		}
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}

	return fields, nil
}

func lookupField(token string) (Field, bool) {
	for _, field := range AllFields {
		if strings.EqualFold(token, string(field)) || strings.EqualFold(token, property[field]) {
			return field, true
		}
	}
	return "", false
}

// Options tunes the point builder.
type Options struct {
	// Fields restricts the emitted date properties. Nil means all of them.
	Fields []Field
}

func (options Options) selected() map[Field]bool {
	fields := options.Fields
	if fields == nil {
		fields = AllFields
	}

	selected := make(map[Field]bool, len(fields))
	for _, field := range fields {
		selected[field] = true
	}
	return selected
}
