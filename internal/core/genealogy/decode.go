// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package genealogy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Separator splits a full name into its given-name and surname components.
const Separator = "/"

// ErrInvalidRecord is returned when the parser output cannot be decoded. It is
// the only failure that aborts a conversion run.
var ErrInvalidRecord = errors.New("genealogy: invalid record")

// # Input Boundary

// Decode reads one parser JSON document into a [Record].
func Decode(reader io.Reader) (*Record, error) {
	var record Record

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return &record, nil
}

// # Names

// SplitFullname splits a GEDCOM full name ("Jean /Dupont/") into given name
// and surname. When the separator is absent the surname is empty. Both parts
// are trimmed of surrounding whitespace.
func SplitFullname(fullname string) (given, surname string) {
	parts := strings.Split(fullname, Separator)

	given = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		surname = strings.TrimSpace(parts[1])
	}

	return given, surname
}

// DisplayName joins given name and surname with a single space.
func DisplayName(fullname string) string {
	given, surname := SplitFullname(fullname)
	return strings.TrimSpace(given + " " + surname)
}
