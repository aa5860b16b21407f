// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// Conversion run ids are UUIDv7: listing the output store by key sorts the
// runs of one family tree by start time.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// This is acceptable as OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// Valid reports whether s is a version 7 UUID.
func Valid(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 7
}
