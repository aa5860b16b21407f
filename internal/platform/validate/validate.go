// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// The validator checks settings and request parameters at the edges of the
// application (configuration loading, HTTP query parsing). Core packages
// receive values that already passed it.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/apperr"
)

// ErrInvalidJSON is returned when a request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// Port fails if the value is not a TCP port number.
func (v *Validator) Port(field, value string) *Validator {
	var port int
	if _, err := fmt.Sscanf(value, "%d", &port); err != nil || fmt.Sprint(port) != value || port < 1 || port > 65535 {
		v.add(field, "Must be a port between 1 and 65535")
	}
	return v
}

// URL fails if the value is not an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		v.add(field, "Must be an absolute http(s) URL")
	}
	return v
}

// MinDuration fails if the value is shorter than min.
func (v *Validator) MinDuration(field string, value, min time.Duration) *Validator {
	if value < min {
		v.add(field, fmt.Sprintf("Must be at least %s", min))
	}
	return v
}

// Positive fails if the duration is zero or negative.
func (v *Validator) Positive(field string, value time.Duration) *Validator {
	if value <= 0 {
		v.add(field, "Must be a positive duration")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method. Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
