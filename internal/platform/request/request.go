// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away body limiting and query parsing patterns, ensuring
consistent error handling and type safety.
*/
package requestutil

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/apperr"
)

/*
Body returns the request body capped at limit bytes. Reading past the cap
fails with an error that [BodyError] maps to 413.
*/
func Body(writer http.ResponseWriter, request *http.Request, limit int64) io.Reader {
	return http.MaxBytesReader(writer, request.Body, limit)
}

/*
BodyError converts a body read failure into an [apperr.AppError]. It returns
nil when err is not caused by the body limit.
*/
func BodyError(err error) *apperr.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.PayloadTooLarge(tooLarge.Limit).WithCause(err)
	}
	return nil
}

/*
Query retrieves a trimmed query string parameter from the request.
*/
func Query(request *http.Request, name string) string {
	return strings.TrimSpace(request.URL.Query().Get(name))
}
