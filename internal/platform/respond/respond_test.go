// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package respond_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/apperr"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/respond"
)

/*
TestOK wraps data in the success envelope.
*/
func TestOK(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]int{"points": 3})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"points":3}}`, recorder.Body.String())
}

/*
TestError maps errors onto the error envelope.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "conflict",
			err:        apperr.Conflict("A conversion is already running"),
			wantStatus: http.StatusConflict,
			wantBody:   `{"code":"CONFLICT","error":"A conversion is already running"}`,
		},
		{
			name:       "validation_details",
			err:        apperr.ValidationError("Validation failed", apperr.FieldError{Field: "fields", Message: "unknown field"}),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_ERROR","error":"Validation failed","details":[{"field":"fields","message":"unknown field"}]}`,
		},
		{
			name:       "plain_error_hidden",
			err:        errors.New("disk full at /var/out"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"INTERNAL_ERROR","error":"An unexpected error occurred"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodPost, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
		})
	}
}
