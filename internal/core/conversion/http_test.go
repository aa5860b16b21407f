// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package conversion_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keldaan-ag/gedcom-shp/internal/core/conversion"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/blob"
)

type envelope struct {
	Data struct {
		Points geojson.FeatureCollection `json:"points"`
		Lines  geojson.FeatureCollection `json:"lines"`
		Report conversion.Report         `json:"report"`
	} `json:"data"`
	Code    string `json:"code"`
	Details []struct {
		Field string `json:"field"`
	} `json:"details"`
}

func newRouter(service *conversion.Service, defaultRoot string) http.Handler {
	router := chi.NewRouter()
	conversion.NewHandler(service, defaultRoot).RegisterRoutes(router)
	return router
}

func post(t *testing.T, router http.Handler, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))

	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded), recorder.Body.String())
	return recorder, decoded
}

/*
TestHandler_Convert returns both collections and the report.
*/
func TestHandler_Convert(t *testing.T) {
	router := newRouter(conversion.NewService(newResolver()), "@I3@")

	recorder, response := post(t, router, "/?fields=birth-year,deathYear", household)
	require.Equal(t, http.StatusCreated, recorder.Code)

	assert.Len(t, response.Data.Points.Features, 3)
	assert.Len(t, response.Data.Lines.Features, 3)
	assert.Equal(t, "@I3@", response.Data.Report.Root)
	assert.Equal(t, 3, response.Data.Report.Stats.Numbered)

	properties := response.Data.Points.Features[0].Properties
	assert.Contains(t, properties, "birthYear")
	assert.NotContains(t, properties, "birthMonth")
}

/*
TestHandler_Convert_Invalid maps request problems to 400.
*/
func TestHandler_Convert_Invalid(t *testing.T) {
	router := newRouter(conversion.NewService(newResolver()), "")

	recorder, response := post(t, router, "/?fields=height", household)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", response.Code)
	require.Len(t, response.Details, 1)
	assert.Equal(t, "fields", response.Details[0].Field)

	recorder, response = post(t, router, "/", "GEDCOM 5.5")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", response.Code)
}

/*
TestHandler_Convert_Busy admits a single run at a time.
*/
func TestHandler_Convert_Busy(t *testing.T) {
	resolver := newResolver()
	resolver.entered = make(chan struct{})
	resolver.release = make(chan struct{})
	router := newRouter(conversion.NewService(resolver), "")

	done := make(chan int)
	go func() {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(household)))
		done <- recorder.Code
	}()

	<-resolver.entered
	recorder, response := post(t, router, "/", household)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "CONFLICT", response.Code)

	close(resolver.release)
	assert.Equal(t, http.StatusCreated, <-done)

	// The guard is released once the run ends.
	resolver.entered = nil
	recorder, _ = post(t, router, "/", household)
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

/*
TestHandler_Convert_Timeout answers 504 when the run exceeds its deadline.
*/
func TestHandler_Convert_Timeout(t *testing.T) {
	resolver := newResolver()
	resolver.block = true
	router := newRouter(conversion.NewService(resolver, conversion.WithTimeout(20*time.Millisecond)), "")

	recorder, response := post(t, router, "/", household)
	assert.Equal(t, http.StatusGatewayTimeout, recorder.Code)
	assert.Equal(t, "TIMEOUT", response.Code)
}

/*
TestHandler_Outputs lists and streams the stored objects of a run.
*/
func TestHandler_Outputs(t *testing.T) {
	router := newRouter(conversion.NewService(newResolver(), conversion.WithStore(blob.NewMemory())), "")

	_, response := post(t, router, "/", household)
	prefix := response.Data.Report.Prefix
	require.NotEmpty(t, prefix)

	// 1. Listing
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/outputs?prefix="+prefix, nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var listing struct {
		Data []blob.Info `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listing))
	assert.Len(t, listing.Data, 3)

	// 2. Streaming
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/outputs/"+prefix+"/points.geojson", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/geo+json", recorder.Header().Get("Content-Type"))

	collection, err := geojson.UnmarshalFeatureCollection(recorder.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, collection.Features, 3)

	// 3. Missing
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/outputs/"+prefix+"/missing.geojson", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestHandler_Outputs_NoStore answers 404 when runs are not persisted.
*/
func TestHandler_Outputs_NoStore(t *testing.T) {
	router := newRouter(conversion.NewService(newResolver()), "")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/outputs", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
