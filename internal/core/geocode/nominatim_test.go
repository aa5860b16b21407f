// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keldaan-ag/gedcom-shp/internal/core/geocode"
)

/*
TestNominatimClient_Lookup covers the search endpoint contract and failure modes.
*/
func TestNominatimClient_Lookup(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantResult []geocode.Candidate
	}{
		{
			name:   "candidates",
			status: http.StatusOK,
			body:   `[{"lat":"45.7578","lon":"4.8320","display_name":"Lyon, France","importance":0.8},{"lat":"1","lon":"2"}]`,
			wantResult: []geocode.Candidate{
				{Latitude: "45.7578", Longitude: "4.8320", DisplayName: "Lyon, France"},
				{Latitude: "1", Longitude: "2"},
			},
		},
		{
			name:       "no_result",
			status:     http.StatusOK,
			body:       `[]`,
			wantResult: []geocode.Candidate{},
		},
		{
			name:    "error_object",
			status:  http.StatusOK,
			body:    `{"error":"Unable to geocode"}`,
			wantErr: geocode.ErrMalformedResponse,
		},
		{
			name:    "throttled",
			status:  http.StatusTooManyRequests,
			body:    `rate limited`,
			wantErr: geocode.ErrUnexpectedStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/search", request.URL.Path)
				assert.Equal(t, "Saint-Étienne, Loire", request.URL.Query().Get("q"))
				assert.Equal(t, "json", request.URL.Query().Get("format"))
				assert.Equal(t, "geogedcom-test", request.Header.Get("User-Agent"))

				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := geocode.NewNominatimClient(server.URL+"/", "geogedcom-test", time.Second)
			candidates, err := client.Lookup(context.Background(), "Saint-Étienne, Loire")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, candidates)
		})
	}
}

/*
TestNominatimClient_Unreachable surfaces transport errors to the orchestrator.
*/
func TestNominatimClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := geocode.NewNominatimClient(url, "", 0)
	_, err := client.Lookup(context.Background(), "Lyon")
	assert.Error(t, err)
}
