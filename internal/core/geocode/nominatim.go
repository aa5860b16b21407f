// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies the tool, as required by the Nominatim policy.
	DefaultUserAgent = "geogedcom/1.0 (+https://github.com/keldaan-ag/gedcom-shp)"

	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes caps the payload read from the service.
	maxResponseBytes = 1 << 20
)

// NominatimClient implements [Lookuper] against a Nominatim search endpoint.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimClient returns a client for baseURL. Empty arguments fall back
// to the package defaults.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// nominatimHit is one entry of the search response. Coordinates are strings.
type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup queries /search for place and returns the ranked candidates.
func (client *NominatimClient) Lookup(ctx context.Context, place string) ([]Candidate, error) {
	query := url.Values{}
	query.Set("q", place)
	query.Set("format", "json")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", client.userAgent)
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, response.StatusCode)
	}

	var hits []nominatimHit
	if err := json.NewDecoder(io.LimitReader(response.Body, maxResponseBytes)).Decode(&hits); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, Candidate{
			Latitude:    hit.Lat,
			Longitude:   hit.Lon,
			DisplayName: hit.DisplayName,
		})
	}

	return candidates, nil
}
