// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package blob_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/blob"
)

// fakeBucket is a path-style S3 endpoint serving one bucket.
type fakeBucket struct {
	name    string
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (bucket *fakeBucket) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	key := strings.TrimPrefix(strings.TrimPrefix(request.URL.Path, "/"+bucket.name), "/")

	switch {
	case request.Method == http.MethodGet && request.URL.Query().Get("list-type") == "2":
		prefix := request.URL.Query().Get("prefix")
		keys := []string{}
		for stored := range bucket.objects {
			if strings.HasPrefix(stored, prefix) {
				keys = append(keys, stored)
			}
		}
		sort.Strings(keys)

		var body strings.Builder
		body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><Name>` + bucket.name + `</Name><IsTruncated>false</IsTruncated>`)
		for _, stored := range keys {
			fmt.Fprintf(&body, `<Contents><Key>%s</Key><Size>%d</Size><ETag>"etag"</ETag><LastModified>2026-01-01T00:00:00.000Z</LastModified></Contents>`,
				stored, len(bucket.objects[stored]))
		}
		body.WriteString(`</ListBucketResult>`)

		writer.Header().Set("Content-Type", "application/xml")
		_, _ = writer.Write([]byte(body.String()))

	case request.Method == http.MethodPut:
		data, _ := io.ReadAll(request.Body)
		bucket.objects[key] = data
		bucket.types[key] = request.Header.Get("Content-Type")
		writer.Header().Set("ETag", `"etag"`)
		writer.WriteHeader(http.StatusOK)

	case request.Method == http.MethodGet:
		data, found := bucket.objects[key]
		if !found {
			writer.Header().Set("Content-Type", "application/xml")
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		writer.Header().Set("Content-Type", bucket.types[key])
		writer.Header().Set("Content-Length", fmt.Sprint(len(data)))
		writer.Header().Set("ETag", `"etag"`)
		_, _ = writer.Write(data)

	default:
		writer.WriteHeader(http.StatusNotImplemented)
	}
}

/*
TestS3Store runs the shared driver behavior against a fake S3 endpoint.
*/
func TestS3Store(t *testing.T) {
	bucket := &fakeBucket{name: "maps", objects: map[string][]byte{}, types: map[string]string{}}
	server := httptest.NewServer(bucket)
	defer server.Close()

	store, err := blob.NewS3(context.Background(), blob.S3Config{
		Bucket:          "maps",
		Region:          "auto",
		Endpoint:        server.URL,
		PathStyle:       true,
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
		HTTPClient:      server.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverS3, store.Driver())

	exerciseStore(t, store)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	assert.Equal(t, "application/geo+json", bucket.types["famille-dupont/run/lines.geojson"])
}

/*
TestNewS3_RequiresBucket rejects an empty bucket name.
*/
func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := blob.NewS3(context.Background(), blob.S3Config{})
	assert.Error(t, err)
}
