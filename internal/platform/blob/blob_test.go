// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package blob_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/blob"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/config"
)

func read(t *testing.T, store blob.Store, key string) (blob.Info, string) {
	t.Helper()

	info, reader, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return info, string(data)
}

// exerciseStore runs the behavior every driver shares.
func exerciseStore(t *testing.T, store blob.Store) {
	ctx := context.Background()

	// 1. Put and read back
	info, err := store.Put(ctx, "famille-dupont/run/points.geojson", strings.NewReader(`{"type":"FeatureCollection"}`), blob.PutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "famille-dupont/run/points.geojson", info.Key)
	assert.Equal(t, int64(28), info.Size)
	assert.Equal(t, "application/geo+json", info.ContentType)

	_, body := read(t, store, "famille-dupont/run/points.geojson")
	assert.Equal(t, `{"type":"FeatureCollection"}`, body)

	// 2. Overwrite
	_, err = store.Put(ctx, "famille-dupont/run/points.geojson", strings.NewReader(`{}`), blob.PutOptions{ContentType: "application/json"})
	require.NoError(t, err)
	_, body = read(t, store, "famille-dupont/run/points.geojson")
	assert.Equal(t, `{}`, body)

	// 3. List by prefix, in key order
	_, err = store.Put(ctx, "famille-dupont/run/lines.geojson", strings.NewReader(`[]`), blob.PutOptions{})
	require.NoError(t, err)
	_, err = store.Put(ctx, "other/run/report.json", strings.NewReader(`{}`), blob.PutOptions{})
	require.NoError(t, err)

	infos, err := store.List(ctx, "famille-dupont/")
	require.NoError(t, err)
	keys := []string{}
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	assert.Equal(t, []string{"famille-dupont/run/lines.geojson", "famille-dupont/run/points.geojson"}, keys)

	// 4. Missing and invalid keys
	_, _, err = store.Get(ctx, "famille-dupont/run/absent.json")
	assert.ErrorIs(t, err, blob.ErrNotFound)

	for _, key := range []string{"", "/etc/passwd", "../escape", "a/../../b"} {
		_, err = store.Put(ctx, key, strings.NewReader("x"), blob.PutOptions{})
		assert.ErrorIs(t, err, blob.ErrInvalidKey, key)
	}
}

/*
TestMemoryStore covers the in-memory driver.
*/
func TestMemoryStore(t *testing.T) {
	store := blob.NewMemory()
	assert.Equal(t, blob.DriverMemory, store.Driver())
	exerciseStore(t, store)
}

/*
TestFilesystemStore covers the directory driver and its on-disk layout.
*/
func TestFilesystemStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	store, err := blob.NewFilesystem(root)
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, store.Driver())

	exerciseStore(t, store)

	data, err := os.ReadFile(filepath.Join(root, "famille-dupont", "run", "lines.geojson"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Join(root, "famille-dupont", "run"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Prefixes are directories on disk and never objects
	for _, prefix := range []string{"famille-dupont", "famille-dupont/run"} {
		_, _, err := store.Get(context.Background(), prefix)
		assert.ErrorIs(t, err, blob.ErrNotFound, prefix)
	}
}

/*
TestCleanKey normalizes keys and rejects escapes.
*/
func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"a/b/c.json", "a/b/c.json", false},
		{"a//b/./c.json", "a/b/c.json", false},
		{"a/../b.json", "b.json", false},
		{"..", "", true},
		{"a\\b", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := blob.CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, blob.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestOpen selects the driver from configuration.
*/
func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := blob.Open(ctx, &config.Config{OutputDriver: config.DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverMemory, store.Driver())

	store, err = blob.Open(ctx, &config.Config{OutputDriver: config.DriverFS, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, store.Driver())

	_, err = blob.Open(ctx, &config.Config{OutputDriver: config.DriverS3})
	assert.Error(t, err)

	_, err = blob.Open(ctx, &config.Config{OutputDriver: "ftp"})
	assert.ErrorIs(t, err, blob.ErrUnknownDriver)
}
