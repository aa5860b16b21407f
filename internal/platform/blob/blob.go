// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package blob stores the artifacts of a conversion run.

A [Store] is a flat key/value object store with S3 semantics: keys are
slash-separated paths, a Put replaces any previous object under the same key,
and List walks a key prefix in lexical order.

Drivers:

  - fs: a directory on the local filesystem (default).
  - s3: an S3 compatible bucket (AWS S3, MinIO, R2).
  - memory: a process-local map, used by tests and the HTTP server.
*/
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/config"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	DriverFilesystem Driver = config.DriverFS
	DriverS3         Driver = config.DriverS3
	DriverMemory     Driver = config.DriverMemory
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("blob: not found")

	// ErrInvalidKey is returned for empty, absolute or escaping keys.
	ErrInvalidKey = errors.New("blob: invalid key")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("blob: unknown driver")
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
}

// Info describes a stored object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the output sink of the conversion pipeline.
type Store interface {
	Put(ctx context.Context, key string, reader io.Reader, options PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// # Factory

// Open selects a [Store] implementation from the configuration.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch Driver(cfg.OutputDriver) {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.OutputDir)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.OutputBucket,
			Region:    cfg.OutputRegion,
			Endpoint:  cfg.OutputEndpoint,
			PathStyle: cfg.OutputPathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.OutputDriver)
	}
}

// # Keys

// CleanKey validates key and returns its canonical form.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q escapes the store", ErrInvalidKey, key)
	}
	return clean, nil
}

// Join builds an object key from path segments.
func Join(segments ...string) string {
	return path.Join(segments...)
}
