// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded and overridden by CLI flags, configuration is read-only.
  - DI-Friendly: Passed to the geocoder, the output store and the server via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/validate"
)

// Output drivers.
const (
	DriverFS     = "fs"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the geogedcom CLI and server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// AllowedOrigins lists the front-end origins accepted outside development.
	AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Geocoding service (Nominatim compatible)
	GeocoderURL       string        `env:"GEOCODER_URL"        envDefault:"https://nominatim.openstreetmap.org"`
	GeocoderUserAgent string        `env:"GEOCODER_USER_AGENT" envDefault:"geogedcom/1.0"`
	GeocoderTimeout   time.Duration `env:"GEOCODER_TIMEOUT"    envDefault:"10s"`

	// GeocoderDelay is the pause after every lookup. The service policy
	// allows at most one request per second.
	GeocoderDelay time.Duration `env:"GEOCODER_DELAY" envDefault:"2s"`

	// SosaRoot names the individual numbered 1. Empty disables numbering.
	SosaRoot string `env:"SOSA_ROOT"`

	// Output store
	OutputDriver    string `env:"OUTPUT_DRIVER"        envDefault:"fs"`
	OutputDir       string `env:"OUTPUT_DIR"           envDefault:"./out"`
	OutputBucket    string `env:"OUTPUT_S3_BUCKET"`
	OutputRegion    string `env:"OUTPUT_S3_REGION"     envDefault:"auto"`
	OutputEndpoint  string `env:"OUTPUT_S3_ENDPOINT"`
	OutputPathStyle bool   `env:"OUTPUT_S3_PATH_STYLE" envDefault:"false"`

	// ConversionTimeout bounds one whole run, geocoding included.
	ConversionTimeout time.Duration `env:"CONVERSION_TIMEOUT" envDefault:"1h"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings once CLI overrides have been applied.
func (c *Config) Validate() error {
	v := &validate.Validator{}

	v.URL("GEOCODER_URL", c.GeocoderURL).
		Required("GEOCODER_USER_AGENT", c.GeocoderUserAgent).
		Positive("GEOCODER_TIMEOUT", c.GeocoderTimeout).
		MinDuration("GEOCODER_DELAY", c.GeocoderDelay, time.Second).
		Positive("CONVERSION_TIMEOUT", c.ConversionTimeout).
		OneOf("OUTPUT_DRIVER", c.OutputDriver, DriverFS, DriverS3, DriverMemory)

	switch c.OutputDriver {
	case DriverFS:
		v.Required("OUTPUT_DIR", c.OutputDir)
	case DriverS3:
		v.Required("OUTPUT_S3_BUCKET", c.OutputBucket)
		if c.OutputEndpoint != "" {
			v.URL("OUTPUT_S3_ENDPOINT", c.OutputEndpoint)
		}
	}

	return v.Err()
}

// ValidateServer additionally checks the settings only the HTTP server uses.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return (&validate.Validator{}).Port("SERVER_PORT", c.ServerPort).Err()
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
