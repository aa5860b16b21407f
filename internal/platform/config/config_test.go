// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keldaan-ag/gedcom-shp/internal/platform/apperr"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/config"
)

/*
TestLoad_Defaults checks the documented defaults of an empty environment.
*/
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.GeocoderURL)
	assert.Equal(t, 2*time.Second, cfg.GeocoderDelay)
	assert.Equal(t, 10*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, config.DriverFS, cfg.OutputDriver)
	assert.Equal(t, time.Hour, cfg.ConversionTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.ValidateServer())
}

/*
TestLoad_Environment maps variables onto the struct.
*/
func TestLoad_Environment(t *testing.T) {
	t.Setenv("GEOCODER_DELAY", "3s")
	t.Setenv("SOSA_ROOT", "Jean Dupont")
	t.Setenv("OUTPUT_DRIVER", "s3")
	t.Setenv("OUTPUT_S3_BUCKET", "maps")
	t.Setenv("OUTPUT_S3_PATH_STYLE", "true")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "https://map.example.org,https://atlas.example.org")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.GeocoderDelay)
	assert.Equal(t, "Jean Dupont", cfg.SosaRoot)
	assert.Equal(t, "maps", cfg.OutputBucket)
	assert.True(t, cfg.OutputPathStyle)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://map.example.org", "https://atlas.example.org"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

/*
TestLoad_Malformed rejects values the parser cannot read.
*/
func TestLoad_Malformed(t *testing.T) {
	t.Setenv("GEOCODER_DELAY", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_Validate lists every failing setting.
*/
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		fields []string
	}{
		{
			name:   "delay_below_floor",
			mutate: func(cfg *config.Config) { cfg.GeocoderDelay = 500 * time.Millisecond },
			fields: []string{"GEOCODER_DELAY"},
		},
		{
			name:   "s3_without_bucket",
			mutate: func(cfg *config.Config) { cfg.OutputDriver = config.DriverS3 },
			fields: []string{"OUTPUT_S3_BUCKET"},
		},
		{
			name:   "unknown_driver",
			mutate: func(cfg *config.Config) { cfg.OutputDriver = "ftp" },
			fields: []string{"OUTPUT_DRIVER"},
		},
		{
			name: "several",
			mutate: func(cfg *config.Config) {
				cfg.GeocoderURL = "nominatim"
				cfg.GeocoderUserAgent = ""
				cfg.ConversionTimeout = 0
			},
			fields: []string{"GEOCODER_URL", "GEOCODER_USER_AGENT", "CONVERSION_TIMEOUT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			ae := apperr.As(cfg.Validate())
			require.NotNil(t, ae)

			fields := []string{}
			for _, detail := range ae.Details {
				fields = append(fields, detail.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

/*
TestConfig_ValidateServer checks the listening port.
*/
func TestConfig_ValidateServer(t *testing.T) {
	t.Setenv("SERVER_PORT", "http")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateServer())
}
