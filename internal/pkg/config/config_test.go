package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 60*time.Second, cfg.Redis.StatsCacheTTL)
	assert.Equal(t, StorageDisk, cfg.Storage.Driver)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "50M", cfg.HTTP.MaxBody)
	assert.Equal(t, 1000, cfg.HTTP.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.HTTP.RateWindow)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"PORT":           "8080",
		"ENV":            "production",
		"STORAGE_DRIVER": "minio",
		"MINIO_ENDPOINT": "minio:9000",
		"CORS_ORIGINS":   "https://a.example.com,https://b.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, StorageMinIO, cfg.Storage.Driver)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":     {},
		"unknown driver":     {"JWT_SECRET": "s", "STORAGE_DRIVER": "ftp"},
		"minio without host": {"JWT_SECRET": "s", "STORAGE_DRIVER": "minio"},
		"zero upload limit":  {"JWT_SECRET": "s", "MAX_UPLOAD_BYTES": "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
