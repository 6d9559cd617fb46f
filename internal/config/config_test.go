package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://storage.yandexcloud.net",
		Bucket:   "bucket",
	}
	assert.Equal(t, []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"}, cfg.MissingRequired())
	assert.False(t, cfg.IsConfigured())
	assert.False(t, cfg.IsEmpty())
	assert.True(t, S3Config{}.IsEmpty())
}

func TestS3ConfigSummaryHidesSecrets(t *testing.T) {
	summary := S3Config{AccessKeyID: "AKIA", SecretAccessKey: "shh", Bucket: "photos"}.Summary()
	assert.Contains(t, summary, "bucket=photos")
	assert.Contains(t, summary, "access_key_id=set")
	assert.NotContains(t, summary, "shh")
	assert.NotContains(t, summary, "AKIA")
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "AUTH_MODE", "BLOB_MODE", "DATABASE_URL", "DATABASE_URL_POOLED", "DATABASE_URL_DIRECT", "UPLOAD_ALLOWED_MIME"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, AuthModeNone, cfg.AuthMode)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, BlobModeLocal, cfg.Blob.Mode)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/heic"}, cfg.UploadAllowedMime)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8081"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_MODE", "DEV")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("BLOB_MODE", "bogus")
	t.Setenv("DATABASE_URL", "postgres://a")
	t.Setenv("DATABASE_URL_POOLED", "postgres://pooled")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, AuthModeDev, cfg.AuthMode)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, BlobModeLocal, cfg.Blob.Mode)
	assert.Equal(t, "postgres://pooled", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
