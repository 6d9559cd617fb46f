package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdg312/meal-hub/internal/config"
)

func TestValidateProductionConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"local defaults", config.Config{Env: "local", JWTSecret: "change_me", AuthRequired: true}, false},
		{"prod default secret", config.Config{Env: "prod", JWTSecret: "change_me", AuthRequired: true, DatabaseURL: "postgres://x"}, true},
		{"prod custom secret", config.Config{Env: "prod", JWTSecret: "s3cret", AuthRequired: true, DatabaseURL: "postgres://x"}, false},
		{"prod without database", config.Config{Env: "staging", JWTSecret: "s3cret"}, true},
		{"s3 incomplete", config.Config{Env: "local", Blob: config.BlobConfig{Mode: config.BlobModeS3}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProductionConfig(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSecretStatus(t *testing.T) {
	assert.Equal(t, "not set", secretStatus(" ", "change_me"))
	assert.Contains(t, secretStatus("change_me", "change_me"), "insecure")
	assert.Equal(t, "set (custom)", secretStatus("abc", "change_me"))
}
