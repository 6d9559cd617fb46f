package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

const (
	AuthModeNone = "none"
	AuthModeDev  = "dev"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PresignTTLSeconds int
}

// MissingRequired lists the env keys that must still be set for S3 mode.
func (c S3Config) MissingRequired() []string {
	required := []struct{ key, value string }{
		{"S3_ENDPOINT", c.Endpoint},
		{"S3_REGION", c.Region},
		{"S3_BUCKET", c.Bucket},
		{"S3_ACCESS_KEY_ID", c.AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", c.SecretAccessKey},
	}
	missing := make([]string, 0, len(required))
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

// IsEmpty reports whether no S3 key is set at all.
func (c S3Config) IsEmpty() bool {
	return len(c.MissingRequired()) == 5
}

// Summary describes the configuration for logs without exposing secrets.
func (c S3Config) Summary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s presign_ttl=%ds access_key_id=%s secret_access_key=%s",
		orDash(c.Endpoint), orDash(c.Region), orDash(c.Bucket), c.PresignTTLSeconds,
		setOrNot(c.AccessKeyID), setOrNot(c.SecretAccessKey))
}

func orDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// Config holds the application configuration.
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Database
	DatabaseURL          string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLPooled    string
	DatabaseURLRaw       string
	DatabaseURLDirect    string // for migrations / DDL (may be empty)
	DBConnectMaxAttempts int

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	Blob BlobConfig

	// Recipe photo uploads
	UploadMaxMB       int
	UploadAllowedMime []string

	// Authentication
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	RunMigrationsOnStartup bool
}

// Load reads the configuration from environment variables.
func Load() *Config {
	env := envString("APP_ENV", "local")

	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))
	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	dbAttempts := envInt("DB_CONNECT_MAX_ATTEMPTS", 5)
	if dbAttempts <= 0 {
		dbAttempts = 5
	}

	presignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if presignTTL <= 0 {
		presignTTL = 900
	}

	uploadMaxMB := envInt("UPLOAD_MAX_MB", 10)
	if uploadMaxMB <= 0 {
		uploadMaxMB = 10
	}

	authMode := strings.ToLower(envString("AUTH_MODE", AuthModeNone))
	if authMode != AuthModeNone && authMode != AuthModeDev {
		log.Warn().Str("AUTH_MODE", authMode).Msg("unknown auth mode, fallback to none")
		authMode = AuthModeNone
	}

	jwtSecret := envString("JWT_SECRET", "change_me")
	if jwtSecret == "change_me" && env != "local" {
		log.Warn().Str("env", env).Msg("JWT_SECRET is set to 'change_me' outside local")
	}

	return &Config{
		Env:      env,
		Port:     envInt("PORT", 8080),
		LogLevel: envString("LOG_LEVEL", "debug"),

		DatabaseURL:          runtimeDB,
		DatabaseURLPooled:    dbPooled,
		DatabaseURLRaw:       dbURL,
		DatabaseURLDirect:    dbDirect,
		DBConnectMaxAttempts: dbAttempts,

		CORSAllowedOrigins:   parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env),
		CORSAllowCredentials: parseBoolEnv("CORS_ALLOW_CREDENTIALS"),

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		Blob: BlobConfig{
			Mode: parseBlobMode("BLOB_MODE", BlobModeLocal),
			S3: S3Config{
				Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
				Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
				Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
				AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
				SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
				PresignTTLSeconds: presignTTL,
			},
		},

		UploadMaxMB:       uploadMaxMB,
		UploadAllowedMime: splitList(envString("UPLOAD_ALLOWED_MIME", "image/jpeg,image/png,image/heic")),

		AuthMode:      authMode,
		AuthRequired:  authMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED"),
		JWTSecret:     jwtSecret,
		JWTIssuer:     envString("JWT_ISSUER", "meal-hub"),
		JWTTTLMinutes: envInt("JWT_TTL_MINUTES", 10080),

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	if strings.TrimSpace(raw) == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Warn().Str(key, mode).Msgf("unknown blob mode, fallback to %s", defaultVal)
		return defaultVal
	}
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Warn().Str(key, s).Msg("not an integer, using default")
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
