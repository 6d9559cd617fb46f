package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/config"
	"github.com/fdg312/meal-hub/internal/dbmigrate"
	"github.com/fdg312/meal-hub/internal/httpserver"
	"github.com/fdg312/meal-hub/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger.SetGlobal(logger.New("meal-hub-api", cfg.LogLevel, cfg.Env))

	printStartupBanner(cfg)

	if err := validateProductionConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrationsOnStartup {
		sel, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatal().Err(err).Msg("startup migrations")
		}
		log.Info().Str("using", sel.Source).Msg("startup migrations: up")
		if err := dbmigrate.Run(ctx, "up", sel.URL); err != nil {
			log.Fatal().Err(err).Msg("startup migrations failed")
		}
		log.Info().Msg("startup migrations completed")
	}

	server, err := httpserver.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init server")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		server.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// printStartupBanner logs the resolved configuration. Secrets are reported
// only as "set" / "not set".
func printStartupBanner(cfg *config.Config) {
	log.Info().
		Str("env", cfg.Env).
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("meal hub api starting")

	log.Info().
		Str("runtime_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)).
		Str("pooled", setOrNot(cfg.DatabaseURLPooled)).
		Str("direct", setOrNot(cfg.DatabaseURLDirect)).
		Bool("migrations_on_startup", cfg.RunMigrationsOnStartup).
		Int("connect_attempts", cfg.DBConnectMaxAttempts).
		Msg("database")

	log.Info().
		Str("auth_mode", cfg.AuthMode).
		Bool("auth_required", cfg.AuthRequired).
		Str("jwt_secret", secretStatus(cfg.JWTSecret, "change_me")).
		Int("jwt_ttl_minutes", cfg.JWTTTLMinutes).
		Msg("auth")

	blobEvent := log.Info().
		Str("blob_mode", cfg.Blob.Mode).
		Int("upload_max_mb", cfg.UploadMaxMB).
		Strs("upload_mime", cfg.UploadAllowedMime)
	if cfg.Blob.Mode != config.BlobModeLocal {
		blobEvent = blobEvent.Str("s3", cfg.Blob.S3.Summary())
	}
	blobEvent.Msg("blob")

	log.Info().
		Int("rate_limit_rps", cfg.RateLimitRPS).
		Int("rate_limit_burst", cfg.RateLimitBurst).
		Strs("cors_origins", cfg.CORSAllowedOrigins).
		Msg("http")
}

// validateProductionConfig rejects configurations that must never reach a
// shared environment.
func validateProductionConfig(cfg *config.Config) error {
	isProd := cfg.Env == "prod" || cfg.Env == "production" || cfg.Env == "staging"

	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			return fmt.Errorf("BLOB_MODE=s3 but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		return fmt.Errorf("JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=1", cfg.Env)
	}

	if isProd && cfg.DatabaseURL == "" {
		return fmt.Errorf("no DATABASE_URL configured in %s", cfg.Env)
	}
	return nil
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "":
		return "not set"
	case insecureDefault:
		return fmt.Sprintf("set (insecure default '%s')", insecureDefault)
	default:
		return "set (custom)"
	}
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
