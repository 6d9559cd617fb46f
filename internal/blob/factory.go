package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	appcfg "github.com/fdg312/meal-hub/internal/config"
)

// NewBlobStore builds a blob store using mode local|s3|auto. It returns the
// store and the mode actually in effect. Local mode is an in-memory store.
func NewBlobStore(ctx context.Context, cfg appcfg.BlobConfig) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		log.Info().Str("mode", mode).Msg("blob: using in-memory store (forced)")
		return NewMemoryStore(), appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			if cfg.S3.IsEmpty() {
				log.Info().Msg("blob: S3 not configured, using in-memory store")
			} else {
				log.Warn().Strs("missing", cfg.S3.MissingRequired()).Str("s3", cfg.S3.Summary()).
					Msg("blob: S3 partially configured, using in-memory store")
			}
			return NewMemoryStore(), appcfg.BlobModeLocal, nil
		}
		store, err := newS3(ctx, cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("blob: S3 init failed, falling back to in-memory store")
			return NewMemoryStore(), appcfg.BlobModeLocal, nil
		}
		log.Info().Str("s3", cfg.S3.Summary()).Msg("blob: using S3 (auto)")
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}
		store, err := newS3(ctx, cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}
		log.Info().Str("s3", cfg.S3.Summary()).Msg("blob: using S3 (forced)")
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func newS3(ctx context.Context, c appcfg.S3Config) (*S3Store, error) {
	return NewS3Store(ctx, c.Endpoint, c.Region, c.Bucket, c.AccessKeyID, c.SecretAccessKey)
}
