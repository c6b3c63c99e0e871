package provision

import (
	"context"
	"fmt"

	"blastkit/internal/config"
)

// NewSourceFromConfig creates a Source based on the provision config type.
func NewSourceFromConfig(ctx context.Context, cfg config.ProvisionConfig) (Source, error) {
	switch cfg.Type {
	case "", "https":
		return NewHTTPSource(cfg.BaseURL, nil)
	case "s3":
		return NewS3Source(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case "filesystem":
		if cfg.MirrorRoot == "" {
			return nil, fmt.Errorf("filesystem source requires mirror_root to be set")
		}
		return NewFileSystemSource(cfg.MirrorRoot)
	default:
		return nil, fmt.Errorf("unknown provision type: %s", cfg.Type)
	}
}
