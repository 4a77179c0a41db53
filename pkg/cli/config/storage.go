package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/infra/blobstore"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

type Storage struct {
	bucket      string
	credentials string
	maxAttempts int
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for file contents. In-memory store is used if not set",
			Category:    "Storage",
			Sources:     cli.EnvVars("REPOVAULT_STORAGE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-credentials",
			Usage:       "Path to service account key file. Application default credentials are used if not set",
			Category:    "Storage",
			Sources:     cli.EnvVars("REPOVAULT_STORAGE_CREDENTIALS"),
			Destination: &x.credentials,
		},
		&cli.IntFlag{
			Name:        "storage-max-attempts",
			Usage:       "Max attempts of a storage request including retries",
			Category:    "Storage",
			Sources:     cli.EnvVars("REPOVAULT_STORAGE_MAX_ATTEMPTS"),
			Value:       blobstore.DefaultMaxAttempts,
			Destination: &x.maxAttempts,
		},
	}
}

func (x *Storage) Enabled() bool {
	return x.bucket != ""
}

func (x *Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("bucket", x.bucket),
		slog.Int("maxAttempts", x.maxAttempts),
		slog.Bool("credentials", x.credentials != ""),
	)
}

// NewBlobStore returns the Cloud Storage backed store, or an in-memory one when no bucket is set.
func (x *Storage) NewBlobStore(ctx context.Context) (interfaces.BlobStore, error) {
	if !x.Enabled() {
		logging.From(ctx).Warn("storage bucket is not configured, file contents are kept in memory only")
		return blobstore.NewMemory(), nil
	}

	var opts []option.ClientOption
	if x.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(x.credentials))
	}
	return blobstore.NewGCS(ctx, x.bucket, x.maxAttempts, opts...)
}
