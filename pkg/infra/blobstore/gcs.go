package blobstore

import (
	"context"
	"errors"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/googleapis/gax-go/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/safe"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const DefaultMaxAttempts = 5

// GCS stores blobs as objects of a Cloud Storage bucket. Every call is retried
// with exponential backoff, including uploads and deletes.
type GCS struct {
	client *storage.Client
	bucket string
	retry  []storage.RetryOption
}

var _ interfaces.BlobStore = (*GCS)(nil)

func NewGCS(ctx context.Context, bucket string, maxAttempts int, options ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "bucket name is required")
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	client, err := storage.NewClient(ctx, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client", goerr.V("bucket", bucket))
	}

	return &GCS{
		client: client,
		bucket: bucket,
		retry: []storage.RetryOption{
			storage.WithBackoff(gax.Backoff{
				Initial:    200 * time.Millisecond,
				Max:        5 * time.Second,
				Multiplier: 2,
			}),
			storage.WithMaxAttempts(maxAttempts),
			storage.WithPolicy(storage.RetryAlways),
		},
	}, nil
}

func (x *GCS) object(key types.BlobKey) *storage.ObjectHandle {
	return x.client.Bucket(x.bucket).Object(key.String()).Retryer(x.retry...)
}

// Put implements interfaces.BlobStore.
func (x *GCS) Put(ctx context.Context, key types.BlobKey, data []byte) error {
	// Cancelling the context aborts an unfinished upload.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := x.object(key).NewWriter(ctx)
	w.ContentType = "application/octet-stream"

	if _, err := w.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", x.bucket), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", x.bucket), goerr.V("key", key))
	}
	return nil
}

// Get implements interfaces.BlobStore.
func (x *GCS) Get(ctx context.Context, key types.BlobKey) ([]byte, error) {
	r, err := x.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(types.ErrNotFound, "object not found", goerr.V("bucket", x.bucket), goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to open object", goerr.V("bucket", x.bucket), goerr.V("key", key))
	}
	defer safe.Close(r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("bucket", x.bucket), goerr.V("key", key))
	}
	return data, nil
}

// Delete implements interfaces.BlobStore.
func (x *GCS) Delete(ctx context.Context, key types.BlobKey) error {
	if err := x.object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return goerr.Wrap(types.ErrNotFound, "object not found", goerr.V("bucket", x.bucket), goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete object", goerr.V("bucket", x.bucket), goerr.V("key", key))
	}
	return nil
}

// List implements interfaces.BlobStore.
func (x *GCS) List(ctx context.Context, prefix string) ([]types.BlobKey, error) {
	it := x.client.Bucket(x.bucket).Retryer(x.retry...).Objects(ctx, &storage.Query{Prefix: prefix})

	var keys []types.BlobKey
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects", goerr.V("bucket", x.bucket), goerr.V("prefix", prefix))
		}
		keys = append(keys, types.BlobKey(attrs.Name))
	}
	return keys, nil
}

func (x *GCS) Close() error {
	if err := x.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Cloud Storage client")
	}
	return nil
}
