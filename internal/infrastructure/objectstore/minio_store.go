// Package objectstore adapts S3-compatible object storage to the
// ports.ObjectStore boundary. Each call is retried up to five times on
// transient failure; not-found and unchanged outcomes are terminal.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"autoqa/internal/bootstrap/config"
	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

const maxAttempts = 5

type MinioStore struct {
	client *minio.Client
	bucket string
	region string
}

var _ ports.ObjectStore = (*MinioStore)(nil)

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(err, "create storage client")
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	done := s.scope(ctx, "put_object", key)

	var etag string
	err := s.withRetry(ctx, func() error {
		info, putErr := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		if putErr != nil {
			return putErr
		}
		etag = info.ETag
		return nil
	})
	done(err)
	if err != nil {
		return "", errs.Wrapf(err, "put object %s", key)
	}
	return etag, nil
}

func (s *MinioStore) Get(ctx context.Context, key string, priorETag string) (ports.ObjectContent, error) {
	done := s.scope(ctx, "get_object", key)

	var out ports.ObjectContent
	err := s.withRetry(ctx, func() error {
		opts := minio.GetObjectOptions{}
		if priorETag != "" {
			if optErr := opts.SetMatchETagExcept(priorETag); optErr != nil {
				return retry.Unrecoverable(optErr)
			}
		}

		obj, getErr := s.client.GetObject(ctx, s.bucket, key, opts)
		if getErr != nil {
			return classify(getErr)
		}
		defer obj.Close()

		content, readErr := io.ReadAll(obj)
		if readErr != nil {
			return classify(readErr)
		}

		info, statErr := obj.Stat()
		if statErr != nil {
			return classify(statErr)
		}

		out = ports.ObjectContent{Content: content, ETag: info.ETag}
		return nil
	})
	done(err)
	if err != nil {
		if errors.Is(err, ports.ErrObjectUnchanged) || errors.Is(err, ports.ErrObjectNotFound) {
			return ports.ObjectContent{}, err
		}
		return ports.ObjectContent{}, errs.Wrapf(err, "get object %s", key)
	}
	return out, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	done := s.scope(ctx, "delete_object", key)

	err := s.withRetry(ctx, func() error {
		return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	})
	done(err)
	if err != nil {
		return errs.Wrapf(err, "delete object %s", key)
	}
	return nil
}

func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	done := s.scope(ctx, "stat_object", key)

	exists := false
	err := s.withRetry(ctx, func() error {
		_, statErr := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		if statErr != nil {
			return classify(statErr)
		}
		exists = true
		return nil
	})
	done(err)
	if errors.Is(err, ports.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errs.Wrapf(err, "stat object %s", key)
	}
	return exists, nil
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	done := s.scope(ctx, "ensure_bucket", s.bucket)

	err := s.withRetry(ctx, func() error {
		found, bucketErr := s.client.BucketExists(ctx, s.bucket)
		if bucketErr != nil {
			return bucketErr
		}
		if found {
			return nil
		}
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	done(err)
	if err != nil {
		return errs.Wrapf(err, "ensure bucket %s", s.bucket)
	}
	return nil
}

func (s *MinioStore) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(maxAttempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

// classify maps storage responses to port sentinels. Sentinels are wrapped as
// unrecoverable so the retry loop stops immediately.
func classify(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch {
	case resp.StatusCode == http.StatusNotModified:
		return retry.Unrecoverable(ports.ErrObjectUnchanged)
	case resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
		return retry.Unrecoverable(ports.ErrObjectNotFound)
	default:
		return err
	}
}

// scope logs entry and, through the returned func, exit with duration and
// outcome on every path.
func (s *MinioStore) scope(ctx context.Context, op string, key string) func(err error) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "objectstore"),
		slog.String("op", op),
		slog.String("key", key),
	)
	logging.Debug(logCtx, "storage call started")

	start := time.Now()
	return func(err error) {
		elapsed := time.Since(start)
		if err != nil && !errors.Is(err, ports.ErrObjectUnchanged) && !errors.Is(err, ports.ErrObjectNotFound) {
			logging.Error(logCtx, "storage call failed",
				slog.Duration("elapsed", elapsed),
				slog.Any("err", errs.Loggable(err)),
			)
			return
		}
		logging.Debug(logCtx, "storage call finished", slog.Duration("elapsed", elapsed))
	}
}
