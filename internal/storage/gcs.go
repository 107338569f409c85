package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/fiscalhub/invoice-ingest/internal/common"
)

// GCSStore adapts a Cloud Storage client to the ObjectStore interface. Each
// operation runs under its own deadline so one stuck call cannot hold a
// per-file machine forever.
type GCSStore struct {
	client    *storage.Client
	opTimeout time.Duration
	logger    *slog.Logger
}

func NewGCSStore(client *storage.Client, opTimeout time.Duration, logger *slog.Logger) *GCSStore {
	if logger == nil {
		logger = slog.Default()
	}
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &GCSStore{client: client, opTimeout: opTimeout, logger: logger}
}

func (s *GCSStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return s.wrap("put", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return s.wrap("put", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	src := s.client.Bucket(bucket).Object(srcKey)
	dst := s.client.Bucket(bucket).Object(dstKey)
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return s.wrap("copy", bucket, srcKey+" -> "+dstKey, err)
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, bucket, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return s.wrap("delete", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) wrap(op, bucket, key string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		s.logger.Error("storage.gcs.api_error", "op", op, "bucket", bucket, "key", key, "code", gerr.Code, "error", err)
	} else {
		s.logger.Error("storage.gcs.error", "op", op, "bucket", bucket, "key", key, "error", err)
	}
	return fmt.Errorf("%w: gcs %s %s/%s: %v", common.ErrStore, op, bucket, key, err)
}
