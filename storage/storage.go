// Package storage keeps uploaded report images on the local filesystem or in
// an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ecoreport/api-go/config"
)

// ErrNotExist is returned by Open when nothing is stored at the path.
var ErrNotExist = errors.New("stored file does not exist")

// Store persists files under unique names. Save returns the path that Open
// and Remove accept later.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// New builds the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal, "":
		if err := os.MkdirAll(cfg.UploadFolder, 0o755); err != nil {
			return nil, fmt.Errorf("create upload folder: %w", err)
		}
		return NewLocalStore(cfg.UploadFolder), nil
	case config.StorageS3:
		return NewS3Store(ctx, cfg.S3), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
