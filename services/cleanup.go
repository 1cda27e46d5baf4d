package services

import (
	"context"

	"github.com/ecoreport/api-go/storage"
	"go.uber.org/zap"
)

// removeFiles deletes stored images after their rows are gone. Failures are
// logged and otherwise ignored; every path is attempted.
func removeFiles(ctx context.Context, store storage.Store, log *zap.Logger, paths []string) {
	for _, path := range paths {
		if err := store.Remove(ctx, path); err != nil {
			log.Warn("failed to remove stored image",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
}
