package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mkarpovs/tubecast/internal/blobstore"
	"github.com/mkarpovs/tubecast/internal/common"
	"github.com/mkarpovs/tubecast/internal/filex"
	"github.com/mkarpovs/tubecast/internal/logging"
)

// Fetcher downloads source objects into scratch storage.
type Fetcher struct {
	store      blobstore.ObjectStore
	scratchDir string
	logger     logging.Logger
}

func NewFetcher(store blobstore.ObjectStore, scratchDir string, logger logging.Logger) *Fetcher {
	return &Fetcher{store: store, scratchDir: scratchDir, logger: logger}
}

// Fetch performs a metadata-only lookup first (declared size is reported in
// the invocation response), then transfers the object body into
// <scratch>/<basename(key)>. A pre-existing scratch directory is reused.
// A missing key yields common.ErrNotFound; any other failure maps to
// common.ErrTransfer.
func (f *Fetcher) Fetch(ctx context.Context, key string) (*Asset, error) {
	info, err := f.store.Head(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, common.ErrTransfer)
	}

	dir, err := filex.EnsureDir(f.scratchDir)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrTransfer)
	}

	localPath := filepath.Join(dir, filepath.Base(key))
	dst, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %v: %w", localPath, err, common.ErrTransfer)
	}

	n, err := f.store.Download(ctx, key, dst)
	closeErr := dst.Close()
	if err != nil {
		_ = filex.RemoveIfExists(localPath)
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, common.ErrTransfer)
	}
	if closeErr != nil {
		_ = filex.RemoveIfExists(localPath)
		return nil, fmt.Errorf("flush %s: %v: %w", localPath, closeErr, common.ErrTransfer)
	}

	asset := &Asset{
		SourceKey:   key,
		LocalPath:   localPath,
		Size:        n,
		ContentType: info.ContentType,
	}

	// Advisory only: a sniffed type beats the declared one, but detection
	// failure is never a fetch failure.
	if mt, err := mimetype.DetectFile(localPath); err == nil {
		asset.ContentType = mt.String()
	}

	f.logger.Info(ctx, "source object fetched",
		"key", key, "path", localPath, "declared_size", info.Size, "bytes", n, "content_type", asset.ContentType)

	return asset, nil
}
