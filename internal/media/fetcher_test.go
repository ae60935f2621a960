package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpovs/tubecast/internal/blobstore"
	"github.com/mkarpovs/tubecast/internal/common"
	"github.com/mkarpovs/tubecast/internal/logging"
)

// -------- test fakes --------

type fakeObjectStore struct {
	headInfo *blobstore.ObjectInfo
	headErr  error

	body        string
	downloadErr error

	uploads map[string][]byte
}

func (f *fakeObjectStore) Head(ctx context.Context, key string) (*blobstore.ObjectInfo, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if f.headInfo != nil {
		return f.headInfo, nil
	}
	return &blobstore.ObjectInfo{Key: key, Size: int64(len(f.body))}, nil
}

func (f *fakeObjectStore) Download(ctx context.Context, key string, dst io.Writer) (int64, error) {
	if f.downloadErr != nil {
		return 0, f.downloadErr
	}
	n, err := io.WriteString(dst, f.body)
	return int64(n), err
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.uploads[key] = b
	return nil
}

// -------- tests --------

func TestFetch_DownloadsToScratchBasename(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "scratch")
	store := &fakeObjectStore{body: "media-bytes"}

	f := NewFetcher(store, scratch, logging.Noop{})
	asset, err := f.Fetch(context.Background(), "videos/a.mp4")
	require.NoError(t, err)

	assert.Equal(t, "videos/a.mp4", asset.SourceKey)
	assert.Equal(t, filepath.Join(scratch, "a.mp4"), asset.LocalPath)
	assert.Equal(t, int64(len("media-bytes")), asset.Size)
	assert.NotEmpty(t, asset.ContentType)

	data, err := os.ReadFile(asset.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "media-bytes", string(data))
}

func TestFetch_ReusesExistingScratchDir(t *testing.T) {
	scratch := t.TempDir()
	marker := filepath.Join(scratch, "other-invocation.mp4")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o660))

	f := NewFetcher(&fakeObjectStore{body: "y"}, scratch, logging.Noop{})
	_, err := f.Fetch(context.Background(), "videos/b.mp4")
	require.NoError(t, err)

	_, err = os.Stat(marker)
	require.NoError(t, err, "pre-existing scratch contents must survive")
}

func TestFetch_MissingObject(t *testing.T) {
	store := &fakeObjectStore{headErr: common.ErrNotFound}
	f := NewFetcher(store, t.TempDir(), logging.Noop{})

	_, err := f.Fetch(context.Background(), "videos/missing.mp4")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NotErrorIs(t, err, common.ErrTransfer)
}

func TestFetch_DownloadFailureIsTransferError(t *testing.T) {
	scratch := t.TempDir()
	store := &fakeObjectStore{downloadErr: errors.New("connection reset")}
	f := NewFetcher(store, scratch, logging.Noop{})

	_, err := f.Fetch(context.Background(), "videos/a.mp4")
	require.ErrorIs(t, err, common.ErrTransfer)

	// partial scratch file cleaned up
	_, statErr := os.Stat(filepath.Join(scratch, "a.mp4"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetch_HeadFailureIsTransferError(t *testing.T) {
	store := &fakeObjectStore{headErr: errors.New("timeout")}
	f := NewFetcher(store, t.TempDir(), logging.Noop{})

	_, err := f.Fetch(context.Background(), "videos/a.mp4")
	require.ErrorIs(t, err, common.ErrTransfer)
}
