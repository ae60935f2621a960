// Package pipeline sequences the publish stages for one invocation and owns
// the partial-failure policy and scratch cleanup.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkarpovs/tubecast/internal/blobstore"
	"github.com/mkarpovs/tubecast/internal/common"
	"github.com/mkarpovs/tubecast/internal/credential"
	"github.com/mkarpovs/tubecast/internal/logging"
	"github.com/mkarpovs/tubecast/internal/media"
	"github.com/mkarpovs/tubecast/internal/upload"
	"github.com/mkarpovs/tubecast/internal/webhook"
)

// Request is the invocation input.
type Request struct {
	SourceKey     string
	Title         string
	Description   string
	PrivacyStatus string
	WebhookURL    string
}

// Result is the invocation outcome for a successful run. Nil pointer fields
// become JSON nulls in the response.
type Result struct {
	SourceKey     string
	FileSize      int64
	VideoID       string
	VideoURL      string
	ThumbnailURL  *string
	DurationMS    *int64
	WebhookStatus *int
}

// Stage capabilities. The orchestrator depends on interfaces so tests can
// substitute fakes per stage.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (*media.Asset, error)
}

type ThumbnailExtractor interface {
	Extract(ctx context.Context, path string, durationMS int64, known bool) (string, bool)
}

type CredentialResolver interface {
	Resolve(ctx context.Context) (*credential.Credential, error)
}

type Uploader interface {
	Upload(ctx context.Context, cred *credential.Credential, path string, meta upload.Metadata) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, url string, payload webhook.Payload) (status int, delivered bool)
}

var validPrivacyStatuses = map[string]bool{
	"":         true, // defaults to unlisted downstream
	"public":   true,
	"private":  true,
	"unlisted": true,
}

// Options wires the pipeline stages together.
type Options struct {
	Fetcher         Fetcher
	Prober          media.Prober
	Extractor       ThumbnailExtractor
	Credentials     CredentialResolver
	Uploader        Uploader
	Notifier        Notifier
	Store           blobstore.ObjectStore
	WatchURLPrefix  string
	ThumbnailSuffix string
	MediaBaseURL    string
	Logger          logging.Logger
}

type Pipeline struct {
	fetcher         Fetcher
	prober          media.Prober
	extractor       ThumbnailExtractor
	credentials     CredentialResolver
	uploader        Uploader
	notifier        Notifier
	store           blobstore.ObjectStore
	watchURLPrefix  string
	thumbnailSuffix string
	mediaBaseURL    string
	logger          logging.Logger
}

func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Noop{}
	}
	return &Pipeline{
		fetcher:         opts.Fetcher,
		prober:          opts.Prober,
		extractor:       opts.Extractor,
		credentials:     opts.Credentials,
		uploader:        opts.Uploader,
		notifier:        opts.Notifier,
		store:           opts.Store,
		watchURLPrefix:  opts.WatchURLPrefix,
		thumbnailSuffix: opts.ThumbnailSuffix,
		mediaBaseURL:    opts.MediaBaseURL,
		logger:          logger,
	}
}

// Run executes the stage sequence fetch → probe → thumbnail → authenticate →
// upload → notify → cleanup. Probe, thumbnail and notification failures
// degrade gracefully; fetch, authentication and upload failures are
// terminal. Scratch files are removed on every exit path.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.SourceKey) == "" {
		return nil, fmt.Errorf("source_key is required: %w", common.ErrValidation)
	}
	if !validPrivacyStatuses[req.PrivacyStatus] {
		return nil, fmt.Errorf("unknown privacy_status %q: %w", req.PrivacyStatus, common.ErrValidation)
	}

	log := p.logger.With("source_key", req.SourceKey)

	var scratchFiles []string
	defer func() {
		for _, f := range scratchFiles {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				// cleanup failures must not mask the primary result
				log.Warn(ctx, "scratch cleanup failed", "path", f, "error", err)
			}
		}
	}()

	asset, err := p.fetcher.Fetch(ctx, req.SourceKey)
	if err != nil {
		return nil, err
	}
	scratchFiles = append(scratchFiles, asset.LocalPath)

	durationMS, durationKnown := p.prober.ProbeDuration(ctx, asset.LocalPath)

	thumbPath, haveThumb := p.extractor.Extract(ctx, asset.LocalPath, durationMS, durationKnown)
	if haveThumb {
		scratchFiles = append(scratchFiles, thumbPath)
	}

	cred, err := p.credentials.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = filepath.Base(req.SourceKey)
	}

	videoID, err := p.uploader.Upload(ctx, cred, asset.LocalPath, upload.Metadata{
		Title:         title,
		Description:   req.Description,
		PrivacyStatus: req.PrivacyStatus,
		ContentType:   asset.ContentType,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		SourceKey: req.SourceKey,
		FileSize:  asset.Size,
		VideoID:   videoID,
		VideoURL:  p.watchURLPrefix + videoID,
	}
	if durationKnown {
		d := durationMS
		result.DurationMS = &d
	}

	if haveThumb {
		if url, ok := p.publishThumbnail(ctx, log, req.SourceKey, thumbPath); ok {
			result.ThumbnailURL = &url
		}
	}

	payload := webhook.Payload{
		VideoID:      videoID,
		ThumbnailURL: result.ThumbnailURL,
		Duration:     result.DurationMS,
	}
	if status, delivered := p.notifier.Notify(ctx, req.WebhookURL, payload); delivered {
		s := status
		result.WebhookStatus = &s
	}

	log.Info(ctx, "publish pipeline completed", "video_id", videoID)
	return result, nil
}

// publishThumbnail copies the extracted frame into blob storage next to the
// source object. Failure here is soft: the video is already published.
func (p *Pipeline) publishThumbnail(ctx context.Context, log logging.Logger, sourceKey, thumbPath string) (string, bool) {
	f, err := os.Open(thumbPath)
	if err != nil {
		log.Warn(ctx, "thumbnail artifact unreadable", "path", thumbPath, "error", err)
		return "", false
	}
	defer f.Close()

	key := sourceKey + p.thumbnailSuffix
	if err := p.store.Upload(ctx, key, "image/jpeg", f); err != nil {
		log.Warn(ctx, "thumbnail upload failed", "key", key, "error", err)
		return "", false
	}

	return strings.TrimSuffix(p.mediaBaseURL, "/") + "/" + key, true
}
