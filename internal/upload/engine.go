// Package upload drives the resumable, chunked upload protocol against the
// video platform's ingestion endpoint.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mkarpovs/tubecast/internal/common"
	"github.com/mkarpovs/tubecast/internal/credential"
	"github.com/mkarpovs/tubecast/internal/logging"
)

// Metadata describes the video object created by the upload.
type Metadata struct {
	Title         string
	Description   string
	PrivacyStatus string
	ContentType   string
}

// DefaultPrivacyStatus is used when the caller supplies no visibility level.
// Least-visible wins.
const DefaultPrivacyStatus = "unlisted"

// maxStalls bounds consecutive chunk rounds in which the server acknowledges
// no new bytes. Without it a misbehaving endpoint could hold the session
// open forever.
const maxStalls = 3

// Options configures an Engine.
type Options struct {
	Endpoint          string
	ChunkSize         int64
	MaxRetries        int
	RetriableStatuses []int
	CategoryID        string
	Tags              []string
	HTTPClient        *http.Client
	Logger            logging.Logger
}

// Engine opens a resumable session and pushes the asset chunk by chunk until
// the platform reports completion.
type Engine struct {
	endpoint   string
	chunkSize  int64
	maxRetries int
	retriable  map[int]bool
	categoryID string
	tags       []string
	httpClient *http.Client
	logger     logging.Logger
	backoff    func() retry.Backoff
}

func NewEngine(opts Options) *Engine {
	retriable := make(map[int]bool, len(opts.RetriableStatuses))
	for _, s := range opts.RetriableStatuses {
		retriable[s] = true
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Noop{}
	}
	return &Engine{
		endpoint:   opts.Endpoint,
		chunkSize:  opts.ChunkSize,
		maxRetries: opts.MaxRetries,
		retriable:  retriable,
		categoryID: opts.CategoryID,
		tags:       opts.Tags,
		httpClient: httpClient,
		logger:     logger,
		backoff: func() retry.Backoff {
			return retry.NewExponential(500 * time.Millisecond)
		},
	}
}

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId"`
}

type videoStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type videoResource struct {
	ID      string       `json:"id"`
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

// Upload pushes the file at path into a fresh resumable session and returns
// the platform-assigned video identifier. There is no cross-invocation
// resumption: every call starts from byte 0.
func (e *Engine) Upload(ctx context.Context, cred *credential.Credential, path string, meta Metadata) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %v: %w", path, err, common.ErrUpload)
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %v: %w", path, err, common.ErrUpload)
	}
	size := fi.Size()
	if size == 0 {
		return "", fmt.Errorf("empty media file %s: %w", path, common.ErrUpload)
	}

	sessionURI, err := e.initiate(ctx, cred, size, meta)
	if err != nil {
		return "", err
	}

	return e.sendChunks(ctx, file, size, sessionURI)
}

// initiate opens the resumable session and returns the session URI assigned
// by the platform.
func (e *Engine) initiate(ctx context.Context, cred *credential.Credential, size int64, meta Metadata) (string, error) {
	privacy := meta.PrivacyStatus
	if privacy == "" {
		privacy = DefaultPrivacyStatus
	}
	contentType := meta.ContentType
	if contentType == "" {
		contentType = "video/*"
	}

	body, err := json.Marshal(videoResource{
		Snippet: videoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        e.tags,
			CategoryID:  e.categoryID,
		},
		Status: videoStatus{PrivacyStatus: privacy},
	})
	if err != nil {
		return "", fmt.Errorf("encode upload metadata: %v: %w", err, common.ErrUpload)
	}

	uri := e.endpoint + "?uploadType=resumable&part=snippet,status"

	var sessionURI string
	err = retry.Do(ctx, retry.WithMaxRetries(uint64(e.maxRetries), e.backoff()), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build initiate request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+cred.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(size, 10))
		req.Header.Set("X-Upload-Content-Type", contentType)

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("initiate session: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return e.statusError("initiate session", resp)
		}

		sessionURI = resp.Header.Get("Location")
		if sessionURI == "" {
			return fmt.Errorf("initiate session: no session uri in response")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, common.ErrUpload)
	}

	e.logger.Info(ctx, "resumable session opened", "size", size, "privacy", privacy)
	return sessionURI, nil
}

// sendChunks runs the chunk loop until the platform returns the final object
// description. Each round sends the bytes the server has not yet
// acknowledged, so a partially accepted chunk is not resent from scratch.
func (e *Engine) sendChunks(ctx context.Context, file *os.File, size int64, sessionURI string) (string, error) {
	var (
		offset int64
		stalls int
	)

	buf := make([]byte, e.chunkSize)

	for {
		n, err := file.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read chunk at %d: %v: %w", offset, err, common.ErrUpload)
		}
		if n == 0 {
			return "", fmt.Errorf("session ended before final response: %w", common.ErrUpload)
		}
		chunk := buf[:n]
		last := offset + int64(n)

		videoID, acked, err := e.sendChunk(ctx, sessionURI, chunk, offset, last-1, size)
		if err != nil {
			return "", err
		}
		if videoID != "" {
			e.logger.Info(ctx, "upload completed", "video_id", videoID, "bytes", size)
			return videoID, nil
		}

		if acked <= offset {
			stalls++
			if stalls > maxStalls {
				return "", fmt.Errorf("upload stalled at byte %d: %w", offset, common.ErrUpload)
			}
		} else {
			stalls = 0
			offset = acked
		}

		// progress is observability only, never control flow
		e.logger.Info(ctx, "upload progress", "fraction", float64(offset)/float64(size))
	}
}

// sendChunk delivers one byte range, retrying transient statuses with
// backoff. It returns the final video id when the platform reports
// completion, otherwise the next unacknowledged offset.
func (e *Engine) sendChunk(ctx context.Context, sessionURI string, chunk []byte, first, last, total int64) (string, int64, error) {
	var (
		videoID string
		acked   int64
	)

	err := retry.Do(ctx, retry.WithMaxRetries(uint64(e.maxRetries), e.backoff()), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURI, bytes.NewReader(chunk))
		if err != nil {
			return fmt.Errorf("build chunk request: %w", err)
		}
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", first, last, total))

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("send chunk %d-%d: %w", first, last, err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			var v videoResource
			if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
				return fmt.Errorf("decode final response: %w", err)
			}
			if v.ID == "" {
				// absence of an identifier is always a failure, never a
				// success with a null field
				return fmt.Errorf("final response without video id")
			}
			videoID = v.ID
			return nil

		case resp.StatusCode == 308: // Resume Incomplete
			if end, ok := parseRangeEnd(resp.Header.Get("Range")); ok {
				acked = end + 1
			}
			return nil

		default:
			return e.statusError(fmt.Sprintf("chunk %d-%d", first, last), resp)
		}
	})
	if err != nil {
		return "", 0, fmt.Errorf("%v: %w", err, common.ErrUpload)
	}

	return videoID, acked, nil
}

// statusError turns a non-success response into an error, marking it
// retryable when the status is in the configured transient set. The status
// and body are carried for diagnostics.
func (e *Engine) statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	err := fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	if e.retriable[resp.StatusCode] {
		return retry.RetryableError(err)
	}
	return err
}

// parseRangeEnd extracts N from a "bytes=0-N" Range header.
func parseRangeEnd(h string) (int64, bool) {
	if h == "" {
		return 0, false
	}
	i := strings.LastIndex(h, "-")
	if i < 0 || i == len(h)-1 {
		return 0, false
	}
	end, err := strconv.ParseInt(h[i+1:], 10, 64)
	if err != nil || end < 0 {
		return 0, false
	}
	return end, true
}
