package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpovs/tubecast/internal/common"
	"github.com/mkarpovs/tubecast/internal/logging"
	"github.com/mkarpovs/tubecast/internal/pipeline"
)

type fakeRunner struct {
	res   *pipeline.Result
	err   error
	calls int
	got   pipeline.Request
}

func (f *fakeRunner) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func ptr[T any](v T) *T { return &v }

func doPublish(t *testing.T, runner Runner, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(":0", runner, logging.Noop{})
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestPublish_Success(t *testing.T) {
	runner := &fakeRunner{res: &pipeline.Result{
		SourceKey:     "videos/a.mp4",
		FileSize:      2048,
		VideoID:       "abc123",
		VideoURL:      "https://www.youtube.com/watch?v=abc123",
		DurationMS:    ptr(int64(120000)),
		WebhookStatus: ptr(200),
	}}

	rec := doPublish(t, runner, `{"source_key":"videos/a.mp4","title":"T","privacy_status":"public","webhook_url":"https://h/x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, pipeline.Request{
		SourceKey:     "videos/a.mp4",
		Title:         "T",
		PrivacyStatus: "public",
		WebhookURL:    "https://h/x",
	}, runner.got)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "videos/a.mp4", body["source_key"])
	assert.Equal(t, float64(2048), body["file_size"])
	assert.Equal(t, "abc123", body["video_id"])
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", body["video_url"])
	assert.Equal(t, float64(120000), body["duration"])
	assert.Equal(t, float64(200), body["webhook_response"])
	assert.Nil(t, body["thumbnail_url"], "absent artifact is an explicit null")

	// the identifier appears exactly once in the watch url
	assert.Equal(t, 1, strings.Count(body["video_url"].(string), "abc123"))
}

func TestPublish_ValidationErrorIs400(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("source_key is required: %w", common.ErrValidation)}

	rec := doPublish(t, runner, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "source_key is required")
}

func TestPublish_StageFailuresAre500(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", fmt.Errorf("invalid credentials: %w", common.ErrAuth)},
		{"fetch", fmt.Errorf("gone: %w", common.ErrNotFound)},
		{"transfer", fmt.Errorf("reset: %w", common.ErrTransfer)},
		{"upload", fmt.Errorf("status 403: %w", common.ErrUpload)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doPublish(t, &fakeRunner{err: tc.err}, `{"source_key":"a.mp4"}`)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPublish_MalformedBodyIs400WithoutInvocation(t *testing.T) {
	runner := &fakeRunner{}
	rec := doPublish(t, runner, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, runner.calls)
}

func TestHealthz(t *testing.T) {
	srv := NewServer(":0", &fakeRunner{}, logging.Noop{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
