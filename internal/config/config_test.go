package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, int64(8*1024*1024), cfg.UploadChunkSize)
	assert.Equal(t, []int{500, 502, 503, 504}, cfg.RetriableStatuses)
	assert.Equal(t, "https://www.youtube.com/watch?v=", cfg.WatchURLPrefix)
	assert.NotEmpty(t, cfg.ThumbnailSuffix)
}

func Test_parseJson_OverlaysNonEmptyFields(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"listen_addr":           ":9999",
		"scratch_dir":           "/tmp/other",
		"s3_bucket":             "ingest",
		"s3_region":             "eu-west-1",
		"credentials_secret_id": "secrets/yt",
		"upload_chunk_size":     1024,
		"upload_max_retries":    5,
		"retriable_statuses":    []int{503},
		"upload_tags":           []string{"a", "b"},
	})

	os.Args = []string{"testbin", "-config", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "/tmp/other", cfg.ScratchDir)
	assert.Equal(t, "ingest", cfg.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.S3Region)
	assert.Equal(t, "secrets/yt", cfg.CredentialsSecretID)
	assert.Equal(t, int64(1024), cfg.UploadChunkSize)
	assert.Equal(t, 5, cfg.UploadMaxRetries)
	assert.Equal(t, []int{503}, cfg.RetriableStatuses)
	assert.Equal(t, []string{"a", "b"}, cfg.UploadTags)

	// untouched fields keep their defaults
	assert.Equal(t, "https://www.googleapis.com/upload/youtube/v3/videos", cfg.UploadEndpoint)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
}

func Test_parseJson_NoFileFlagIsNoop(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func Test_parseEnv_Overlay(t *testing.T) {
	t.Setenv("TUBECAST_S3_BUCKET", "env-bucket")
	t.Setenv("TUBECAST_SIGNING_KEY_SECRET_ID", "secrets/webhook")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "env-bucket", cfg.S3Bucket)
	assert.Equal(t, "secrets/webhook", cfg.SigningKeySecretID)
	assert.Equal(t, ":8080", cfg.ListenAddr, "unset vars keep defaults")
}

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", ":7070", "-b", "flag-bucket", "-k", "secrets/creds"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "flag-bucket", cfg.S3Bucket)
	assert.Equal(t, "secrets/creds", cfg.CredentialsSecretID)
	assert.Equal(t, "us-east-1", cfg.S3Region)
}
