package config

import (
	"encoding/json"
	"os"

	"github.com/mkarpovs/tubecast/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its non-empty fields are copied
// into the runtime Config.
type JsonConfig struct {
	ListenAddr          string   `json:"listen_addr"`
	ScratchDir          string   `json:"scratch_dir"`
	S3Bucket            string   `json:"s3_bucket"`
	S3Region            string   `json:"s3_region"`
	S3BaseEndpoint      string   `json:"s3_base_endpoint"`
	S3AccessKey         string   `json:"s3_access_key"`
	S3SecretKey         string   `json:"s3_secret_key"`
	MediaBaseURL        string   `json:"media_base_url"`
	CredentialsSecretID string   `json:"credentials_secret_id"`
	SigningKeySecretID  string   `json:"signing_key_secret_id"`
	UploadEndpoint      string   `json:"upload_endpoint"`
	WatchURLPrefix      string   `json:"watch_url_prefix"`
	UploadChunkSize     int64    `json:"upload_chunk_size"`
	UploadMaxRetries    int      `json:"upload_max_retries"`
	RetriableStatuses   []int    `json:"retriable_statuses"`
	UploadCategoryID    string   `json:"upload_category_id"`
	UploadTags          []string `json:"upload_tags"`
	ThumbnailSuffix     string   `json:"thumbnail_suffix"`
	FFmpegPath          string   `json:"ffmpeg_path"`
	FFprobePath         string   `json:"ffprobe_path"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlayString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	overlayString(&config.ListenAddr, c.ListenAddr)
	overlayString(&config.ScratchDir, c.ScratchDir)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlayString(&config.S3AccessKey, c.S3AccessKey)
	overlayString(&config.S3SecretKey, c.S3SecretKey)
	overlayString(&config.MediaBaseURL, c.MediaBaseURL)
	overlayString(&config.CredentialsSecretID, c.CredentialsSecretID)
	overlayString(&config.SigningKeySecretID, c.SigningKeySecretID)
	overlayString(&config.UploadEndpoint, c.UploadEndpoint)
	overlayString(&config.WatchURLPrefix, c.WatchURLPrefix)
	overlayString(&config.UploadCategoryID, c.UploadCategoryID)
	overlayString(&config.ThumbnailSuffix, c.ThumbnailSuffix)
	overlayString(&config.FFmpegPath, c.FFmpegPath)
	overlayString(&config.FFprobePath, c.FFprobePath)

	if c.UploadChunkSize > 0 {
		config.UploadChunkSize = c.UploadChunkSize
	}
	if c.UploadMaxRetries > 0 {
		config.UploadMaxRetries = c.UploadMaxRetries
	}
	if len(c.RetriableStatuses) > 0 {
		config.RetriableStatuses = c.RetriableStatuses
	}
	if len(c.UploadTags) > 0 {
		config.UploadTags = c.UploadTags
	}
}
