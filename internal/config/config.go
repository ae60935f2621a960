// Package config handles configuration for the publish pipeline service,
// including defaults, .env/environment overlay, JSON overlay, and
// command-line flags.
package config

// Config holds runtime settings for the tubecast service.
//
// Fields:
//   - ListenAddr: bind address for the HTTP endpoint.
//   - ScratchDir: invocation-scoped temporary storage for fetched media.
//   - S3Bucket / S3Region / S3BaseEndpoint: source object storage settings.
//   - S3AccessKey / S3SecretKey: credentials for the S3-compatible backend.
//   - MediaBaseURL: public URL prefix for artifacts written back to storage.
//   - CredentialsSecretID: secret-store id of the OAuth credential blob.
//   - SigningKeySecretID: secret-store id of the webhook signing key.
//     Empty disables webhook signing entirely.
//   - UploadEndpoint: resumable ingestion endpoint of the video platform.
//   - WatchURLPrefix: URL template prefix for published videos.
//   - UploadChunkSize: resumable upload chunk size in bytes.
//   - UploadMaxRetries: transient-status retries per chunk.
//   - RetriableStatuses: HTTP statuses treated as transient by the uploader.
//   - UploadCategoryID / UploadTags: fixed snippet metadata for every upload.
//   - ThumbnailSuffix: appended to the source key for the thumbnail object.
//   - FFmpegPath / FFprobePath: media tooling binaries.
type Config struct {
	ListenAddr          string
	ScratchDir          string
	S3Bucket            string
	S3Region            string
	S3BaseEndpoint      string
	S3AccessKey         string
	S3SecretKey         string
	MediaBaseURL        string
	CredentialsSecretID string
	SigningKeySecretID  string
	UploadEndpoint      string
	WatchURLPrefix      string
	UploadChunkSize     int64
	UploadMaxRetries    int
	RetriableStatuses   []int
	UploadCategoryID    string
	UploadTags          []string
	ThumbnailSuffix     string
	FFmpegPath          string
	FFprobePath         string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.ScratchDir = "/tmp/tubecast"
	c.S3Bucket = "media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3AccessKey = ""
	c.S3SecretKey = ""
	c.MediaBaseURL = ""
	c.CredentialsSecretID = "tubecast/youtube-credentials"
	c.SigningKeySecretID = ""
	c.UploadEndpoint = "https://www.googleapis.com/upload/youtube/v3/videos"
	c.WatchURLPrefix = "https://www.youtube.com/watch?v="
	c.UploadChunkSize = 8 * 1024 * 1024
	c.UploadMaxRetries = 3
	c.RetriableStatuses = []int{500, 502, 503, 504}
	c.UploadCategoryID = "22"
	c.UploadTags = []string{"tubecast", "auto-upload"}
	c.ThumbnailSuffix = "_thumbnail.jpg"
	c.FFmpegPath = "ffmpeg"
	c.FFprobePath = "ffprobe"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (including an optional .env file), an optional JSON
// file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
