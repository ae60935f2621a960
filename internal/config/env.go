package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first when present; a missing file is not
// an error.
func parseEnv(c *Config) {
	_ = godotenv.Load()

	setString := func(dst *string, name string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	setString(&c.ListenAddr, "TUBECAST_LISTEN_ADDR")
	setString(&c.ScratchDir, "TUBECAST_SCRATCH_DIR")
	setString(&c.S3Bucket, "TUBECAST_S3_BUCKET")
	setString(&c.S3Region, "TUBECAST_S3_REGION")
	setString(&c.S3BaseEndpoint, "TUBECAST_S3_ENDPOINT")
	setString(&c.S3AccessKey, "TUBECAST_S3_ACCESS_KEY")
	setString(&c.S3SecretKey, "TUBECAST_S3_SECRET_KEY")
	setString(&c.MediaBaseURL, "TUBECAST_MEDIA_BASE_URL")
	setString(&c.CredentialsSecretID, "TUBECAST_CREDENTIALS_SECRET_ID")
	setString(&c.SigningKeySecretID, "TUBECAST_SIGNING_KEY_SECRET_ID")
	setString(&c.UploadEndpoint, "TUBECAST_UPLOAD_ENDPOINT")
	setString(&c.WatchURLPrefix, "TUBECAST_WATCH_URL_PREFIX")
	setString(&c.FFmpegPath, "TUBECAST_FFMPEG")
	setString(&c.FFprobePath, "TUBECAST_FFPROBE")
}
