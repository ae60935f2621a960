package config

import (
	"flag"
	"os"

	"github.com/mkarpovs/tubecast/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-t string   scratch directory for fetched media
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-u string   S3 access key
//	-p string   S3 secret key
//	-k string   secret-store id of the OAuth credential blob
//	-w string   secret-store id of the webhook signing key
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-b", "-g", "-e", "-u", "-p", "-k", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.ScratchDir, "t", config.ScratchDir, "scratch directory")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.CredentialsSecretID, "k", config.CredentialsSecretID, "credentials secret id")
	fs.StringVar(&config.SigningKeySecretID, "w", config.SigningKeySecretID, "signing key secret id")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
