package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkarpovs/tubecast/internal/blobstore"
	"github.com/mkarpovs/tubecast/internal/config"
	"github.com/mkarpovs/tubecast/internal/credential"
	"github.com/mkarpovs/tubecast/internal/httpapi"
	"github.com/mkarpovs/tubecast/internal/logging"
	"github.com/mkarpovs/tubecast/internal/media"
	"github.com/mkarpovs/tubecast/internal/pipeline"
	"github.com/mkarpovs/tubecast/internal/secrets"
	"github.com/mkarpovs/tubecast/internal/upload"
	"github.com/mkarpovs/tubecast/internal/webhook"
)

func main() {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	store := blobstore.NewS3Store(blobstore.Options{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3BaseEndpoint,
	})

	secretStore := secrets.NewManagerStore(secrets.Options{
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})

	prober := media.NewFFProber(cfg.FFprobePath, cfg.FFmpegPath, media.ExecRunner{}, logger)

	p := pipeline.New(pipeline.Options{
		Fetcher:     media.NewFetcher(store, cfg.ScratchDir, logger),
		Prober:      prober,
		Extractor:   media.NewExtractor(prober, cfg.ScratchDir, logger),
		Credentials: credential.NewManager(secretStore, cfg.CredentialsSecretID, logger),
		Uploader: upload.NewEngine(upload.Options{
			Endpoint:          cfg.UploadEndpoint,
			ChunkSize:         cfg.UploadChunkSize,
			MaxRetries:        cfg.UploadMaxRetries,
			RetriableStatuses: cfg.RetriableStatuses,
			CategoryID:        cfg.UploadCategoryID,
			Tags:              cfg.UploadTags,
			Logger:            logger,
		}),
		Notifier:        webhook.NewNotifier(secretStore, cfg.SigningKeySecretID, logger),
		Store:           store,
		WatchURLPrefix:  cfg.WatchURLPrefix,
		ThumbnailSuffix: cfg.ThumbnailSuffix,
		MediaBaseURL:    cfg.MediaBaseURL,
		Logger:          logger,
	})

	srv := httpapi.NewServer(cfg.ListenAddr, p, logger)
	if err := srv.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
