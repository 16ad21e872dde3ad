package server

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"tutorial-service/config"
	"tutorial-service/handler"
	"tutorial-service/pkg/rabbitmq"
	"tutorial-service/service"
)

// RunWorker consumes tutorial events and mirrors them into the archive bucket
// until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer closeDB(ctx, cfg)

	if err := ensureBucket(ctx, cfg.Storage, cfg.MinIOBucket); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("bucket", cfg.MinIOBucket).Msg("archive bucket unavailable")
		return
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
		return
	}

	deps := handler.ServiceDependencies{
		ArchiveService: service.NewArchiveService(cfg.Storage, cfg.MinIOBucket),
	}

	archiveConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, handler.ArchiveHandler)
	err = archiveConsumer.Consume(ctx, deps)
	if err != nil && !errors.Is(err, context.Canceled) {
		zerolog.Ctx(ctx).Error().Err(err).Msg("archive consumer error")
		return
	}

	zerolog.Ctx(ctx).Info().Msg("worker shutdown")
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	zerolog.Ctx(ctx).Info().Str("bucket", bucket).Msg("creating archive bucket")
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
