package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docingest/internal/concurrentparser"
	"docingest/internal/config"
	"docingest/internal/ingest"
	"docingest/internal/parseclient"
	"docingest/internal/pdfdoc"
	"docingest/internal/persist"
	"docingest/internal/port"
	mongostore "docingest/internal/repository/mongo"
	"docingest/internal/repository/postgres"
	"docingest/internal/queue"
	"docingest/internal/retry"
	s3storage "docingest/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := postgres.EnsureSchema(ctx, db, cfg.DB.AutoCreateTables); err != nil {
		return fmt.Errorf("failed schema check: %w", err)
	}

	mongoClient, err := mongostore.NewClient(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	metaStore := postgres.NewMetaStore(db)
	contentStore := mongostore.NewContentStore(mongoClient, cfg.Mongo)
	queueSource := postgres.NewQueueSource(db)

	var objectStorage port.ObjectStorage
	if cfg.Parser.StoreImages {
		objectStorage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Println("image upload path enabled")
	}

	parseClient := parseclient.New(parseclient.Config{
		BaseURL:    cfg.Parser.BaseURL,
		AuthHeader: cfg.Parser.AuthHeader,
		AuthToken:  cfg.Parser.AuthToken,
	})

	parser := concurrentparser.New(parseClient, concurrentparser.Config{
		BatchSize:      cfg.Parser.BatchSize,
		Concurrency:    cfg.Parser.MaxConcurrency,
		PollInterval:   cfg.Parser.PollInterval(),
		OverallTimeout: cfg.Parser.OverallTimeout(),
		SubmitOptions: port.SubmitOptions{
			Backend: cfg.Parser.Backend,
			Lang:    cfg.Parser.Lang,
			Method:  cfg.Parser.Method,
		},
		Retry: retry.Config{
			MaxRetries: cfg.Parser.MaxRetries,
			Strategy:   retry.Strategy(cfg.Parser.RetryStrategy),
			BaseDelay:  cfg.Parser.RetryBaseDelay(),
			MaxDelay:   cfg.Parser.RetryMaxDelay(),
		},
	})

	persister := persist.New(metaStore, contentStore, objectStorage, persist.Config{
		StoreImages: cfg.Parser.StoreImages,
		Bucket:      cfg.S3.Bucket,
	})

	facade := ingest.New(parser, persister, pdfdoc.CountPages)

	queueWorker := queue.New(queueSource, facade, queue.Config{
		PollInterval: cfg.Queue.PollInterval(),
		Concurrency:  cfg.Queue.Concurrency,
	})

	log.Println("docingest worker starting")
	queueWorker.Start(ctx)
	log.Println("docingest worker stopped")

	return nil
}
