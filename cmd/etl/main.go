package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/couchcryptid/gsod-etl-service/internal/adapter/catalog"
	httpadapter "github.com/couchcryptid/gsod-etl-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/gsod-etl-service/internal/adapter/kafka"
	"github.com/couchcryptid/gsod-etl-service/internal/adapter/objectstore"
	"github.com/couchcryptid/gsod-etl-service/internal/config"
	"github.com/couchcryptid/gsod-etl-service/internal/domain"
	"github.com/couchcryptid/gsod-etl-service/internal/observability"
	"github.com/couchcryptid/gsod-etl-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateOutput(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	glueClient := glue.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg)
	cat := catalog.New(glueClient, logger)

	// The source table's data location comes from the catalog, not config.
	src, err := cat.LookupTable(ctx, cfg.SourceDatabase, cfg.SourceTable)
	if err != nil {
		logger.Error("failed to resolve source table", "database", cfg.SourceDatabase, "table", cfg.SourceTable, "error", err)
		os.Exit(1)
	}
	srcBucket, srcPrefix, err := objectstore.ParseS3URI(src.Location)
	if err != nil {
		logger.Error("source table has an invalid location", "location", src.Location, "error", err)
		os.Exit(1)
	}
	outBucket, outPrefix, err := objectstore.ParseS3URI(cfg.OutputS3URI)
	if err != nil {
		logger.Error("invalid output location", "uri", cfg.OutputS3URI, "error", err)
		os.Exit(1)
	}

	runID := fmt.Sprintf("%s-%d", cfg.OutputTable, time.Now().UTC().Unix())

	source := objectstore.NewSource(s3Client, srcBucket, srcPrefix, cfg.SourceYears, logger)
	sink := objectstore.NewSink(s3Client, outBucket, outPrefix, cfg.ParquetCompression, runID, logger)
	registrar := catalog.NewRegistrar(cat, cfg.OutputDatabase, cfg.OutputTable, cfg.OutputS3URI)

	// Quality publishing is optional; without brokers the result is only
	// logged and exported as a metric.
	var publisher pipeline.QualityPublisher
	var publisherClose func() error
	if cfg.QualityPublishEnabled() {
		p := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.QualityTopic, logger)
		publisher = p
		publisherClose = p.Close
		logger.Info("quality publishing enabled", "topic", cfg.QualityTopic)
	} else {
		logger.Info("quality publishing disabled")
	}

	mapping := domain.DefaultMapping()
	job := pipeline.New(
		mapping,
		source,
		pipeline.NewTransformer(mapping),
		sink,
		registrar,
		publisher,
		logger,
		metrics,
		runID,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, job, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	runErr := job.Run(ctx)
	if runErr != nil {
		logger.Error("run failed", "run_id", runID, "error", runErr)
	} else {
		logger.Info("run complete", "run_id", runID, "location", sink.Location())
	}

	// Keep serving /metrics and /readyz until a signal arrives so a
	// scraper can collect the final run state.
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherClose != nil {
		if err := publisherClose(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if runErr != nil {
		os.Exit(1)
	}
}
