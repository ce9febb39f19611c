// Package pipeline orchestrates the extract-transform-load run over one
// input partition set.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
	"github.com/couchcryptid/gsod-etl-service/internal/observability"
)

// Extractor reads the entire input batch in one pass.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.Record, error)
}

// Transformer converts one input record into an output record.
type Transformer interface {
	Transform(ctx context.Context, in domain.Record) (domain.Record, error)
}

// Loader writes the full partitioned batch to the output store.
type Loader interface {
	Load(ctx context.Context, batch domain.Batch) error
}

// ByteCounter is implemented by loaders that track payload size. The job
// exports the total as a metric after a successful load.
type ByteCounter interface {
	BytesWritten() int64
}

// CatalogUpdater registers the output schema and written partitions in the
// external catalog.
type CatalogUpdater interface {
	RegisterOutput(ctx context.Context, schema domain.Schema, partitions []domain.Date) error
}

// QualityPublisher delivers a quality result to interested consumers.
// Delivery is best effort: errors are logged by the job, never returned.
type QualityPublisher interface {
	Publish(ctx context.Context, result domain.QualityResult) error
}

// Job runs one batch transformation end to end. Each run is independent:
// there is no state shared across runs beyond what lands in the store and
// the catalog.
type Job struct {
	mapping   domain.Mapping
	extractor Extractor
	transform Transformer
	loader    Loader
	catalog   CatalogUpdater
	publisher QualityPublisher // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics
	runLabel  string
	ready     atomic.Bool
}

// New creates a Job. publisher may be nil when no quality topic is
// configured; the result is still logged and exported as a metric.
func New(
	mapping domain.Mapping,
	e Extractor,
	t Transformer,
	l Loader,
	c CatalogUpdater,
	p QualityPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
	runLabel string,
) *Job {
	return &Job{
		mapping:   mapping,
		extractor: e,
		transform: t,
		loader:    l,
		catalog:   c,
		publisher: p,
		logger:    logger,
		metrics:   metrics,
		runLabel:  runLabel,
	}
}

// CheckReadiness returns nil once the run has completed successfully.
func (j *Job) CheckReadiness(_ context.Context) error {
	if !j.ready.Load() {
		return errors.New("run has not completed yet")
	}
	return nil
}

// Run executes one batch: validate the mapping, extract everything,
// transform every record (first failure aborts, nothing is written),
// evaluate the quality rule, write one object per date partition, and
// register the result in the catalog. A catalog failure is returned after
// the data is already on the store; it is reported, not retried.
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()
	j.metrics.JobRunning.Set(1)
	defer j.metrics.JobRunning.Set(0)

	if err := j.mapping.Validate(); err != nil {
		j.logger.Error("mapping rejected", "error", err)
		return err
	}

	records, err := j.extractor.Extract(ctx)
	if err != nil {
		j.logger.Error("extract failed", "error", err)
		return err
	}
	j.metrics.RecordsExtracted.Add(float64(len(records)))
	j.logger.Info("batch extracted", "records", len(records))

	transformed := make([]domain.Record, 0, len(records))
	for i, rec := range records {
		out, err := j.transform.Transform(ctx, rec)
		if err != nil {
			// One bad record poisons the batch: no partial writes.
			j.metrics.TransformErrors.Inc()
			j.logger.Error("transform failed, aborting batch", "record", i, "error", err)
			return err
		}
		transformed = append(transformed, out)
	}
	j.metrics.RecordsTransformed.Add(float64(len(transformed)))

	schema := j.mapping.OutputSchema()
	j.observeQuality(ctx, schema)

	batch, err := domain.GroupByDate(schema, transformed)
	if err != nil {
		return err
	}

	if err := j.loader.Load(ctx, batch); err != nil {
		j.logger.Error("load failed", "error", err)
		return err
	}
	j.metrics.PartitionsWritten.Add(float64(len(batch.Partitions)))
	if bc, ok := j.loader.(ByteCounter); ok {
		j.metrics.BytesWritten.Add(float64(bc.BytesWritten()))
	}

	dates := make([]domain.Date, len(batch.Partitions))
	for i, p := range batch.Partitions {
		dates[i] = p.Date
	}
	if err := j.catalog.RegisterOutput(ctx, schema, dates); err != nil {
		// Data is written but uncataloged. Operator reconciles manually.
		j.metrics.CatalogUpdates.WithLabelValues("error").Inc()
		j.logger.Error("catalog update failed, output is uncataloged", "error", err)
		return err
	}
	j.metrics.CatalogUpdates.WithLabelValues("success").Inc()

	j.metrics.RunDuration.Observe(time.Since(start).Seconds())
	j.ready.Store(true)
	j.logger.Info("run complete",
		"records", len(transformed),
		"partitions", len(batch.Partitions),
		"duration", time.Since(start),
	)
	return nil
}

// observeQuality evaluates the column-count rule and records the result as
// run metadata. A failed rule is logged, not enforced: delivery proceeds
// under the best-effort publishing policy.
func (j *Job) observeQuality(ctx context.Context, schema domain.Schema) {
	result := domain.EvaluateColumnCount(schema, j.runLabel)

	if result.Passed {
		j.metrics.QualityCheckPassed.Set(1)
		j.logger.Info("quality check passed",
			"rule", result.Rule, "column_count", result.ColumnCount)
	} else {
		j.metrics.QualityCheckPassed.Set(0)
		j.logger.Warn("quality check failed",
			"rule", result.Rule, "column_count", result.ColumnCount)
	}

	if j.publisher == nil {
		return
	}
	if err := j.publisher.Publish(ctx, result); err != nil {
		// Best effort: log and continue.
		j.logger.Warn("quality result publish failed", "error", err)
	}
}
