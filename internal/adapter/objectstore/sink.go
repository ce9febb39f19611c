package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	parquetcodec "github.com/couchcryptid/gsod-etl-service/internal/adapter/parquet"
	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

const parquetContentType = "application/vnd.apache.parquet"

// Sink writes the transformed batch as one Parquet object per report_date
// partition. It implements pipeline.Loader.
type Sink struct {
	client      S3API
	bucket      string
	prefix      string
	compression string
	runID       string
	logger      *slog.Logger

	bytesWritten int64
}

// NewSink creates an output writer. runID becomes part of the object name;
// re-running with the same id overwrites the previous attempt in place.
func NewSink(client S3API, bucket, prefix, compression, runID string, logger *slog.Logger) *Sink {
	return &Sink{
		client:      client,
		bucket:      bucket,
		prefix:      strings.Trim(prefix, "/"),
		compression: compression,
		runID:       runID,
		logger:      logger,
	}
}

// Load writes every partition of the batch. Any failed write fails the
// whole load; nothing is cleaned up, a retry under the same run id
// overwrites its own objects in place.
func (s *Sink) Load(ctx context.Context, batch domain.Batch) error {
	for _, p := range batch.Partitions {
		key := s.partitionKey(p.Date)
		data, err := parquetcodec.EncodeBytes(batch.Schema, p.Records, s.compression)
		if err != nil {
			return fmt.Errorf("encode partition %s: %w", p.Date, err)
		}

		if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String(parquetContentType),
		}); err != nil {
			return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
		}

		s.bytesWritten += int64(len(data))
		s.logger.Info("partition written",
			"key", key, "records", len(p.Records), "bytes", len(data))
	}
	return nil
}

// Location returns the s3:// URI of the output table root.
func (s *Sink) Location() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// BytesWritten reports the total payload bytes written so far.
func (s *Sink) BytesWritten() int64 { return s.bytesWritten }

func (s *Sink) partitionKey(d domain.Date) string {
	return fmt.Sprintf("%s/%s=%s/part-00000-%s.parquet",
		s.prefix, domain.PartitionField, d, s.runID)
}
