package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	parquetcodec "github.com/couchcryptid/gsod-etl-service/internal/adapter/parquet"
	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

// Source reads every Parquet object of the input partition set.
// It implements pipeline.Extractor.
type Source struct {
	client S3API
	bucket string
	prefix string
	years  []string
	logger *slog.Logger
}

// NewSource creates a source over the input table location. If years is
// non-empty, only the matching year=<YYYY>/ folders are read; otherwise the
// whole prefix is.
func NewSource(client S3API, bucket, prefix string, years []string, logger *slog.Logger) *Source {
	return &Source{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		years:  years,
		logger: logger,
	}
}

// Extract lists and decodes the full input batch in one pass.
func (s *Source) Extract(ctx context.Context) ([]domain.Record, error) {
	root := s.prefix
	if root != "" {
		root += "/"
	}
	prefixes := []string{root}
	if len(s.years) > 0 {
		prefixes = make([]string, len(s.years))
		for i, y := range s.years {
			prefixes[i] = fmt.Sprintf("%syear=%s/", root, y)
		}
	}

	var records []domain.Record
	for _, prefix := range prefixes {
		keys, err := s.listParquetKeys(ctx, prefix)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			recs, err := s.readObject(ctx, key)
			if err != nil {
				return nil, err
			}
			s.logger.Debug("extracted input object", "key", key, "records", len(recs))
			records = append(records, recs...)
		}
	}

	s.logger.Info("input batch extracted", "bucket", s.bucket, "records", len(records))
	return records, nil
}

func (s *Source) listParquetKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, ".parquet") {
				keys = append(keys, key)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}
	return keys, nil
}

func (s *Source) readObject(ctx context.Context, key string) ([]domain.Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}

	records, _, err := parquetcodec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode s3://%s/%s: %w", s.bucket, key, err)
	}
	return records, nil
}
