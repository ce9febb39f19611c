package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOutputURI = "s3://out-bucket/gsod"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OUTPUT_S3_URI", testOutputURI)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "weather", cfg.SourceDatabase)
	assert.Equal(t, "gsod_raw", cfg.SourceTable)
	assert.Empty(t, cfg.SourceYears)
	assert.Equal(t, "weather", cfg.OutputDatabase)
	assert.Equal(t, "gsod_transformed", cfg.OutputTable)
	assert.Equal(t, testOutputURI, cfg.OutputS3URI)
	assert.Equal(t, "uncompressed", cfg.ParquetCompression)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "data-quality-events", cfg.QualityTopic)
	assert.False(t, cfg.QualityPublishEnabled())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("SOURCE_DATABASE", "raw_weather")
	t.Setenv("SOURCE_TABLE", "gsod_2022")
	t.Setenv("SOURCE_YEARS", "2021, 2022")
	t.Setenv("OUTPUT_DATABASE", "curated")
	t.Setenv("OUTPUT_TABLE", "gsod_daily")
	t.Setenv("OUTPUT_S3_URI", testOutputURI)
	t.Setenv("PARQUET_COMPRESSION", "snappy")
	t.Setenv("ATHENA_OUTPUT_S3_URI", "s3://results/athena")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("QUALITY_TOPIC", "quality")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, "raw_weather", cfg.SourceDatabase)
	assert.Equal(t, "gsod_2022", cfg.SourceTable)
	assert.Equal(t, []string{"2021", "2022"}, cfg.SourceYears)
	assert.Equal(t, "curated", cfg.OutputDatabase)
	assert.Equal(t, "gsod_daily", cfg.OutputTable)
	assert.Equal(t, "snappy", cfg.ParquetCompression)
	assert.Equal(t, "s3://results/athena", cfg.AthenaOutputS3URI)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.QualityPublishEnabled())
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("missing output URI loads but fails ValidateOutput", func(t *testing.T) {
		t.Setenv("OUTPUT_S3_URI", "")
		cfg, err := Load()
		require.NoError(t, err)
		require.Error(t, cfg.ValidateOutput())
	})

	t.Run("set output URI passes ValidateOutput", func(t *testing.T) {
		t.Setenv("OUTPUT_S3_URI", testOutputURI)
		cfg, err := Load()
		require.NoError(t, err)
		require.NoError(t, cfg.ValidateOutput())
	})

	t.Run("non-s3 output URI", func(t *testing.T) {
		t.Setenv("OUTPUT_S3_URI", "gs://bucket/prefix")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad compression", func(t *testing.T) {
		t.Setenv("OUTPUT_S3_URI", testOutputURI)
		t.Setenv("PARQUET_COMPRESSION", "lzo")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad year filter", func(t *testing.T) {
		t.Setenv("OUTPUT_S3_URI", testOutputURI)
		t.Setenv("SOURCE_YEARS", "22")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad shutdown timeout", func(t *testing.T) {
		t.Setenv("OUTPUT_S3_URI", testOutputURI)
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
	})
}
