package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	AWSRegion string

	// Input table, resolved through the data catalog.
	SourceDatabase string
	SourceTable    string
	SourceYears    []string // optional year=<YYYY> partition filter; empty reads all

	// Output table and store location.
	OutputDatabase     string
	OutputTable        string
	OutputS3URI        string // s3://bucket/prefix the transformed data lands under
	ParquetCompression string

	// Athena result location for the query command.
	AthenaOutputS3URI string

	// Quality result publishing (optional; disabled without brokers).
	KafkaBrokers []string
	QualityTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// QualityPublishEnabled reports whether a Kafka quality topic is configured.
func (c *Config) QualityPublishEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.QualityTopic != ""
}

// ValidateOutput checks the settings only the ETL run needs. The query
// command shares Load but has no output sink, so this is separate from the
// load-time validation.
func (c *Config) ValidateOutput() error {
	if c.OutputS3URI == "" {
		return errors.New("OUTPUT_S3_URI is required")
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AWSRegion: envOrDefault("AWS_REGION", "us-east-1"),

		SourceDatabase: envOrDefault("SOURCE_DATABASE", "weather"),
		SourceTable:    envOrDefault("SOURCE_TABLE", "gsod_raw"),
		SourceYears:    parseList(os.Getenv("SOURCE_YEARS")),

		OutputDatabase:     envOrDefault("OUTPUT_DATABASE", "weather"),
		OutputTable:        envOrDefault("OUTPUT_TABLE", "gsod_transformed"),
		OutputS3URI:        os.Getenv("OUTPUT_S3_URI"),
		ParquetCompression: envOrDefault("PARQUET_COMPRESSION", "uncompressed"),

		AthenaOutputS3URI: os.Getenv("ATHENA_OUTPUT_S3_URI"),

		KafkaBrokers: parseList(os.Getenv("KAFKA_BROKERS")),
		QualityTopic: envOrDefault("QUALITY_TOPIC", "data-quality-events"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.OutputS3URI != "" && !strings.HasPrefix(cfg.OutputS3URI, "s3://") {
		return nil, errors.New("OUTPUT_S3_URI must start with s3://")
	}
	if cfg.AthenaOutputS3URI != "" && !strings.HasPrefix(cfg.AthenaOutputS3URI, "s3://") {
		return nil, errors.New("ATHENA_OUTPUT_S3_URI must start with s3://")
	}
	switch cfg.ParquetCompression {
	case "uncompressed", "snappy", "gzip", "zstd":
	default:
		return nil, fmt.Errorf("invalid PARQUET_COMPRESSION %q", cfg.ParquetCompression)
	}
	for _, y := range cfg.SourceYears {
		if len(y) != 4 || strings.Trim(y, "0123456789") != "" {
			return nil, fmt.Errorf("invalid SOURCE_YEARS entry %q", y)
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
