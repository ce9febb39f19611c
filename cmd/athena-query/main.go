// Command athena-query runs the canonical consumer queries against the
// transformed table and prints the results as TSV. It exists to spot-check
// a run's output end to end without leaving the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"

	"github.com/couchcryptid/gsod-etl-service/internal/adapter/athena"
	"github.com/couchcryptid/gsod-etl-service/internal/config"
	"github.com/couchcryptid/gsod-etl-service/internal/domain"
	"github.com/couchcryptid/gsod-etl-service/internal/observability"
)

func main() {
	var (
		from  = flag.String("from", "", "start report_date (YYYY-MM-DD, required)")
		to    = flag.String("to", "", "end report_date (YYYY-MM-DD, required)")
		table = flag.String("table", "", "table to query (defaults to OUTPUT_TABLE)")
		query = flag.String("query", "range", "which query to run: range or averages")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	if cfg.AthenaOutputS3URI == "" {
		logger.Error("ATHENA_OUTPUT_S3_URI must be set")
		os.Exit(1)
	}

	fromDate, err := domain.ParseDate(*from)
	if err != nil {
		logger.Error("invalid -from", "value", *from, "error", err)
		os.Exit(1)
	}
	toDate, err := domain.ParseDate(*to)
	if err != nil {
		logger.Error("invalid -to", "value", *to, "error", err)
		os.Exit(1)
	}

	target := *table
	if target == "" {
		target = cfg.OutputTable
	}

	var sql string
	switch *query {
	case "range":
		sql = athena.DateRangeQuery(target, fromDate, toDate)
	case "averages":
		sql = athena.DailyAveragesQuery(target, fromDate, toDate)
	default:
		logger.Error("unknown -query", "value", *query)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	client := athena.NewClient(awsathena.NewFromConfig(awsCfg), cfg.OutputDatabase, cfg.AthenaOutputS3URI, logger)

	result, err := client.Query(ctx, sql)
	if err != nil {
		logger.Error("query failed", "error", err)
		os.Exit(1)
	}

	fmt.Println(strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		fmt.Println(strings.Join(row, "\t"))
	}
}
