// Command gsodgen writes deterministic sample station-day readings as raw
// Parquet under a year=YYYY layout, locally or on S3. The same flags always
// produce the same bytes, so generated fixtures can seed repeatable runs.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/couchcryptid/gsod-etl-service/internal/adapter/objectstore"
	parquetcodec "github.com/couchcryptid/gsod-etl-service/internal/adapter/parquet"
	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

var sourceSchema = domain.Schema{
	{Name: "station", Type: domain.TypeString},
	{Name: "date", Type: domain.TypeString},
	{Name: "latitude", Type: domain.TypeDouble},
	{Name: "longitude", Type: domain.TypeDouble},
	{Name: "elevation", Type: domain.TypeDouble},
	{Name: "name", Type: domain.TypeString},
	{Name: "temp", Type: domain.TypeDouble},
	{Name: "dewp", Type: domain.TypeDouble},
	{Name: "slp", Type: domain.TypeDouble},
	{Name: "stp", Type: domain.TypeDouble},
	{Name: "visib", Type: domain.TypeDouble},
	{Name: "wdsp", Type: domain.TypeDouble},
	{Name: "gust", Type: domain.TypeDouble},
	{Name: "max", Type: domain.TypeDouble},
	{Name: "max_attributes", Type: domain.TypeString},
	{Name: "min", Type: domain.TypeDouble},
	{Name: "min_attributes", Type: domain.TypeString},
	{Name: "prcp", Type: domain.TypeDouble},
	{Name: "prcp_attributes", Type: domain.TypeString},
	{Name: "sndp", Type: domain.TypeDouble},
	{Name: "year", Type: domain.TypeString},
}

var stations = []struct {
	id   string
	name string
	lat  float64
	lon  float64
	elev float64
}{
	{"72503014732", "LAGUARDIA AIRPORT, NY US", 40.779, -73.880, 3.4},
	{"72793024233", "SEATTLE TACOMA AIRPORT, WA US", 47.444, -122.314, 112.8},
	{"41640099999", "TABUK, SA", 28.365, 36.600, 770.0},
}

func main() {
	var (
		year = flag.String("year", "2022", "year to generate (YYYY)")
		days = flag.Int("days", 3, "number of days starting January 1")
		out  = flag.String("out", "", "destination: a local directory or an s3:// URI (required)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *out == "" {
		logger.Error("-out is required")
		os.Exit(1)
	}
	if len(*year) != 4 {
		logger.Error("-year must be a 4-digit year", "value", *year)
		os.Exit(1)
	}
	if *days < 1 || *days > 365 {
		logger.Error("-days must be between 1 and 365", "value", *days)
		os.Exit(1)
	}

	data, err := parquetcodec.EncodeBytes(sourceSchema, generate(*year, *days), "uncompressed")
	if err != nil {
		logger.Error("encode failed", "error", err)
		os.Exit(1)
	}

	key := fmt.Sprintf("year=%s/part-00000.parquet", *year)

	if strings.HasPrefix(*out, "s3://") {
		if err := putS3(*out, key, data); err != nil {
			logger.Error("upload failed", "error", err)
			os.Exit(1)
		}
	} else {
		path := filepath.Join(*out, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			logger.Error("mkdir failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Error("write failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("generated", "year", *year, "days", *days,
		"stations", len(stations), "records", *days*len(stations), "bytes", len(data))
}

// generate produces days*len(stations) records with smoothly varying
// readings. Values derive only from the station index and day number.
func generate(year string, days int) []domain.Record {
	records := make([]domain.Record, 0, days*len(stations))
	base, err := domain.ParseDate(year + "-01-01")
	if err != nil {
		panic(err)
	}
	for day := 0; day < days; day++ {
		date := domain.DateFromDaysSinceEpoch(base.DaysSinceEpoch() + int32(day))
		for i, st := range stations {
			phase := float64(day) + float64(i)*2.5
			temp := round1(45 + 20*math.Sin(phase/5))
			records = append(records, domain.Record{
				"station":         st.id,
				"date":            date.String(),
				"latitude":        st.lat,
				"longitude":       st.lon,
				"elevation":       st.elev,
				"name":            st.name,
				"temp":            temp,
				"dewp":            round1(temp - 8),
				"slp":             round1(1013 + 3*math.Cos(phase/3)),
				"stp":             round1(990 + 3*math.Cos(phase/3)),
				"visib":           round1(8 + 2*math.Sin(phase/7)),
				"wdsp":            round1(5 + 3*math.Sin(phase/2)),
				"gust":            round1(12 + 5*math.Sin(phase/2)),
				"max":             round1(temp + 10),
				"max_attributes":  " ",
				"min":             round1(temp - 10),
				"min_attributes":  " ",
				"prcp":            round1(math.Max(0, math.Sin(phase/4))),
				"prcp_attributes": "G",
				"sndp":            999.9,
				"year":            year,
			})
		}
	}
	return records
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func putS3(uri, key string, data []byte) error {
	bucket, prefix, err := objectstore.ParseS3URI(uri)
	if err != nil {
		return err
	}
	if prefix != "" {
		key = strings.TrimRight(prefix, "/") + "/" + key
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/vnd.apache.parquet"),
	}); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
