// Package catalog maintains the Glue Data Catalog entries for the input and
// output tables. The catalog is an external registry: this adapter looks up
// where the input lives and registers the output's schema and partitions,
// it never infers schemas itself.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

// Hive connector classes for Parquet-backed external tables.
const (
	parquetInputFormat  = "org.apache.hadoop.hive.ql.io.parquet.MapredParquetInputFormat"
	parquetOutputFormat = "org.apache.hadoop.hive.ql.io.parquet.MapredParquetOutputFormat"
	parquetSerde        = "org.apache.hadoop.hive.ql.io.parquet.serde.ParquetHiveSerDe"
)

// GlueAPI is the subset of the Glue client the catalog adapter needs.
type GlueAPI interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
	CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error)
	UpdateTable(ctx context.Context, params *glue.UpdateTableInput, optFns ...func(*glue.Options)) (*glue.UpdateTableOutput, error)
	BatchCreatePartition(ctx context.Context, params *glue.BatchCreatePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error)
}

var _ GlueAPI = (*glue.Client)(nil)

// Catalog talks to the Glue Data Catalog.
type Catalog struct {
	client GlueAPI
	logger *slog.Logger
}

// New creates a catalog adapter over a Glue client.
func New(client GlueAPI, logger *slog.Logger) *Catalog {
	return &Catalog{client: client, logger: logger}
}

// TableLocation describes where a cataloged table's data lives.
type TableLocation struct {
	Database string
	Table    string
	Location string // s3://bucket/prefix
}

// LookupTable resolves a database/table name to its storage location.
func (c *Catalog) LookupTable(ctx context.Context, database, table string) (TableLocation, error) {
	out, err := c.client.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return TableLocation{}, fmt.Errorf("get table %s.%s: %w", database, table, err)
	}
	if out.Table == nil || out.Table.StorageDescriptor == nil || out.Table.StorageDescriptor.Location == nil {
		return TableLocation{}, fmt.Errorf("table %s.%s has no storage location", database, table)
	}
	return TableLocation{
		Database: database,
		Table:    table,
		Location: strings.TrimRight(*out.Table.StorageDescriptor.Location, "/"),
	}, nil
}

// RegisterRequest describes the output table to create or update.
type RegisterRequest struct {
	Database   string
	Table      string
	Location   string // s3://bucket/prefix of the table root
	Schema     domain.Schema
	Partitions []domain.Date
}

// RegisterOutput creates or updates the output table entry and registers one
// partition per written date. Data is already on the store when this runs;
// any failure here is a catalog inconsistency the operator must reconcile,
// so everything is wrapped as a catalog update error and never retried.
func (c *Catalog) RegisterOutput(ctx context.Context, req RegisterRequest) error {
	tableInput, err := buildTableInput(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogUpdate, err)
	}

	if err := c.createOrUpdateTable(ctx, req.Database, tableInput); err != nil {
		return fmt.Errorf("%w: table %s.%s: %v", domain.ErrCatalogUpdate, req.Database, req.Table, err)
	}

	if err := c.registerPartitions(ctx, req); err != nil {
		return fmt.Errorf("%w: partitions of %s.%s: %v", domain.ErrCatalogUpdate, req.Database, req.Table, err)
	}

	c.logger.Info("catalog updated",
		"database", req.Database,
		"table", req.Table,
		"columns", len(req.Schema),
		"partitions", len(req.Partitions),
	)
	return nil
}

func (c *Catalog) createOrUpdateTable(ctx context.Context, database string, tableInput *gluetypes.TableInput) error {
	_, err := c.client.UpdateTable(ctx, &glue.UpdateTableInput{
		DatabaseName: aws.String(database),
		TableInput:   tableInput,
	})
	if err == nil {
		return nil
	}

	var notFound *gluetypes.EntityNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}

	_, err = c.client.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(database),
		TableInput:   tableInput,
	})
	return err
}

func (c *Catalog) registerPartitions(ctx context.Context, req RegisterRequest) error {
	if len(req.Partitions) == 0 {
		return nil
	}

	inputs := make([]gluetypes.PartitionInput, len(req.Partitions))
	for i, d := range req.Partitions {
		inputs[i] = gluetypes.PartitionInput{
			Values: []string{d.String()},
			StorageDescriptor: storageDescriptor(
				req.Location+"/"+domain.PartitionField+"="+d.String(),
				dataColumns(req.Schema),
			),
		}
	}

	out, err := c.client.BatchCreatePartition(ctx, &glue.BatchCreatePartitionInput{
		DatabaseName:       aws.String(req.Database),
		TableName:          aws.String(req.Table),
		PartitionInputList: inputs,
	})
	if err != nil {
		return err
	}

	// Re-registering an existing partition is fine (re-runs over the same
	// dates); anything else fails the registration.
	for _, pe := range out.Errors {
		if pe.ErrorDetail == nil {
			continue
		}
		code := aws.ToString(pe.ErrorDetail.ErrorCode)
		if code == "AlreadyExistsException" {
			continue
		}
		return fmt.Errorf("partition %v: %s: %s",
			pe.PartitionValues, code, aws.ToString(pe.ErrorDetail.ErrorMessage))
	}
	return nil
}

// buildTableInput assembles the Glue table entry. The partition field is a
// partition key, not a data column, so it is excluded from the descriptor's
// column list per Hive convention.
func buildTableInput(req RegisterRequest) (*gluetypes.TableInput, error) {
	if _, ok := req.Schema.Column(domain.PartitionField); !ok {
		return nil, fmt.Errorf("schema has no %s column", domain.PartitionField)
	}

	return &gluetypes.TableInput{
		Name:      aws.String(req.Table),
		TableType: aws.String("EXTERNAL_TABLE"),
		Parameters: map[string]string{
			"classification": "parquet",
		},
		StorageDescriptor: storageDescriptor(req.Location, dataColumns(req.Schema)),
		PartitionKeys: []gluetypes.Column{
			{Name: aws.String(domain.PartitionField), Type: aws.String("date")},
		},
	}, nil
}

func storageDescriptor(location string, columns []gluetypes.Column) *gluetypes.StorageDescriptor {
	return &gluetypes.StorageDescriptor{
		Columns:      columns,
		Location:     aws.String(location),
		InputFormat:  aws.String(parquetInputFormat),
		OutputFormat: aws.String(parquetOutputFormat),
		SerdeInfo: &gluetypes.SerDeInfo{
			SerializationLibrary: aws.String(parquetSerde),
		},
	}
}

func dataColumns(schema domain.Schema) []gluetypes.Column {
	cols := make([]gluetypes.Column, 0, len(schema)-1)
	for _, c := range schema {
		if c.Name == domain.PartitionField {
			continue
		}
		cols = append(cols, gluetypes.Column{
			Name: aws.String(c.Name),
			Type: aws.String(glueType(c.Type)),
		})
	}
	return cols
}

func glueType(t domain.FieldType) string {
	switch t {
	case domain.TypeDouble:
		return "double"
	case domain.TypeDate:
		return "date"
	default:
		return "string"
	}
}

// Registrar binds a Catalog to one output table so the pipeline can
// register run results without carrying catalog coordinates around.
// It implements pipeline.CatalogUpdater.
type Registrar struct {
	catalog  *Catalog
	database string
	table    string
	location string
}

// NewRegistrar creates a registrar for the given output table.
func NewRegistrar(c *Catalog, database, table, location string) *Registrar {
	return &Registrar{
		catalog:  c,
		database: database,
		table:    table,
		location: strings.TrimRight(location, "/"),
	}
}

// RegisterOutput registers the run's schema and written partitions under
// the bound table.
func (r *Registrar) RegisterOutput(ctx context.Context, schema domain.Schema, partitions []domain.Date) error {
	return r.catalog.RegisterOutput(ctx, RegisterRequest{
		Database:   r.database,
		Table:      r.table,
		Location:   r.location,
		Schema:     schema,
		Partitions: partitions,
	})
}
