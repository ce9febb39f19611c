package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

type fakeGlue struct {
	getTableOut *glue.GetTableOutput
	getTableErr error

	updateErr error
	createErr error

	createdTables    []*gluetypes.TableInput
	updatedTables    []*gluetypes.TableInput
	partitionInputs  []gluetypes.PartitionInput
	partitionErrs    []gluetypes.PartitionError
	batchPartitionDB string
}

func (f *fakeGlue) GetTable(_ context.Context, _ *glue.GetTableInput, _ ...func(*glue.Options)) (*glue.GetTableOutput, error) {
	return f.getTableOut, f.getTableErr
}

func (f *fakeGlue) CreateTable(_ context.Context, in *glue.CreateTableInput, _ ...func(*glue.Options)) (*glue.CreateTableOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdTables = append(f.createdTables, in.TableInput)
	return &glue.CreateTableOutput{}, nil
}

func (f *fakeGlue) UpdateTable(_ context.Context, in *glue.UpdateTableInput, _ ...func(*glue.Options)) (*glue.UpdateTableOutput, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedTables = append(f.updatedTables, in.TableInput)
	return &glue.UpdateTableOutput{}, nil
}

func (f *fakeGlue) BatchCreatePartition(_ context.Context, in *glue.BatchCreatePartitionInput, _ ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error) {
	f.batchPartitionDB = aws.ToString(in.DatabaseName)
	f.partitionInputs = append(f.partitionInputs, in.PartitionInputList...)
	return &glue.BatchCreatePartitionOutput{Errors: f.partitionErrs}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func outputSchema() domain.Schema {
	return domain.Schema{
		{Name: "station", Type: domain.TypeString},
		{Name: "report_date", Type: domain.TypeDate},
		{Name: "temp", Type: domain.TypeDouble},
	}
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Database: "weather",
		Table:    "gsod_transformed",
		Location: "s3://out-bucket/gsod",
		Schema:   outputSchema(),
		Partitions: []domain.Date{
			{Year: 2022, Month: time.January, Day: 1},
			{Year: 2022, Month: time.January, Day: 2},
		},
	}
}

func TestLookupTable(t *testing.T) {
	t.Run("resolves location", func(t *testing.T) {
		fake := &fakeGlue{getTableOut: &glue.GetTableOutput{Table: &gluetypes.Table{
			StorageDescriptor: &gluetypes.StorageDescriptor{
				Location: aws.String("s3://in-bucket/gsod/"),
			},
		}}}
		c := New(fake, discardLogger())

		loc, err := c.LookupTable(context.Background(), "weather", "gsod_raw")
		require.NoError(t, err)
		assert.Equal(t, "s3://in-bucket/gsod", loc.Location)
	})

	t.Run("propagates lookup failure", func(t *testing.T) {
		fake := &fakeGlue{getTableErr: errors.New("not allowed")}
		c := New(fake, discardLogger())

		_, err := c.LookupTable(context.Background(), "weather", "gsod_raw")
		require.Error(t, err)
	})

	t.Run("missing storage descriptor", func(t *testing.T) {
		fake := &fakeGlue{getTableOut: &glue.GetTableOutput{Table: &gluetypes.Table{}}}
		c := New(fake, discardLogger())

		_, err := c.LookupTable(context.Background(), "weather", "gsod_raw")
		require.Error(t, err)
	})
}

func TestRegisterOutput(t *testing.T) {
	t.Run("updates existing table", func(t *testing.T) {
		fake := &fakeGlue{}
		c := New(fake, discardLogger())

		require.NoError(t, c.RegisterOutput(context.Background(), registerReq()))

		require.Len(t, fake.updatedTables, 1)
		assert.Empty(t, fake.createdTables)

		ti := fake.updatedTables[0]
		assert.Equal(t, "gsod_transformed", aws.ToString(ti.Name))
		assert.Equal(t, "EXTERNAL_TABLE", aws.ToString(ti.TableType))
		assert.Equal(t, "parquet", ti.Parameters["classification"])

		// Partition key is excluded from the data columns.
		require.Len(t, ti.StorageDescriptor.Columns, 2)
		assert.Equal(t, "station", aws.ToString(ti.StorageDescriptor.Columns[0].Name))
		assert.Equal(t, "temp", aws.ToString(ti.StorageDescriptor.Columns[1].Name))
		require.Len(t, ti.PartitionKeys, 1)
		assert.Equal(t, "report_date", aws.ToString(ti.PartitionKeys[0].Name))
		assert.Equal(t, "date", aws.ToString(ti.PartitionKeys[0].Type))
	})

	t.Run("creates table when absent", func(t *testing.T) {
		fake := &fakeGlue{updateErr: &gluetypes.EntityNotFoundException{}}
		c := New(fake, discardLogger())

		require.NoError(t, c.RegisterOutput(context.Background(), registerReq()))
		require.Len(t, fake.createdTables, 1)
	})

	t.Run("registers one partition per date", func(t *testing.T) {
		fake := &fakeGlue{}
		c := New(fake, discardLogger())

		require.NoError(t, c.RegisterOutput(context.Background(), registerReq()))

		assert.Equal(t, "weather", fake.batchPartitionDB)
		require.Len(t, fake.partitionInputs, 2)
		assert.Equal(t, []string{"2022-01-01"}, fake.partitionInputs[0].Values)
		assert.Equal(t,
			"s3://out-bucket/gsod/report_date=2022-01-01",
			aws.ToString(fake.partitionInputs[0].StorageDescriptor.Location),
		)
	})

	t.Run("tolerates already-existing partitions", func(t *testing.T) {
		fake := &fakeGlue{partitionErrs: []gluetypes.PartitionError{{
			PartitionValues: []string{"2022-01-01"},
			ErrorDetail:     &gluetypes.ErrorDetail{ErrorCode: aws.String("AlreadyExistsException")},
		}}}
		c := New(fake, discardLogger())

		require.NoError(t, c.RegisterOutput(context.Background(), registerReq()))
	})

	t.Run("failure is a catalog update error", func(t *testing.T) {
		fake := &fakeGlue{updateErr: errors.New("throttled"), createErr: errors.New("throttled")}
		c := New(fake, discardLogger())

		err := c.RegisterOutput(context.Background(), registerReq())
		require.ErrorIs(t, err, domain.ErrCatalogUpdate)
	})

	t.Run("partition error other than already-exists fails", func(t *testing.T) {
		fake := &fakeGlue{partitionErrs: []gluetypes.PartitionError{{
			PartitionValues: []string{"2022-01-02"},
			ErrorDetail: &gluetypes.ErrorDetail{
				ErrorCode:    aws.String("InternalServiceException"),
				ErrorMessage: aws.String("boom"),
			},
		}}}
		c := New(fake, discardLogger())

		err := c.RegisterOutput(context.Background(), registerReq())
		require.ErrorIs(t, err, domain.ErrCatalogUpdate)
	})
}
