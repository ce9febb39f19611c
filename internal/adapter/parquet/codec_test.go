package parquet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

var testSchema = domain.Schema{
	{Name: "station", Type: domain.TypeString},
	{Name: "report_date", Type: domain.TypeDate},
	{Name: "temp", Type: domain.TypeDouble},
	{Name: "prcp", Type: domain.TypeDouble},
}

func testRecords() []domain.Record {
	return []domain.Record{
		{
			"station":     "72511794765",
			"report_date": domain.Date{Year: 2022, Month: time.January, Day: 15},
			"temp":        72.5,
			"prcp":        0.1,
		},
		{
			"station":     "99999904223",
			"report_date": domain.Date{Year: 2022, Month: time.January, Day: 16},
			"temp":        68.0,
			"prcp":        0.0,
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := EncodeBytes(testSchema, testRecords(), "uncompressed")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	records, schema, err := Decode(data)
	require.NoError(t, err)

	// Parquet stores columns sorted by name; the decoded schema follows
	// file order, so compare as sets plus types.
	require.Len(t, schema, len(testSchema))
	for _, want := range testSchema {
		got, ok := schema.Column(want.Name)
		require.True(t, ok, "column %s", want.Name)
		assert.Equal(t, want.Type, got.Type)
	}

	require.Len(t, records, 2)
	assert.Equal(t, "72511794765", records[0]["station"])
	assert.Equal(t, domain.Date{Year: 2022, Month: time.January, Day: 15}, records[0]["report_date"])
	assert.Equal(t, 72.5, records[0]["temp"])
	assert.Equal(t, 0.0, records[1]["prcp"])
}

func TestEncodeDeterministic(t *testing.T) {
	first, err := EncodeBytes(testSchema, testRecords(), "uncompressed")
	require.NoError(t, err)
	second, err := EncodeBytes(testSchema, testRecords(), "uncompressed")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same input batch must produce byte-identical output")
}

func TestEncodeCompression(t *testing.T) {
	for _, name := range []string{"", "uncompressed", "snappy", "gzip", "zstd"} {
		t.Run("compression "+name, func(t *testing.T) {
			data, err := EncodeBytes(testSchema, testRecords(), name)
			require.NoError(t, err)

			records, _, err := Decode(data)
			require.NoError(t, err)
			assert.Len(t, records, 2)
		})
	}

	t.Run("unknown compression", func(t *testing.T) {
		_, err := EncodeBytes(testSchema, testRecords(), "lz77")
		require.Error(t, err)
	})
}

func TestEncodeErrors(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		rec := testRecords()[0]
		delete(rec, "temp")

		_, err := EncodeBytes(testSchema, []domain.Record{rec}, "")
		require.ErrorIs(t, err, domain.ErrSchemaMismatch)
	})

	t.Run("mistyped field", func(t *testing.T) {
		rec := testRecords()[0]
		rec["temp"] = int64(72)

		_, err := EncodeBytes(testSchema, []domain.Record{rec}, "")
		require.ErrorIs(t, err, domain.ErrCast)
	})
}

func TestEncodeEmptyBatch(t *testing.T) {
	data, err := EncodeBytes(testSchema, nil, "uncompressed")
	require.NoError(t, err)

	records, schema, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Len(t, schema, len(testSchema))
}
