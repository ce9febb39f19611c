package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gsodRecord returns a full 21-field input record with plausible values.
func gsodRecord() Record {
	return Record{
		"station":         "72511794765",
		"date":            "2022-01-15",
		"latitude":        39.873,
		"longitude":       -75.227,
		"elevation":       3.0,
		"name":            "PHILADELPHIA INTERNATIONAL AIRPORT, PA US",
		"temp":            72.5,
		"dewp":            55.1,
		"slp":             1013.2,
		"stp":             998.6,
		"visib":           10.0,
		"wdsp":            7.9,
		"gust":            22.9,
		"max":             80.1,
		"max_attributes":  "*",
		"min":             61.0,
		"min_attributes":  "*",
		"prcp":            0.1,
		"prcp_attributes": "G",
		"sndp":            999.9,
		"year":            "2022",
	}
}

func TestMappingApply(t *testing.T) {
	mapping := DefaultMapping()
	require.NoError(t, mapping.Validate())

	t.Run("full record", func(t *testing.T) {
		out, err := mapping.Apply(gsodRecord())
		require.NoError(t, err)

		// Exactly the mapped fields, no extras, no omissions.
		assert.Len(t, out, len(mapping))
		for _, fm := range mapping {
			assert.Contains(t, out, fm.Target)
		}

		// date renamed and reinterpreted as a calendar date.
		assert.NotContains(t, out, "date")
		assert.Equal(t, Date{Year: 2022, Month: 1, Day: 15}, out["report_date"])

		// Other mapped fields unchanged.
		assert.Equal(t, "72511794765", out["station"])
		assert.Equal(t, 72.5, out["temp"])
		assert.Equal(t, 0.1, out["prcp"])
		assert.Equal(t, "G", out["prcp_attributes"])
	})

	t.Run("unmapped fields dropped silently", func(t *testing.T) {
		in := gsodRecord()
		in["frshtt"] = "010000"
		in["mxspd"] = 15.0

		out, err := mapping.Apply(in)
		require.NoError(t, err)

		assert.NotContains(t, out, "frshtt")
		assert.NotContains(t, out, "mxspd")
		assert.Len(t, out, len(mapping))
	})

	t.Run("missing source field is a schema mismatch", func(t *testing.T) {
		in := gsodRecord()
		delete(in, "temp")

		_, err := mapping.Apply(in)
		require.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "temp")
	})

	t.Run("malformed date is a cast error", func(t *testing.T) {
		in := gsodRecord()
		in["date"] = "01/15/2022"

		_, err := mapping.Apply(in)
		require.ErrorIs(t, err, ErrCast)
	})

	t.Run("wrong dynamic type is a cast error", func(t *testing.T) {
		in := gsodRecord()
		in["temp"] = "72.5"

		_, err := mapping.Apply(in)
		require.ErrorIs(t, err, ErrCast)
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := mapping.Apply(gsodRecord())
		require.NoError(t, err)
		second, err := mapping.Apply(gsodRecord())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestMappingValidate(t *testing.T) {
	t.Run("empty mapping", func(t *testing.T) {
		err := Mapping{}.Validate()
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("duplicate source", func(t *testing.T) {
		m := Mapping{
			{Source: "temp", SourceType: TypeDouble, Target: "temp", TargetType: TypeDouble},
			{Source: "temp", SourceType: TypeDouble, Target: "temp_f", TargetType: TypeDouble},
		}
		require.ErrorIs(t, m.Validate(), ErrConfiguration)
	})

	t.Run("duplicate target", func(t *testing.T) {
		m := Mapping{
			{Source: "max", SourceType: TypeDouble, Target: "peak", TargetType: TypeDouble},
			{Source: "gust", SourceType: TypeDouble, Target: "peak", TargetType: TypeDouble},
		}
		require.ErrorIs(t, m.Validate(), ErrConfiguration)
	})

	t.Run("unsupported cast", func(t *testing.T) {
		m := Mapping{
			{Source: "temp", SourceType: TypeDouble, Target: "temp", TargetType: TypeDate},
		}
		require.ErrorIs(t, m.Validate(), ErrConfiguration)
	})

	t.Run("default mapping is valid", func(t *testing.T) {
		require.NoError(t, DefaultMapping().Validate())
	})
}

func TestMappingOutputSchema(t *testing.T) {
	mapping := DefaultMapping()
	schema := mapping.OutputSchema()

	require.Len(t, schema, 21)
	assert.Equal(t, Column{Name: "station", Type: TypeString}, schema[0])
	assert.Equal(t, Column{Name: "report_date", Type: TypeDate}, schema[1])
	assert.Equal(t, Column{Name: "year", Type: TypeString}, schema[20])

	col, ok := schema.Column("report_date")
	require.True(t, ok)
	assert.Equal(t, TypeDate, col.Type)

	_, ok = schema.Column("date")
	assert.False(t, ok, "source date name must not survive the rename")
}
