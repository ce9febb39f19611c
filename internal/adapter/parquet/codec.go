// Package parquet encodes and decodes domain record batches as Parquet.
//
// The column set is only known at runtime, from the mapping table, so the
// codec drives the low-level row API against a schema built from the
// mapping's output columns instead of a typed struct.
package parquet

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	parquetgo "github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

// BuildSchema converts an ordered domain schema into a Parquet file schema.
// All columns are required: the mapping either produces a value for every
// column or fails the batch, so nothing is ever null on the way out.
// Parquet groups order fields by name; domain column order is presentation
// order and lives in the catalog, not in the file.
func BuildSchema(name string, s domain.Schema) (*parquetgo.Schema, error) {
	group := parquetgo.Group{}
	for _, col := range s {
		switch col.Type {
		case domain.TypeString:
			group[col.Name] = parquetgo.String()
		case domain.TypeDouble:
			group[col.Name] = parquetgo.Leaf(parquetgo.DoubleType)
		case domain.TypeDate:
			group[col.Name] = parquetgo.Date()
		default:
			return nil, fmt.Errorf("column %q: unsupported type %q", col.Name, col.Type)
		}
	}
	return parquetgo.NewSchema(name, group), nil
}

// compressionOption maps a config compression name to a writer option.
// "uncompressed" (and "") write plain pages.
func compressionOption(name string) ([]parquetgo.WriterOption, error) {
	switch name {
	case "", "uncompressed":
		return nil, nil
	case "snappy":
		return []parquetgo.WriterOption{parquetgo.Compression(&parquetgo.Snappy)}, nil
	case "gzip":
		return []parquetgo.WriterOption{parquetgo.Compression(&parquetgo.Gzip)}, nil
	case "zstd":
		return []parquetgo.WriterOption{parquetgo.Compression(&parquetgo.Zstd)}, nil
	default:
		return nil, fmt.Errorf("unsupported parquet compression: %q", name)
	}
}

// Encode writes records conforming to schema into w. Record values must
// already be typed per the schema; a mismatch is a cast error since the
// record set was supposed to be produced by the mapping.
func Encode(w io.Writer, schema domain.Schema, records []domain.Record, compression string) error {
	pqSchema, err := BuildSchema("gsod", schema)
	if err != nil {
		return err
	}
	opts, err := compressionOption(compression)
	if err != nil {
		return err
	}
	opts = append(opts, parquetgo.WriterOption(pqSchema))

	fields := pqSchema.Fields()
	rows := make([]parquetgo.Row, 0, len(records))
	for i, rec := range records {
		row := make(parquetgo.Row, 0, len(fields))
		for col, field := range fields {
			v, ok := rec[field.Name()]
			if !ok {
				return fmt.Errorf("%w: record %d has no %q field", domain.ErrSchemaMismatch, i, field.Name())
			}
			pv, err := leafValue(v)
			if err != nil {
				return fmt.Errorf("record %d field %q: %w", i, field.Name(), err)
			}
			row = append(row, pv.Level(0, 0, col))
		}
		rows = append(rows, row)
	}

	writer := parquetgo.NewGenericWriter[any](w, opts...)
	if len(rows) > 0 {
		if _, err := writer.WriteRows(rows); err != nil {
			_ = writer.Close()
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(schema domain.Schema, records []domain.Record, compression string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, schema, records, compression); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func leafValue(v any) (parquetgo.Value, error) {
	switch x := v.(type) {
	case string:
		return parquetgo.ByteArrayValue([]byte(x)), nil
	case float64:
		return parquetgo.DoubleValue(x), nil
	case domain.Date:
		return parquetgo.Int32Value(x.DaysSinceEpoch()), nil
	default:
		return parquetgo.Value{}, fmt.Errorf("%w: unsupported value type %T", domain.ErrCast, v)
	}
}

// Decode reads every row of a Parquet payload into domain records, deriving
// the domain schema from the file schema. Null values are omitted from the
// record, which surfaces later as a schema mismatch if the field is mapped.
func Decode(data []byte) ([]domain.Record, domain.Schema, error) {
	file, err := parquetgo.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("open parquet file: %w", err)
	}

	fields := file.Schema().Fields()
	schema := make(domain.Schema, len(fields))
	for i, f := range fields {
		t, err := domainType(f)
		if err != nil {
			return nil, nil, err
		}
		schema[i] = domain.Column{Name: f.Name(), Type: t}
	}

	var records []domain.Record
	for _, rg := range file.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquetgo.Row, 64)
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				rec := make(domain.Record, len(fields))
				for _, v := range row {
					col := v.Column()
					if col < 0 || col >= len(fields) {
						continue
					}
					if v.IsNull() {
						continue
					}
					gv, err := goValue(v, schema[col].Type)
					if err != nil {
						_ = rows.Close()
						return nil, nil, fmt.Errorf("column %q: %w", schema[col].Name, err)
					}
					rec[schema[col].Name] = gv
				}
				records = append(records, rec)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, nil, fmt.Errorf("read parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, nil, fmt.Errorf("close parquet row reader: %w", err)
		}
	}
	return records, schema, nil
}

func domainType(f parquetgo.Field) (domain.FieldType, error) {
	t := f.Type()
	if lt := t.LogicalType(); lt != nil && lt.Date != nil {
		return domain.TypeDate, nil
	}
	switch t.Kind() {
	case parquetgo.ByteArray, parquetgo.FixedLenByteArray:
		return domain.TypeString, nil
	case parquetgo.Double, parquetgo.Float, parquetgo.Int32, parquetgo.Int64:
		return domain.TypeDouble, nil
	default:
		return "", fmt.Errorf("field %q: unsupported parquet kind %s", f.Name(), t.Kind())
	}
}

func goValue(v parquetgo.Value, t domain.FieldType) (any, error) {
	switch t {
	case domain.TypeString:
		return string(v.ByteArray()), nil
	case domain.TypeDate:
		return domain.DateFromDaysSinceEpoch(v.Int32()), nil
	case domain.TypeDouble:
		switch v.Kind() {
		case parquetgo.Double:
			return v.Double(), nil
		case parquetgo.Float:
			return float64(v.Float()), nil
		case parquetgo.Int32:
			return float64(v.Int32()), nil
		case parquetgo.Int64:
			return float64(v.Int64()), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot convert %s value", domain.ErrCast, v.Kind())
}

// SortedColumns returns the schema's columns in the order Parquet stores
// them (lexicographic by name). Useful for asserting file layout in tests.
func SortedColumns(s domain.Schema) []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}
