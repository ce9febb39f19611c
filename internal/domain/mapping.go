package domain

import "fmt"

// FieldMapping maps one source field to one target field, with a cast from
// the declared source type to the target type.
type FieldMapping struct {
	Source     string
	SourceType FieldType
	Target     string
	TargetType FieldType
}

// Mapping is the ordered list of field mappings that defines the
// transformation. Target order here is the output column order.
type Mapping []FieldMapping

// Validate checks the mapping is usable before any record is processed.
// An empty mapping or an ambiguous one (duplicated source or target) is a
// configuration error.
func (m Mapping) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("%w: mapping table is empty", ErrConfiguration)
	}

	sources := make(map[string]struct{}, len(m))
	targets := make(map[string]struct{}, len(m))
	for _, fm := range m {
		if fm.Source == "" || fm.Target == "" {
			return fmt.Errorf("%w: mapping entry with empty field name", ErrConfiguration)
		}
		if _, dup := sources[fm.Source]; dup {
			return fmt.Errorf("%w: source field %q mapped twice", ErrConfiguration, fm.Source)
		}
		if _, dup := targets[fm.Target]; dup {
			return fmt.Errorf("%w: target field %q produced twice", ErrConfiguration, fm.Target)
		}
		sources[fm.Source] = struct{}{}
		targets[fm.Target] = struct{}{}

		if !castSupported(fm.SourceType, fm.TargetType) {
			return fmt.Errorf("%w: unsupported cast %s -> %s for field %q",
				ErrConfiguration, fm.SourceType, fm.TargetType, fm.Source)
		}
	}
	return nil
}

// Apply transforms one input record. Every mapped source field must be
// present (ErrSchemaMismatch) and castable to its target type (ErrCast).
// Input fields not named in the mapping are dropped without notice.
func (m Mapping) Apply(in Record) (Record, error) {
	out := make(Record, len(m))
	for _, fm := range m {
		v, ok := in[fm.Source]
		if !ok {
			return nil, fmt.Errorf("%w: field %q missing from input record", ErrSchemaMismatch, fm.Source)
		}
		cast, err := castValue(v, fm.SourceType, fm.TargetType)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fm.Source, err)
		}
		out[fm.Target] = cast
	}
	return out, nil
}

// OutputSchema returns the ordered output columns implied by the mapping.
func (m Mapping) OutputSchema() Schema {
	s := make(Schema, len(m))
	for i, fm := range m {
		s[i] = Column{Name: fm.Target, Type: fm.TargetType}
	}
	return s
}

// SourceFields returns the mapped source field names in mapping order.
func (m Mapping) SourceFields() []string {
	names := make([]string, len(m))
	for i, fm := range m {
		names[i] = fm.Source
	}
	return names
}

func castSupported(from, to FieldType) bool {
	if from == to {
		return true
	}
	return from == TypeString && to == TypeDate
}

// castValue converts a raw value to the target type. The dynamic type must
// match the declared source type; anything else is a cast error, not a
// schema mismatch.
func castValue(v any, from, to FieldType) (any, error) {
	switch from {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %T", ErrCast, v)
		}
		if to == TypeDate {
			d, err := ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCast, err)
			}
			return d, nil
		}
		return s, nil
	case TypeDouble:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: expected double, got %T", ErrCast, v)
		}
		return f, nil
	case TypeDate:
		d, ok := v.(Date)
		if !ok {
			return nil, fmt.Errorf("%w: expected date, got %T", ErrCast, v)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: unknown source type %q", ErrCast, from)
	}
}

// DefaultMapping is the fixed GSOD mapping: the date column is renamed to
// report_date and reinterpreted as a calendar date; every other column is
// carried through under its own name. Input columns not listed here (none,
// for a conforming GSOD extract) would be dropped.
func DefaultMapping() Mapping {
	return Mapping{
		{Source: "station", SourceType: TypeString, Target: "station", TargetType: TypeString},
		{Source: "date", SourceType: TypeString, Target: "report_date", TargetType: TypeDate},
		{Source: "latitude", SourceType: TypeDouble, Target: "latitude", TargetType: TypeDouble},
		{Source: "longitude", SourceType: TypeDouble, Target: "longitude", TargetType: TypeDouble},
		{Source: "elevation", SourceType: TypeDouble, Target: "elevation", TargetType: TypeDouble},
		{Source: "name", SourceType: TypeString, Target: "name", TargetType: TypeString},
		{Source: "temp", SourceType: TypeDouble, Target: "temp", TargetType: TypeDouble},
		{Source: "dewp", SourceType: TypeDouble, Target: "dewp", TargetType: TypeDouble},
		{Source: "slp", SourceType: TypeDouble, Target: "slp", TargetType: TypeDouble},
		{Source: "stp", SourceType: TypeDouble, Target: "stp", TargetType: TypeDouble},
		{Source: "visib", SourceType: TypeDouble, Target: "visib", TargetType: TypeDouble},
		{Source: "wdsp", SourceType: TypeDouble, Target: "wdsp", TargetType: TypeDouble},
		{Source: "gust", SourceType: TypeDouble, Target: "gust", TargetType: TypeDouble},
		{Source: "max", SourceType: TypeDouble, Target: "max", TargetType: TypeDouble},
		{Source: "max_attributes", SourceType: TypeString, Target: "max_attributes", TargetType: TypeString},
		{Source: "min", SourceType: TypeDouble, Target: "min", TargetType: TypeDouble},
		{Source: "min_attributes", SourceType: TypeString, Target: "min_attributes", TargetType: TypeString},
		{Source: "prcp", SourceType: TypeDouble, Target: "prcp", TargetType: TypeDouble},
		{Source: "prcp_attributes", SourceType: TypeString, Target: "prcp_attributes", TargetType: TypeString},
		{Source: "sndp", SourceType: TypeDouble, Target: "sndp", TargetType: TypeDouble},
		{Source: "year", SourceType: TypeString, Target: "year", TargetType: TypeString},
	}
}

// PartitionField is the output column the transformed dataset is
// partitioned by.
const PartitionField = "report_date"
