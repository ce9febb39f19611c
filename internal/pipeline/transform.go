package pipeline

import (
	"context"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

// MappingTransformer implements Transformer by applying the configured
// field mapping to each record.
type MappingTransformer struct {
	mapping domain.Mapping
}

// NewTransformer creates a MappingTransformer.
func NewTransformer(mapping domain.Mapping) *MappingTransformer {
	return &MappingTransformer{mapping: mapping}
}

func (t *MappingTransformer) Transform(_ context.Context, in domain.Record) (domain.Record, error) {
	return t.mapping.Apply(in)
}
