package domain

import "errors"

// Run-fatal error categories. Callers wrap these with context via
// fmt.Errorf("...: %w", ...) and classify with errors.Is.
var (
	// ErrSchemaMismatch: a mapping source field is absent from an input
	// record. Fatal for the whole batch.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrCast: a value could not be converted to its declared target type.
	// Fatal for the whole batch.
	ErrCast = errors.New("cast error")

	// ErrConfiguration: the mapping table itself is invalid (empty or
	// ambiguous). Raised before any record is processed.
	ErrConfiguration = errors.New("configuration error")

	// ErrCatalogUpdate: output data was written but the catalog entry could
	// not be registered. Reported, never retried; the operator reconciles.
	ErrCatalogUpdate = errors.New("catalog update failed")
)
