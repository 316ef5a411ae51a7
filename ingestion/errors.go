package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a collection store is not provided.
	ErrStoreRequired = errors.New("collection store required")

	// ErrNormalizerRequired is returned when a normalizer is not provided.
	ErrNormalizerRequired = errors.New("normalizer required")

	// ErrRecordSetRequired is returned when Clean or Ingest is given a nil record set.
	ErrRecordSetRequired = errors.New("record set required")
)
