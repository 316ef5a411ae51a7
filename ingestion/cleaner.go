package ingestion

import (
	"log/slog"

	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/normalize"
)

// Cleaner deduplicates and normalizes a record set.
type Cleaner struct {
	normalizer normalize.Normalizer
	logger     *slog.Logger
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithCleanerLogger sets a custom logger.
// Default is slog.Default().
func WithCleanerLogger(logger *slog.Logger) CleanerOption {
	return func(c *Cleaner) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewCleaner creates a Cleaner that applies normalizer to titles and categories.
func NewCleaner(normalizer normalize.Normalizer, opts ...CleanerOption) (*Cleaner, error) {
	if normalizer == nil {
		return nil, ErrNormalizerRequired
	}
	c := &Cleaner{
		normalizer: normalizer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cleaner")
	return c, nil
}

// Clean returns a new record set with duplicate ids removed and the title
// and Category1 fields normalized. The first record with a given id is kept
// and the survivors keep their relative order. The input is not modified.
//
// Returns a *core.MissingFieldError if id, title or Category1 is not part
// of the input schema.
func (c *Cleaner) Clean(rs *core.RecordSet) (*core.RecordSet, error) {
	if rs == nil {
		return nil, ErrRecordSetRequired
	}
	if err := core.RequireFields(rs, core.FieldID, core.FieldTitle, core.FieldCategory); err != nil {
		return nil, err
	}

	c.logger.Info("preparing data", "records", rs.Len())

	seen := make(map[string]struct{}, len(rs.Records))
	records := make([]core.Record, 0, len(rs.Records))
	for _, record := range rs.Records {
		if _, dup := seen[record.ID]; dup {
			continue
		}
		seen[record.ID] = struct{}{}

		record.Title = c.normalizer.Normalize(record.Title)
		record.Category = c.normalizer.Normalize(record.Category)
		records = append(records, record)
	}

	cleaned := &core.RecordSet{
		Fields:  append([]string(nil), rs.Fields...),
		Records: records,
	}

	c.logger.Info("data cleaned and normalized",
		"records", cleaned.Len(),
		"duplicates", rs.Len()-cleaned.Len())
	return cleaned, nil
}
