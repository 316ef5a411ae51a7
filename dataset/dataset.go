// Package dataset loads product records from delimited text files.
//
// Every value is read as a string; nothing is type-converted. The first row
// is the header. A "title_fa" column is read as the record title.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/kala/core"
)

// SourceTitleField is the column name that carries record titles in the
// product export format.
const SourceTitleField = "title_fa"

const utf8BOM = "\ufeff"

// Options configures the reader.
type Options struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
}

// Option is a functional option for configuring the reader.
type Option func(*Options)

// WithComma sets the field delimiter.
func WithComma(comma rune) Option {
	return func(o *Options) {
		o.Comma = comma
	}
}

// LoadCSV reads the file at path.
func LoadCSV(path string, opts ...Option) (*core.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	rs, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return rs, nil
}

// ReadCSV reads a header row followed by records. Empty input produces an
// empty set with no fields. Rows shorter than the header leave the missing
// fields empty.
func ReadCSV(r io.Reader, opts ...Option) (*core.RecordSet, error) {
	options := Options{Comma: ','}
	for _, opt := range opts {
		opt(&options)
	}

	reader := csv.NewReader(r)
	reader.Comma = options.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rs := &core.RecordSet{}

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return rs, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(headers))
	titleFromSource := false
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		fromSource := h == SourceTitleField
		if fromSource {
			h = core.FieldTitle
		}
		if _, dup := columns[h]; dup {
			// title_fa replaces a plain title column wherever it appears
			if fromSource && !titleFromSource {
				columns[h] = i
				titleFromSource = true
			}
			continue
		}
		if fromSource {
			titleFromSource = true
		}
		columns[h] = i
		rs.Fields = append(rs.Fields, h)
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rs.Records = append(rs.Records, core.Record{
			ID:          field(row, core.FieldID),
			Title:       field(row, core.FieldTitle),
			Category:    field(row, core.FieldCategory),
			SubCategory: field(row, core.FieldSubCategory),
		})
	}

	return rs, nil
}
