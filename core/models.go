package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a 64-bit identifier derived from content hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Field names of the tabular input schema.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldCategory    = "Category1"
	FieldSubCategory = "sub_category"
)

// Record is one row of input data keyed by ID.
type Record struct {
	ID          string
	Title       string // Becomes the stored document body
	Category    string // Category1
	SubCategory string // sub_category
}

// Metadata returns the category fields as document metadata.
func (r *Record) Metadata() Metadata {
	return Metadata{
		FieldCategory:    r.Category,
		FieldSubCategory: r.SubCategory,
	}
}

// RecordSet is an ordered sequence of records together with the
// schema they were read from. The slice position of a record is its index.
type RecordSet struct {
	Fields  []string
	Records []Record
}

// Len returns the number of records in the set.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// HasField reports whether the source schema contains the named field.
func (rs *RecordSet) HasField(name string) bool {
	if rs == nil {
		return false
	}
	for _, f := range rs.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Metadata is structured side-data attached to a stored document.
type Metadata map[string]string

// Collection is a named persistent container of documents.
type Collection struct {
	Id        ID     // IDFromContent(Name); prefixes document keys
	UUID      string // External identifier assigned at creation
	Name      string
	CreatedAt time.Time
}

// Document is the stored form of a record.
type Document struct {
	ID         string
	Content    string
	Metadata   Metadata
	Vector     []float32 // Empty when the collection has no embedding function
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SearchResult represents a search result with the full document and relevance score.
type SearchResult struct {
	Document *Document
	Score    float32
}
