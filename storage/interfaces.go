package storage

import (
	"context"

	"github.com/poiesic/kala/core"
)

// EmbeddingFunction computes one vector per input text, in input order.
// An ai.Embedder satisfies this interface.
type EmbeddingFunction interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CollectionOptions holds per-handle settings applied by OpenCollection.
type CollectionOptions struct {
	// EmbeddingFunction, when set, computes a vector for every document
	// written through AddRecords or Upsert.
	EmbeddingFunction EmbeddingFunction
}

// CollectionOption configures a collection handle.
type CollectionOption func(*CollectionOptions)

// WithEmbeddingFunction attaches an embedding function to the handle.
func WithEmbeddingFunction(fn EmbeddingFunction) CollectionOption {
	return func(o *CollectionOptions) {
		o.EmbeddingFunction = fn
	}
}

// CollectionStore opens named collections in a persistent store.
// Implementations must be thread-safe and support concurrent access.
type CollectionStore interface {
	// OpenCollection returns the collection with the given name, creating an
	// empty one if it does not exist. Repeated calls with the same name never
	// fail because the collection exists and return handles to the same
	// underlying collection.
	// Returns core.ErrInvalidCollectionName for names that break the naming rules.
	OpenCollection(ctx context.Context, name string, opts ...CollectionOption) (Collection, error)

	// ListCollections returns all collections ordered by name.
	ListCollections(ctx context.Context) ([]*core.Collection, error)

	// Close releases resources held by the store.
	Close() error
}

// Collection is a handle to one named collection.
type Collection interface {
	// Info returns the collection descriptor.
	Info() *core.Collection

	// AddRecords appends documents to the collection. ids, documents and
	// metadatas are parallel sequences and must have equal length.
	// Returns ErrLengthMismatch if they differ, and ErrDuplicateKey if an id
	// repeats within the call or already exists in the collection.
	// Validation and the duplicate check happen before anything is written,
	// so a rejected call writes nothing. A call larger than one store
	// transaction commits in several, and a failure while flushing may
	// leave part of it written.
	AddRecords(ctx context.Context, ids, documents []string, metadatas []core.Metadata) error

	// Upsert behaves like AddRecords but overwrites documents whose id
	// already exists, preserving their original insertion time.
	Upsert(ctx context.Context, ids, documents []string, metadatas []core.Metadata) error

	// UpdateDocuments replaces stored documents, typically to refresh vectors.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) error

	// Get retrieves documents by id.
	// Returns only the documents that exist (no error for missing ids).
	Get(ctx context.Context, ids ...string) ([]*core.Document, error)

	// Documents returns every document in the collection ordered by id.
	Documents(ctx context.Context) ([]*core.Document, error)

	// Count returns the number of documents in the collection.
	Count(ctx context.Context) (int, error)

	// FindSimilar finds documents whose vectors are similar to vector.
	// Returns documents with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}
