package reembed

import (
	"context"

	"github.com/poiesic/kala/batch"
	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/storage"
)

// DefaultBatchSize is the default number of documents per batch.
const DefaultBatchSize = 100

// DocumentIterator walks all documents of a collection in batches.
type DocumentIterator struct {
	collection storage.Collection
	batchSize  int
}

// NewDocumentIterator creates a new document iterator.
// A batchSize below 1 uses DefaultBatchSize.
func NewDocumentIterator(collection storage.Collection, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		collection: collection,
		batchSize:  batchSize,
	}
}

// ForEach calls fn for each batch of documents, in id order.
// Iteration stops on the first error from fn. Context cancellation is
// checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	docs, err := it.collection.Documents(ctx)
	if err != nil {
		return err
	}

	batches, err := batch.Split(docs, it.batchSize)
	if err != nil {
		return err
	}
	for _, docs := range batches {
		if err := fn(docs); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
