package badger

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/storage"
)

// Collection implements storage.Collection for BadgerDB.
type Collection struct {
	backend *Backend
	info    *core.Collection
	embed   storage.EmbeddingFunction
	logger  *slog.Logger
}

var _ storage.Collection = (*Collection)(nil)

// Info returns a copy of the collection descriptor.
func (c *Collection) Info() *core.Collection {
	info := *c.info
	return &info
}

// AddRecords appends documents, rejecting ids that already exist.
func (c *Collection) AddRecords(ctx context.Context, ids, documents []string, metadatas []core.Metadata) error {
	return c.write(ctx, ids, documents, metadatas, false)
}

// Upsert writes documents, overwriting ids that already exist.
func (c *Collection) Upsert(ctx context.Context, ids, documents []string, metadatas []core.Metadata) error {
	return c.write(ctx, ids, documents, metadatas, true)
}

func (c *Collection) write(ctx context.Context, ids, documents []string, metadatas []core.Metadata, overwrite bool) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("%w: %d ids, %d documents, %d metadatas",
			storage.ErrLengthMismatch, len(ids), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: %w", core.ErrInvalidDocument, core.ErrEmptyDocumentID)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: id %q repeated in request", storage.ErrDuplicateKey, id)
		}
		seen[id] = struct{}{}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Check stored ids before paying for embeddings
	inserted, err := c.insertedAt(ids, overwrite)
	if err != nil {
		return err
	}

	vectors, err := c.vectors(ctx, documents)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = c.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for i, id := range ids {
			doc := &core.Document{
				ID:         id,
				Content:    documents[i],
				Metadata:   maps.Clone(metadatas[i]),
				InsertedAt: now,
				UpdatedAt:  now,
			}
			if vectors != nil {
				doc.Vector = vectors[i]
			}
			if t, found := inserted[id]; found {
				doc.InsertedAt = t
			}

			if err := wb.Set(makeDocumentKey(c.info.Id, id), storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug("wrote documents", "count", len(ids), "upsert", overwrite)
	return nil
}

// insertedAt returns the insertion time of every id already stored. Unless
// overwrite is set, any stored id fails the call with ErrDuplicateKey.
func (c *Collection) insertedAt(ids []string, overwrite bool) (map[string]time.Time, error) {
	inserted := make(map[string]time.Time)
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			existing, found, err := readValue(tx, makeDocumentKey(c.info.Id, id), storage.UnmarshalDocument)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			if !overwrite {
				return fmt.Errorf("%w: id %q already in collection %q", storage.ErrDuplicateKey, id, c.info.Name)
			}
			inserted[id] = existing.InsertedAt
		}
		return nil
	}, false)
	return inserted, err
}

// vectors runs the embedding function, if any, and unit-normalizes its output.
func (c *Collection) vectors(ctx context.Context, documents []string) ([][]float32, error) {
	if c.embed == nil {
		return nil, nil
	}

	embeddings, err := c.embed.EmbedTexts(ctx, documents)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}
	if len(embeddings) != len(documents) {
		return nil, fmt.Errorf("%w: expected %d, received %d",
			storage.ErrEmbeddingMismatch, len(documents), len(embeddings))
	}

	for i := range embeddings {
		embeddings[i] = core.NormalizeVector(embeddings[i])
	}
	return embeddings, nil
}

// UpdateDocuments replaces existing documents.
func (c *Collection) UpdateDocuments(ctx context.Context, docs ...*core.Document) error {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}
	}

	existing, err := c.insertedAt(documentIDs(docs), true)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if _, found := existing[doc.ID]; !found {
			return fmt.Errorf("%w: document %q", storage.ErrNotFound, doc.ID)
		}
	}

	now := time.Now().UTC()
	return c.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for _, doc := range docs {
			if doc.InsertedAt.IsZero() {
				doc.InsertedAt = existing[doc.ID]
			}
			doc.UpdatedAt = now

			if err := wb.Set(makeDocumentKey(c.info.Id, doc.ID), storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return nil
	})
}

func documentIDs(docs []*core.Document) []string {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids
}

// Get retrieves documents by id, skipping ids that don't exist.
func (c *Collection) Get(ctx context.Context, ids ...string) ([]*core.Document, error) {
	result := make([]*core.Document, 0, len(ids))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, found, err := readValue(tx, makeDocumentKey(c.info.Id, id), storage.UnmarshalDocument)
			if err != nil {
				return err
			}
			if found {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// Documents returns every document in the collection, ordered by id bytes.
func (c *Collection) Documents(ctx context.Context) ([]*core.Document, error) {
	var result []*core.Document
	err := c.scan(func(doc *core.Document) error {
		result = append(result, doc)
		return nil
	})
	return result, err
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, makeDocumentPrefix(c.info.Id), true, func(*badger.Item) error {
			count++
			return nil
		})
	}, false)
	return count, err
}

// FindSimilar scores every document with a vector by dot product against
// vector. Stored vectors are unit length, so for a unit query the score is
// the cosine similarity.
func (c *Collection) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	var results []*core.SearchResult
	err := c.scan(func(doc *core.Document) error {
		// Skip documents without embeddings
		if len(doc.Vector) == 0 {
			return nil
		}
		similarity := core.DotProduct(vector, doc.Vector)
		if similarity >= minSimilarity {
			results = append(results, &core.SearchResult{Document: doc, Score: similarity})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending; ties keep id order
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (c *Collection) scan(fn func(doc *core.Document) error) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, makeDocumentPrefix(c.info.Id), false, func(item *badger.Item) error {
			return item.Value(func(val []byte) error {
				doc, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				return fn(doc)
			})
		})
	}, false)
}
