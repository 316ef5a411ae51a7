// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package kala

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/kala/ai"
	"github.com/poiesic/kala/ai/openai"
	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/dataset"
	"github.com/poiesic/kala/ingestion"
	"github.com/poiesic/kala/normalize"
	"github.com/poiesic/kala/reembed"
	"github.com/poiesic/kala/search"
	"github.com/poiesic/kala/storage"
	"github.com/poiesic/kala/storage/badger"
)

// ErrEmbeddingDisabled is returned by operations that need an embedder when
// the database was opened without one.
var ErrEmbeddingDisabled = errors.New("embedding is not configured")

// Database ties a collection store to the normalizer and optional embedder
// used to fill it, and builds the components that work on it.
type Database struct {
	backend    *badger.Backend
	store      *badger.Store
	embedder   ai.Embedder
	normalizer normalize.Normalizer
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	embedder   ai.Embedder
	normalizer normalize.Normalizer
	inMemory   bool
	logger     *slog.Logger
}

// WithAIConfig enables embeddings through an OpenAI-compatible service.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder enables embeddings with the given embedder.
// It takes precedence over WithAIConfig.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithNormalizer sets the text normalizer. Default is the Persian normalizer.
func WithNormalizer(normalizer normalize.Normalizer) DatabaseOption {
	return func(o *databaseOptions) {
		o.normalizer = normalizer
	}
}

// WithInMemory keeps all data in memory; the path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens (or creates) the store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.normalizer == nil {
		options.normalizer = normalize.NewPersian()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	embedder := options.embedder
	if embedder == nil && options.aiConfig != nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	return &Database{
		backend:    backend,
		store:      badger.NewCollectionStore(backend),
		embedder:   embedder,
		normalizer: options.normalizer,
		logger:     options.logger,
	}, nil
}

// Close closes the underlying store.
func (db *Database) Close() error {
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing collection store", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Store returns the collection store.
func (db *Database) Store() storage.CollectionStore {
	return db.store
}

// Embedder returns the configured embedder, or nil.
func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

// Collection opens an existing collection. It returns storage.ErrNotFound
// instead of creating a missing one.
func (db *Database) Collection(ctx context.Context, name string) (storage.Collection, error) {
	collections, err := db.store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		if c.Name == name {
			return db.store.OpenCollection(ctx, name)
		}
	}
	return nil, fmt.Errorf("%w: collection %q", storage.ErrNotFound, name)
}

// NewCleaner returns a Cleaner using the database's normalizer.
func (db *Database) NewCleaner(opts ...ingestion.CleanerOption) (*ingestion.Cleaner, error) {
	return ingestion.NewCleaner(db.normalizer, append([]ingestion.CleanerOption{ingestion.WithCleanerLogger(db.logger)}, opts...)...)
}

// NewIngestor returns an Ingestor writing to this database. When an
// embedder is configured, ingested titles are embedded.
func (db *Database) NewIngestor(opts ...ingestion.Option) (*ingestion.Ingestor, error) {
	defaults := []ingestion.Option{ingestion.WithLogger(db.logger)}
	if db.embedder != nil {
		defaults = append(defaults, ingestion.WithEmbedder(db.embedder))
	}
	return ingestion.NewIngestor(db.store, append(defaults, opts...)...)
}

// NewSearcher returns a Searcher over an existing collection. Queries are
// normalized the same way ingested titles are.
func (db *Database) NewSearcher(ctx context.Context, collection string, opts ...search.Option) (*search.Searcher, error) {
	if db.embedder == nil {
		return nil, ErrEmbeddingDisabled
	}
	coll, err := db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	defaults := []search.Option{search.WithLogger(db.logger), search.WithNormalizer(db.normalizer)}
	return search.NewSearcher(coll, db.embedder, append(defaults, opts...)...)
}

// NewReembedder returns a Reembedder for an existing collection.
func (db *Database) NewReembedder(ctx context.Context, collection string, cfg *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if db.embedder == nil {
		return nil, ErrEmbeddingDisabled
	}
	coll, err := db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	return reembed.NewReembedder(coll, db.embedder, cfg, progress)
}

// IngestFile loads a CSV file, cleans it, and ingests it into collection.
func (db *Database) IngestFile(ctx context.Context, path, collection string, batchSize int, csvOpts []dataset.Option, opts ...ingestion.Option) (*ingestion.Result, error) {
	rs, err := dataset.LoadCSV(path, csvOpts...)
	if err != nil {
		return nil, err
	}
	return db.Ingest(ctx, rs, collection, batchSize, opts...)
}

// Ingest cleans rs and ingests it into collection.
func (db *Database) Ingest(ctx context.Context, rs *core.RecordSet, collection string, batchSize int, opts ...ingestion.Option) (*ingestion.Result, error) {
	// Reject a bad batch size before doing any cleaning work
	if err := core.ValidateBatchSize(batchSize); err != nil {
		return nil, err
	}

	cleaner, err := db.NewCleaner()
	if err != nil {
		return nil, err
	}
	cleaned, err := cleaner.Clean(rs)
	if err != nil {
		return nil, err
	}

	ingestor, err := db.NewIngestor(opts...)
	if err != nil {
		return nil, err
	}
	defer ingestor.Release()

	return ingestor.Ingest(ctx, collection, cleaned, batchSize)
}
