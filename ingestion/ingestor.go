package ingestion

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"github.com/poiesic/kala/ai"
	"github.com/poiesic/kala/batch"
	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/progress"
	"github.com/poiesic/kala/storage"
)

// ProgressLabel is the label of the progress line written during ingestion.
const ProgressLabel = "Inserting batches"

// Ingestor writes record sets to collections in batches.
type Ingestor struct {
	store            storage.CollectionStore
	embedder         ai.Embedder
	embedConcurrency int
	pooled           *pooledEmbedder
	upsert           bool
	progress         io.Writer
	logger           *slog.Logger
}

// Result summarizes a completed ingestion run.
type Result struct {
	// Collection is the collection the records were written to.
	Collection *core.Collection

	// Records is the number of records written.
	Records int

	// Batches is the number of batches written.
	Batches int
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// WithProgress sets where the progress line is written.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(i *Ingestor) error {
		if w == nil {
			w = io.Discard
		}
		i.progress = w
		return nil
	}
}

// WithEmbedder attaches an embedder; each record's title is embedded and
// stored with the document.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(i *Ingestor) error {
		i.embedder = embedder
		return nil
	}
}

// WithEmbedConcurrency sets how many embedding requests may run at once for
// a single batch. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithEmbedConcurrency(n int) Option {
	return func(i *Ingestor) error {
		if n < 1 {
			n = 1
		}
		i.embedConcurrency = n
		return nil
	}
}

// WithUpsert makes ingestion overwrite records whose id is already stored.
// By default such records fail the batch with storage.ErrDuplicateKey.
func WithUpsert(upsert bool) Option {
	return func(i *Ingestor) error {
		i.upsert = upsert
		return nil
	}
}

// NewIngestor creates an Ingestor writing to store.
func NewIngestor(store storage.CollectionStore, opts ...Option) (*Ingestor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	i := &Ingestor{
		store:            store,
		embedConcurrency: max(runtime.NumCPU()/2, 1),
		progress:         io.Discard,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	i.logger = i.logger.With("component", "ingestor")

	// Create the pool after options are applied so it gets the final size
	if i.embedder != nil {
		pooled, err := newPooledEmbedder(i.embedder, i.embedConcurrency, i.logger)
		if err != nil {
			return nil, err
		}
		i.pooled = pooled
	}

	return i, nil
}

// Ingest writes rs to the named collection, creating the collection if it
// does not exist. Records are written in batches of batchSize, in order.
//
// The batch size and the schema are checked before the collection is opened.
// A failed write returns a *core.StoreWriteError carrying the 1-based index
// of the failed batch; later batches are not attempted. Cancelling ctx stops
// the run before the next batch.
func (i *Ingestor) Ingest(ctx context.Context, collectionName string, rs *core.RecordSet, batchSize int) (*Result, error) {
	if rs == nil {
		return nil, ErrRecordSetRequired
	}
	batches, err := batch.Split(rs.Records, batchSize)
	if err != nil {
		return nil, err
	}
	if err := core.RequireFields(rs, core.FieldID, core.FieldTitle, core.FieldCategory, core.FieldSubCategory); err != nil {
		return nil, err
	}

	var collOpts []storage.CollectionOption
	if i.pooled != nil {
		collOpts = append(collOpts, storage.WithEmbeddingFunction(i.pooled))
	}
	collection, err := i.store.OpenCollection(ctx, collectionName, collOpts...)
	if err != nil {
		return nil, err
	}

	totalBatches := batch.Count(rs.Len(), batchSize)
	logger := i.logger.With("collection", collectionName)
	logger.Info("ingesting records",
		"records", rs.Len(),
		"batch_size", batchSize,
		"batches", totalBatches,
		"upsert", i.upsert)

	tracker := progress.NewTracker(i.progress, totalBatches, 1, ProgressLabel, "batches")
	tracker.Start()
	defer tracker.Finish()

	write := collection.AddRecords
	if i.upsert {
		write = collection.Upsert
	}

	result := &Result{Collection: collection.Info()}
	for k, records := range batches {
		if err := ctx.Err(); err != nil {
			logger.Warn("ingestion cancelled", "batches_written", result.Batches, "err", err)
			return nil, err
		}

		ids, documents, metadatas := project(records)
		if err := write(ctx, ids, documents, metadatas); err != nil {
			logger.Error("batch write failed", "batch", k+1, "of", totalBatches, "err", err)
			return nil, &core.StoreWriteError{Collection: collectionName, Batch: k + 1, Err: err}
		}

		result.Batches++
		result.Records += len(records)
		tracker.Increment(1)
	}

	logger.Info("ingestion complete", "records", result.Records, "batches", result.Batches)
	return result, nil
}

// Release releases the embedding worker pool.
// The ingestor should not be used after calling Release.
func (i *Ingestor) Release() {
	if i.pooled != nil {
		i.pooled.release()
	}
}

// project splits records into the parallel arrays a collection write takes.
func project(records []core.Record) (ids, documents []string, metadatas []core.Metadata) {
	ids = make([]string, len(records))
	documents = make([]string, len(records))
	metadatas = make([]core.Metadata, len(records))
	for k, record := range records {
		ids[k] = record.ID
		documents[k] = record.Title
		metadatas[k] = record.Metadata()
	}
	return ids, documents, metadatas
}
