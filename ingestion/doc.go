// Package ingestion loads cleaned product records into a collection.
//
// Ingestion is two steps. The Cleaner deduplicates records by id (first
// occurrence wins) and normalizes the title and category text. The Ingestor
// then splits the cleaned set into fixed-size batches and writes them to a
// collection one batch at a time, reporting progress as each batch lands.
//
//	cleaner, _ := ingestion.NewCleaner(normalize.NewPersian())
//	cleaned, err := cleaner.Clean(records)
//
//	ingestor, _ := ingestion.NewIngestor(store, ingestion.WithProgress(os.Stderr))
//	defer ingestor.Release()
//	result, err := ingestor.Ingest(ctx, "products", cleaned, 500)
//
// Batches are written sequentially and never retried. A failed write stops
// the run with a *core.StoreWriteError naming the batch; batches written
// before it stay in the collection.
//
// When an embedder is configured, each batch's titles are embedded before
// the batch is written. The embedding calls for one batch are spread over a
// bounded worker pool and reassembled in input order.
package ingestion
