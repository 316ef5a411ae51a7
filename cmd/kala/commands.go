package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/poiesic/kala"
	"github.com/poiesic/kala/config"
	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/dataset"
	"github.com/poiesic/kala/ingestion"
	"github.com/poiesic/kala/normalize"
	"github.com/poiesic/kala/reembed"
	"github.com/poiesic/kala/search"
	"github.com/urfave/cli/v2"
)

// openDatabase opens the store named by cfg. The embedder is only created
// when withEmbedder is set.
func openDatabase(c *cli.Context, cfg *config.Config, withEmbedder bool) (*kala.Database, error) {
	normalizer, err := normalizerFor(cfg.Ingest.Normalizer)
	if err != nil {
		return nil, err
	}

	opts := []kala.DatabaseOption{kala.WithNormalizer(normalizer)}
	if withEmbedder {
		embedder, err := newEmbedder(embeddingConfig(c, cfg))
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
		opts = append(opts, kala.WithEmbedder(embedder))
	}

	db, err := kala.NewDatabase(cfg.Store.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Store.Path, err)
	}
	return db, nil
}

func normalizerFor(name string) (normalize.Normalizer, error) {
	switch name {
	case "", config.NormalizerPersian:
		return normalize.NewPersian(), nil
	case config.NormalizerNone:
		return normalize.Identity, nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q", name)
	}
}

func ingestCommand(c *cli.Context) error {
	cfg := appConfig(c)
	if c.IsSet("normalizer") {
		cfg.Ingest.Normalizer = c.String("normalizer")
	}
	if c.IsSet("delimiter") {
		delimiter := c.String("delimiter")
		if utf8.RuneCountInString(delimiter) != 1 {
			return fmt.Errorf("--delimiter must be a single character")
		}
		cfg.Ingest.Delimiter = delimiter
	}

	p := newPrompter(c.App.Reader, c.App.Writer)

	data := cfg.Ingest.Data
	if c.IsSet("data") {
		data = c.String("data")
	}
	if data == "" {
		var err error
		if data, err = p.ask("Enter your data directory: ", "data"); err != nil {
			return err
		}
	}

	collection := cfg.Ingest.Collection
	if c.IsSet("collection") {
		collection = c.String("collection")
	}
	if collection == "" {
		var err error
		if collection, err = p.ask("Enter the collection name: ", "collection"); err != nil {
			return err
		}
	}

	batchSize := cfg.Ingest.BatchSize
	if c.IsSet("batch-size") {
		batchSize = c.Int("batch-size")
	}
	if batchSize == 0 && !c.IsSet("batch-size") {
		var err error
		if batchSize, err = p.askInt("Enter the batch size: ", "batch size"); err != nil {
			return err
		}
	}
	if err := core.ValidateBatchSize(batchSize); err != nil {
		return err
	}

	embed := cfg.Embedding.Enabled
	if c.IsSet("embed") {
		embed = c.Bool("embed")
	}
	upsert := cfg.Ingest.Upsert
	if c.IsSet("upsert") {
		upsert = c.Bool("upsert")
	}

	db, err := openDatabase(c, cfg, embed)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithProgress(c.App.ErrWriter),
		ingestion.WithUpsert(upsert),
	}
	concurrency := cfg.Embedding.Concurrency
	if c.IsSet("embed-concurrency") {
		concurrency = c.Int("embed-concurrency")
	}
	if embed && concurrency > 0 {
		opts = append(opts, ingestion.WithEmbedConcurrency(concurrency))
	}

	start := time.Now()
	result, err := db.IngestFile(c.Context, data, collection, batchSize,
		[]dataset.Option{dataset.WithComma(cfg.Delimiter())}, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Ingested %d records into %q in %d batches (%s)\n",
		result.Records, result.Collection.Name, result.Batches, time.Since(start).Round(time.Millisecond))
	return nil
}

func queryCommand(c *cli.Context) error {
	cfg := appConfig(c)
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("query text is required")
	}
	collection, err := collectionName(c, cfg)
	if err != nil {
		return err
	}

	db, err := openDatabase(c, cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(c.Context, collection,
		search.WithMinSimilarity(float32(c.Float64("min-similarity"))))
	if err != nil {
		return err
	}

	results, err := searcher.Query(c.Context, text, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "No results")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tTITLE\tCATEGORY")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n",
			r.Score, r.Document.ID, r.Document.Content, r.Document.Metadata[core.FieldCategory])
	}
	return w.Flush()
}

func countCommand(c *cli.Context) error {
	cfg := appConfig(c)
	collection, err := collectionName(c, cfg)
	if err != nil {
		return err
	}

	db, err := openDatabase(c, cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	coll, err := db.Collection(c.Context, collection)
	if err != nil {
		return err
	}
	n, err := coll.Count(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, n)
	return nil
}

func collectionsCommand(c *cli.Context) error {
	cfg := appConfig(c)
	db, err := openDatabase(c, cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	collections, err := db.Store().ListCollections(c.Context)
	if err != nil {
		return err
	}
	if len(collections) == 0 {
		fmt.Fprintln(c.App.Writer, "No collections")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUUID\tCREATED\tDOCUMENTS")
	for _, info := range collections {
		coll, err := db.Store().OpenCollection(c.Context, info.Name)
		if err != nil {
			return err
		}
		n, err := coll.Count(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", info.Name, info.UUID, info.CreatedAt.Format(time.RFC3339), n)
	}
	return w.Flush()
}

func reembedCommand(c *cli.Context) error {
	cfg := appConfig(c)
	collection, err := collectionName(c, cfg)
	if err != nil {
		return err
	}

	rcfg := reembed.DefaultConfig()
	if cfg.Reembed.BatchSize > 0 {
		rcfg.BatchSize = cfg.Reembed.BatchSize
	}
	if cfg.Reembed.MaxRetries > 0 {
		rcfg.MaxRetries = cfg.Reembed.MaxRetries
	}
	if rcfg.RetryDelay, err = cfg.RetryDelay(); err != nil {
		return err
	}
	if c.IsSet("batch-size") {
		rcfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("max-retries") {
		rcfg.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		rcfg.RetryDelay = c.Duration("retry-delay")
	}
	rcfg.ReportInterval = c.Int("report-interval")

	if rcfg.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if rcfg.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if rcfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c, cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := db.NewReembedder(c.Context, collection, rcfg, c.App.Writer)
	if err != nil {
		return err
	}
	_, err = r.Run(c.Context)
	return err
}

func configInitCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = "kala.toml"
	}
	if !c.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	cfg := config.Default()
	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func collectionName(c *cli.Context, cfg *config.Config) (string, error) {
	if c.IsSet("collection") {
		return c.String("collection"), nil
	}
	if cfg.Ingest.Collection != "" {
		return cfg.Ingest.Collection, nil
	}
	return "", fmt.Errorf("--collection is required")
}
