package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/kala/ai"
	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/normalize"
	"github.com/poiesic/kala/storage"
)

// Searcher runs text queries against one collection.
type Searcher struct {
	collection    storage.Collection
	embedder      ai.Embedder
	normalizer    normalize.Normalizer
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithNormalizer normalizes queries before they are embedded.
// Use the normalizer the collection was ingested with.
func WithNormalizer(normalizer normalize.Normalizer) Option {
	return func(s *Searcher) error {
		s.normalizer = normalizer
		return nil
	}
}

// WithMinSimilarity drops matches whose cosine similarity is below min.
// Default is 0.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(collection storage.Collection, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		collection: collection,
		embedder:   embedder,
		normalizer: normalize.Identity,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.normalizer == nil {
		s.normalizer = normalize.Identity
	}
	s.logger = s.logger.With("component", "searcher", "collection", collection.Info().Name)

	return s, nil
}

// Query returns up to maxHits documents matching text, best first.
func (s *Searcher) Query(ctx context.Context, text string, maxHits int) ([]*core.SearchResult, error) {
	return s.QueryWithMonitor(ctx, text, maxHits, nil)
}

// QueryWithMonitor is Query with callbacks at each stage of the search.
func (s *Searcher) QueryWithMonitor(ctx context.Context, text string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if maxHits < 1 {
		return nil, ErrInvalidMaxHits
	}

	monitor.Start(text)

	query := strings.TrimSpace(s.normalizer.Normalize(text))
	if query == "" {
		return nil, ErrEmptyQuery
	}
	monitor.AfterNormalization(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.collection.FindSimilar(ctx, core.NormalizeVector(embedding), s.minSimilarity, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.Document.ID
	}
	monitor.AfterSemanticSearch(ids)

	// Apply verbatim match boost
	for _, match := range matches {
		if containsAllQueryWords(match.Document.Content, query) {
			match.Score += VerbatimBoost
			monitor.VerbatimHit(match.Document)
		}
	}

	slices.SortStableFunc(matches, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	monitor.Finish(matches)

	s.logger.Debug("query complete", "query", query, "hits", len(matches))
	return matches, nil
}
