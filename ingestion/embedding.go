package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/kala/ai"
	"github.com/poiesic/kala/storage"
)

// pooledEmbedder fans one EmbedTexts call out over a worker pool. The texts
// are split into at most pool-capacity contiguous chunks and the vectors are
// reassembled in input order.
type pooledEmbedder struct {
	embedder ai.Embedder
	pool     *ants.Pool
	logger   *slog.Logger
}

var _ storage.EmbeddingFunction = (*pooledEmbedder)(nil)

func newPooledEmbedder(embedder ai.Embedder, size int, logger *slog.Logger) (*pooledEmbedder, error) {
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &pooledEmbedder{
		embedder: embedder,
		pool:     pool,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

// EmbedTexts implements storage.EmbeddingFunction.
func (pe *pooledEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	workers := min(pe.pool.Cap(), len(texts))
	chunkSize := (len(texts) + workers - 1) / workers
	chunks := (len(texts) + chunkSize - 1) / chunkSize

	results := make([][][]float32, chunks)
	errs := make([]error, chunks)

	var wg sync.WaitGroup
	for k := range chunks {
		start := k * chunkSize
		end := min(start+chunkSize, len(texts))
		chunk := texts[start:end]

		wg.Add(1)
		err := pe.pool.Submit(func() {
			defer wg.Done()
			vectors, err := pe.embedder.EmbedTexts(ctx, chunk)
			if err == nil && len(vectors) != len(chunk) {
				err = fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunk), len(vectors))
			}
			results[k], errs[k] = vectors, err
		})
		if err != nil {
			wg.Done()
			errs[k] = err
		}
	}
	wg.Wait()

	embeddings := make([][]float32, 0, len(texts))
	for k := range chunks {
		if errs[k] != nil {
			pe.logger.Error("error generating embeddings", "chunk", k, "err", errs[k])
			return nil, errs[k]
		}
		embeddings = append(embeddings, results[k]...)
	}

	pe.logger.Debug("generated embeddings", "texts", len(texts), "chunks", chunks)
	return embeddings, nil
}

func (pe *pooledEmbedder) release() {
	pe.pool.Release()
}
