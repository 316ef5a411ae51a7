package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/kala/ai/mock"
	"github.com/poiesic/kala/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestNewReembedder_Validation(t *testing.T) {
	coll := setupCollection(t, 0)

	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, nil)
	assert.ErrorIs(t, err, ErrCollectionRequired)

	_, err = NewReembedder(coll, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	r, err := NewReembedder(coll, mock.NewMockEmbedder(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), r.config)
}

func TestReembedder_Run(t *testing.T) {
	ctx := context.Background()
	coll := setupCollection(t, 10)
	embedder := &mock.MockEmbedder{Dimensions: 8}

	var buf bytes.Buffer
	r, err := NewReembedder(coll, embedder, testConfig(), &buf)
	require.NoError(t, err)

	processed, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, processed)
	assert.Equal(t, 4, embedder.CallCount(), "10 documents in batches of 3")

	docs, err := coll.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 10)
	for _, doc := range docs {
		require.Len(t, doc.Vector, 8, "document %s should have an embedding", doc.ID)
		assert.InDelta(t, 1.0, core.DotProduct(doc.Vector, doc.Vector), 1e-4)
		assert.InDeltaSlice(t, mock.Vector(doc.Content, 8), doc.Vector, 1e-6)
	}

	output := buf.String()
	assert.Contains(t, output, `Starting reembedding of 10 documents in "products"`)
	assert.Contains(t, output, "Reembedding: 10/10 (100.0%)")
	assert.Contains(t, output, "Reembedding complete. Processed 10 documents")
}

func TestReembedder_EmptyCollection(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var buf bytes.Buffer
	r, err := NewReembedder(setupCollection(t, 0), embedder, testConfig(), &buf)
	require.NoError(t, err)

	processed, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, embedder.CallCount())
	assert.Contains(t, buf.String(), "No documents found")
}

func TestReembedder_FailureKeepsEarlierBatches(t *testing.T) {
	ctx := context.Background()
	coll := setupCollection(t, 7)

	calls := 0
	embedder := &mock.MockEmbedder{Dimensions: 4}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("service down")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.Vector(text, 4)
		}
		return out, nil
	}

	r, err := NewReembedder(coll, embedder, testConfig(), nil)
	require.NoError(t, err)

	processed, err := r.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch")
	assert.Equal(t, 3, processed)

	docs, err := coll.Documents(ctx)
	require.NoError(t, err)
	withVectors := 0
	for _, doc := range docs {
		if len(doc.Vector) > 0 {
			withVectors++
		}
	}
	assert.Equal(t, 3, withVectors)
}

func TestReembedder_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewReembedder(setupCollection(t, 3), mock.NewMockEmbedder(), testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
