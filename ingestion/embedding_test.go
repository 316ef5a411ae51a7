package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"testing"

	"github.com/poiesic/kala/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPooledEmbedder_PreservesOrder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			n, err := strconv.Atoi(text)
			if err != nil {
				return nil, err
			}
			out[i] = []float32{float32(n)}
		}
		return out, nil
	}

	for _, workers := range []int{1, 2, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			pe, err := newPooledEmbedder(embedder, workers, slog.Default())
			require.NoError(t, err)
			defer pe.release()

			texts := make([]string, 10)
			for i := range texts {
				texts[i] = strconv.Itoa(i)
			}

			vectors, err := pe.EmbedTexts(context.Background(), texts)
			require.NoError(t, err)
			require.Len(t, vectors, len(texts))
			for i, v := range vectors {
				assert.Equal(t, []float32{float32(i)}, v)
			}
		})
	}
}

func TestPooledEmbedder_Empty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	pe, err := newPooledEmbedder(embedder, 2, slog.Default())
	require.NoError(t, err)
	defer pe.release()

	vectors, err := pe.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, embedder.CallCount())
}

func TestPooledEmbedder_ResultMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	pe, err := newPooledEmbedder(embedder, 1, slog.Default())
	require.NoError(t, err)
	defer pe.release()

	_, err = pe.EmbedTexts(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding result mismatch")
}
