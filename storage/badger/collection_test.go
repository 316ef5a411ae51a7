package badger

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embedFunc func(ctx context.Context, texts []string) ([][]float32, error)

func (f embedFunc) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

// lengthEmbedder maps each text to a 2-d vector derived from its length.
var lengthEmbedder = embedFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
})

func openTestCollection(t *testing.T, opts ...storage.CollectionOption) storage.Collection {
	t.Helper()
	coll, err := newTestStore(t).OpenCollection(context.Background(), "products", opts...)
	require.NoError(t, err)
	return coll
}

func TestAddRecords(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	err := coll.AddRecords(ctx,
		[]string{"1", "2"},
		[]string{"first", "second"},
		[]core.Metadata{
			{core.FieldCategory: "books", core.FieldSubCategory: "novel"},
			{core.FieldCategory: "toys", core.FieldSubCategory: ""},
		})
	require.NoError(t, err)

	docs, err := coll.Get(ctx, "2", "1", "missing")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "2", docs[0].ID)
	assert.Equal(t, "second", docs[0].Content)
	assert.Equal(t, core.Metadata{core.FieldCategory: "toys", core.FieldSubCategory: ""}, docs[0].Metadata)
	assert.Empty(t, docs[0].Vector)
	assert.False(t, docs[0].InsertedAt.IsZero())

	assert.Equal(t, "1", docs[1].ID)
	assert.Equal(t, "novel", docs[1].Metadata[core.FieldSubCategory])
}

func TestAddRecords_Empty(t *testing.T) {
	coll := openTestCollection(t)
	require.NoError(t, coll.AddRecords(context.Background(), nil, nil, nil))
}

func TestAddRecords_LengthMismatch(t *testing.T) {
	coll := openTestCollection(t)
	err := coll.AddRecords(context.Background(), []string{"1", "2"}, []string{"a"}, []core.Metadata{{}, {}})
	assert.ErrorIs(t, err, storage.ErrLengthMismatch)
}

func TestAddRecords_EmptyID(t *testing.T) {
	coll := openTestCollection(t)
	err := coll.AddRecords(context.Background(), []string{""}, []string{"a"}, []core.Metadata{{}})
	assert.ErrorIs(t, err, core.ErrEmptyDocumentID)
}

func TestAddRecords_DuplicateInRequest(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	err := coll.AddRecords(ctx, []string{"1", "1"}, []string{"a", "b"}, []core.Metadata{{}, {}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAddRecords_ExistingIDRejected(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	require.NoError(t, coll.AddRecords(ctx, []string{"1"}, []string{"original"}, []core.Metadata{{}}))

	err := coll.AddRecords(ctx, []string{"2", "1"}, []string{"new", "replacement"}, []core.Metadata{{}, {}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Nothing from the rejected call is written
	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	docs, err := coll.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "original", docs[0].Content)
}

func TestAddRecords_ExistingIDSkipsEmbedding(t *testing.T) {
	ctx := context.Background()
	calls := 0
	coll := openTestCollection(t, storage.WithEmbeddingFunction(embedFunc(
		func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			return lengthEmbedder(ctx, texts)
		})))

	require.NoError(t, coll.AddRecords(ctx, []string{"1"}, []string{"original"}, []core.Metadata{{}}))
	require.Equal(t, 1, calls)

	err := coll.AddRecords(ctx, []string{"2", "1"}, []string{"new", "replacement"}, []core.Metadata{{}, {}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	assert.Equal(t, 1, calls)

	require.NoError(t, coll.Upsert(ctx, []string{"2", "1"}, []string{"new", "replacement"}, []core.Metadata{{}, {}}))
	assert.Equal(t, 2, calls)
}

// A batch of this size exceeds what badger accepts in one transaction.
func TestAddRecords_LargeBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large batch in short mode")
	}
	ctx := context.Background()
	coll := openTestCollection(t)

	const n = 60000
	title := strings.Repeat("کفش ورزشی مردانه ", 4)
	ids := make([]string, n)
	documents := make([]string, n)
	metadatas := make([]core.Metadata, n)
	for i := range n {
		ids[i] = strconv.Itoa(i)
		documents[i] = title + ids[i]
		metadatas[i] = core.Metadata{core.FieldCategory: "پوشاک", core.FieldSubCategory: "کفش"}
	}

	require.NoError(t, coll.AddRecords(ctx, ids, documents, metadatas))

	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	docs, err := coll.Get(ctx, "0", strconv.Itoa(n-1))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, title+"0", docs[0].Content)
	assert.Equal(t, "کفش", docs[1].Metadata[core.FieldSubCategory])

	// Every id now exists, so a second call is rejected before writing
	err = coll.AddRecords(ctx, ids, documents, metadatas)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	require.NoError(t, coll.AddRecords(ctx, []string{"1"}, []string{"original"}, []core.Metadata{{"k": "v1"}}))
	before, err := coll.Get(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, coll.Upsert(ctx, []string{"1", "2"}, []string{"replacement", "new"}, []core.Metadata{{"k": "v2"}, {}}))

	docs, err := coll.Get(ctx, "1", "2")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "replacement", docs[0].Content)
	assert.Equal(t, "v2", docs[0].Metadata["k"])
	assert.True(t, docs[0].InsertedAt.Equal(before[0].InsertedAt))
	assert.Equal(t, "new", docs[1].Content)
}

func TestAddRecords_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coll := openTestCollection(t)
	err := coll.AddRecords(ctx, []string{"1"}, []string{"a"}, []core.Metadata{{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddRecords_WithEmbeddingFunction(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t, storage.WithEmbeddingFunction(lengthEmbedder))

	require.NoError(t, coll.AddRecords(ctx, []string{"1"}, []string{"abc"}, []core.Metadata{{}}))

	docs, err := coll.Get(ctx, "1")
	require.NoError(t, err)
	require.Len(t, docs[0].Vector, 2)
	assert.InDelta(t, 3/3.1622776, docs[0].Vector[0], 1e-5)
	assert.InDelta(t, 1/3.1622776, docs[0].Vector[1], 1e-5)
}

func TestAddRecords_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("embedding service down")
	coll := openTestCollection(t, storage.WithEmbeddingFunction(embedFunc(
		func(context.Context, []string) ([][]float32, error) { return nil, boom })))

	err := coll.AddRecords(ctx, []string{"1"}, []string{"abc"}, []core.Metadata{{}})
	assert.ErrorIs(t, err, boom)

	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAddRecords_EmbeddingCountMismatch(t *testing.T) {
	coll := openTestCollection(t, storage.WithEmbeddingFunction(embedFunc(
		func(context.Context, []string) ([][]float32, error) { return [][]float32{{1}}, nil })))

	err := coll.AddRecords(context.Background(), []string{"1", "2"}, []string{"a", "b"}, []core.Metadata{{}, {}})
	assert.ErrorIs(t, err, storage.ErrEmbeddingMismatch)
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a, err := store.OpenCollection(ctx, "first")
	require.NoError(t, err)
	b, err := store.OpenCollection(ctx, "second")
	require.NoError(t, err)

	require.NoError(t, a.AddRecords(ctx, []string{"1", "2"}, []string{"a", "b"}, []core.Metadata{{}, {}}))
	require.NoError(t, b.AddRecords(ctx, []string{"1"}, []string{"c"}, []core.Metadata{{}}))

	countA, err := a.Count(ctx)
	require.NoError(t, err)
	countB, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, countA)
	assert.Equal(t, 1, countB)

	docs, err := b.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "c", docs[0].Content)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	require.NoError(t, coll.AddRecords(ctx, []string{"b", "a", "c"}, []string{"2", "1", "3"}, []core.Metadata{{}, {}, {}}))

	docs, err := coll.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
	assert.Equal(t, "c", docs[2].ID)
}

func TestUpdateDocuments(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)
	require.NoError(t, coll.AddRecords(ctx, []string{"1"}, []string{"a"}, []core.Metadata{{"k": "v"}}))

	docs, err := coll.Get(ctx, "1")
	require.NoError(t, err)
	doc := docs[0]
	doc.Vector = []float32{1, 0}
	require.NoError(t, coll.UpdateDocuments(ctx, doc))

	docs, err = coll.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, docs[0].Vector)
	assert.Equal(t, "v", docs[0].Metadata["k"])
	assert.False(t, docs[0].UpdatedAt.Before(docs[0].InsertedAt))
}

func TestUpdateDocuments_NotFound(t *testing.T) {
	coll := openTestCollection(t)
	err := coll.UpdateDocuments(context.Background(), &core.Document{ID: "missing", Content: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)
	require.NoError(t, coll.AddRecords(ctx,
		[]string{"x", "y", "xy", "none"},
		[]string{"x", "y", "xy", "none"},
		[]core.Metadata{{}, {}, {}, {}}))

	docs, err := coll.Get(ctx, "x", "y", "xy")
	require.NoError(t, err)
	docs[0].Vector = []float32{1, 0}
	docs[1].Vector = []float32{0, 1}
	docs[2].Vector = core.NormalizeVector([]float32{1, 1})
	require.NoError(t, coll.UpdateDocuments(ctx, docs...))

	results, err := coll.FindSimilar(ctx, []float32{1, 0}, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "x", results[0].Document.ID)
	assert.Equal(t, "xy", results[1].Document.ID)
	assert.Equal(t, "y", results[2].Document.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	results, err = coll.FindSimilar(ctx, []float32{1, 0}, 0.5, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = coll.FindSimilar(ctx, []float32{1, 0}, 0, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "x", results[0].Document.ID)
}

func TestFindSimilar_NoVectors(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)
	require.NoError(t, coll.AddRecords(ctx, []string{"1"}, []string{"a"}, []core.Metadata{{}}))

	results, err := coll.FindSimilar(ctx, []float32{1, 0}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInfo_ReturnsCopy(t *testing.T) {
	coll := openTestCollection(t)
	info := coll.Info()
	info.Name = "changed"
	assert.Equal(t, "products", coll.Info().Name)
}
