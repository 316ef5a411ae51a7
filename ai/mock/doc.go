// Package mock provides a test double for ai.Embedder.
//
// The mock lets tests run without an embedding service and gives them
// deterministic vectors.
//
//	embedder := mock.NewMockEmbedder()
//	vectors, err := embedder.EmbedTexts(ctx, []string{"a", "b"})
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
//	count := embedder.CallCount()
//
// By default vectors are unit length, derived from a hash of the text, so
// equal texts always produce equal vectors.
package mock
