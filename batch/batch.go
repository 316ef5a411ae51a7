// Package batch splits ordered slices into fixed-size contiguous chunks.
package batch

import (
	"iter"

	"github.com/poiesic/kala/core"
)

// Count returns the number of batches of the given size needed to cover n items.
// It returns 0 for n == 0 and for sizes below 1.
func Count(n, size int) int {
	if n <= 0 || size < 1 {
		return 0
	}
	return (n + size - 1) / size
}

// Split returns a sequence of (index, batch) pairs covering items in order.
// Batch k holds items[k*size : min((k+1)*size, len(items))]. The sequence may be
// ranged over any number of times and always yields the same partition.
//
// Each batch is a sub-slice of items with its capacity capped at its length,
// so appending to a batch never overwrites the next one.
func Split[T any](items []T, size int) (iter.Seq2[int, []T], error) {
	if err := core.ValidateBatchSize(size); err != nil {
		return nil, err
	}

	return func(yield func(int, []T) bool) {
		for k, start := 0, 0; start < len(items); k, start = k+1, start+size {
			end := min(start+size, len(items))
			if !yield(k, items[start:end:end]) {
				return
			}
		}
	}, nil
}
