// Package batch splits ordered inputs into bounded-size groups.
package batch

import (
	"errors"
	"slices"
)

// ErrInvalidSize is returned when the requested chunk size is not positive.
var ErrInvalidSize = errors.New("batch: size must be positive")

// Chunk splits items into consecutive groups of at most size elements.
// The last group may be shorter. Groups share the backing array of items.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	chunks := make([][]T, 0, Count(len(items), size))
	for c := range slices.Chunk(items, size) {
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// Count returns the number of chunks n items split into. size must be positive.
func Count(n, size int) int {
	return (n + size - 1) / size
}
