package batch

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestChunk_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 10, 999, 1000, 1001, 2500} {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf("item-%d", i)
		}

		for _, size := range []int{1, 3, 10, 1000} {
			chunks, err := Chunk(items, size)
			if err != nil {
				t.Fatalf("Chunk(%d, %d) failed: %v", n, size, err)
			}

			wantChunks := (n + size - 1) / size
			if len(chunks) != wantChunks {
				t.Errorf("Chunk(%d, %d): expected %d chunks, got %d", n, size, wantChunks, len(chunks))
			}

			var joined []string
			for i, c := range chunks {
				if len(c) == 0 || len(c) > size {
					t.Errorf("Chunk(%d, %d): chunk %d has %d items", n, size, i, len(c))
				}
				if i < len(chunks)-1 && len(c) != size {
					t.Errorf("Chunk(%d, %d): non-final chunk %d has %d items", n, size, i, len(c))
				}
				joined = append(joined, c...)
			}

			if !slices.Equal(joined, items) && !(n == 0 && len(joined) == 0) {
				t.Errorf("Chunk(%d, %d): concatenation does not reproduce input", n, size)
			}
		}
	}
}

func TestChunk_Boundary(t *testing.T) {
	items := make([]int, 2500)
	chunks, err := Chunk(items, 1000)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[2]) != 500 {
		t.Errorf("expected last chunk of 500, got %d", len(chunks[2]))
	}
}

func TestChunk_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Chunk([]int{1, 2}, size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Chunk(size=%d): expected ErrInvalidSize, got %v", size, err)
		}
	}
}
