package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/born-ml/bpe/internal/bpe"
)

// LookaheadSize is how many bytes are scanned at a time while searching for the
// boundary token.
const LookaheadSize = 4096

// FindChunkBoundaries splits src into at most desiredChunks byte ranges that can
// be counted independently.
//
// Every interior boundary is moved forward to the next occurrence of token, or
// to the end of the corpus if there is none, so no range cuts through a token.
// The result is sorted and free of duplicates, starts at 0 and ends at
// src.Size(); when snapped boundaries coincide fewer ranges are returned. An
// empty token yields a single range.
func FindChunkBoundaries(src Source, desiredChunks int, token []byte) ([]int64, error) {
	if desiredChunks < 1 {
		return nil, &bpe.ConfigError{
			Field:   "chunks",
			Details: fmt.Sprintf("need at least one chunk, got %d", desiredChunks),
		}
	}

	size := src.Size()
	if len(token) == 0 {
		return slices.Compact([]int64{0, size}), nil
	}

	chunkSize := size / int64(desiredChunks)
	boundaries := make([]int64, desiredChunks+1)
	for i := range boundaries {
		boundaries[i] = int64(i) * chunkSize
	}
	boundaries[desiredChunks] = size

	// Windows overlap by len(token)-1 bytes so a token straddling two of them is
	// still seen whole.
	buf := make([]byte, LookaheadSize+len(token)-1)
	for i := 1; i < desiredChunks; i++ {
		pos, err := findToken(src, boundaries[i], token, buf)
		if err != nil {
			return nil, err
		}
		boundaries[i] = pos
	}

	slices.Sort(boundaries)
	return slices.Compact(boundaries), nil
}

// findToken returns the offset of the first token at or after start, or the
// corpus size if there is none.
func findToken(src Source, start int64, token, buf []byte) (int64, error) {
	size := src.Size()
	for pos := start; pos < size; pos += LookaheadSize {
		n, err := src.ReadAt(buf, pos)
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("failed to read corpus at offset %d: %w", pos, err)
		}
		if i := bytes.Index(buf[:n], token); i >= 0 {
			return pos + int64(i), nil
		}
		if n < len(buf) {
			break
		}
	}
	return size, nil
}
