package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/born-ml/bpe/internal/parallel"
	"github.com/born-ml/bpe/internal/pretokenize"
)

// DefaultChunks is the number of ranges requested when Options.Chunks is zero.
const DefaultChunks = 8

// Options configures Count.
type Options struct {
	Chunks        int             // Desired number of byte ranges; 0 means DefaultChunks.
	BoundaryToken string          // Token ranges are aligned on; empty counts the corpus as one range.
	SpecialTokens []string        // Tokens kept whole by the pretokenizer.
	Parallel      parallel.Config // Worker pool for the ranges.
	Logger        *slog.Logger    // Nil discards.
}

// Count pretokenizes src and returns the corpus-wide pretoken frequencies.
//
// The corpus is cut into ranges on BoundaryToken, each range is counted by an
// independent worker, and the per-range maps are summed once every worker has
// finished. Any failure aborts the whole count.
func Count(ctx context.Context, src Source, opts Options) (pretokenize.Counts, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	pre, err := pretokenize.New(opts.SpecialTokens)
	if err != nil {
		return nil, err
	}

	chunks := opts.Chunks
	if chunks == 0 {
		chunks = DefaultChunks
	}
	boundaries, err := FindChunkBoundaries(src, chunks, []byte(opts.BoundaryToken))
	if err != nil {
		return nil, err
	}
	log.Debug("chunk boundaries", "requested", chunks, "ranges", len(boundaries)-1, "size", src.Size())

	start := time.Now()
	counts, err := CountRanges(ctx, src, boundaries, pre, opts.Parallel)
	if err != nil {
		return nil, err
	}

	log.Info("counted pretokens", "bytes", src.Size(), "ranges", len(boundaries)-1,
		"unique", len(counts), "total", counts.Total(), "elapsed", time.Since(start))

	return counts, nil
}

// CountRanges counts every range [boundaries[i], boundaries[i+1]) of src on the
// worker pool described by cfg and sums the results.
func CountRanges(
	ctx context.Context,
	src Source,
	boundaries []int64,
	pre *pretokenize.Pretokenizer,
	cfg parallel.Config,
) (pretokenize.Counts, error) {
	if len(boundaries) < 2 {
		return pretokenize.Counts{}, nil
	}

	parts, err := parallel.Map(ctx, len(boundaries)-1, cfg,
		func(_ context.Context, i int) (pretokenize.Counts, error) {
			text, err := readRange(src, boundaries[i], boundaries[i+1])
			if err != nil {
				return nil, err
			}
			return pre.Count(text)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to count corpus: %w", err)
	}

	return pretokenize.Reduce(parts...), nil
}

func readRange(src Source, start, end int64) (string, error) {
	if start < 0 || end < start || end > src.Size() {
		return "", fmt.Errorf("invalid corpus range [%d, %d) for size %d", start, end, src.Size())
	}

	buf := make([]byte, end-start)
	n, err := src.ReadAt(buf, start)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return "", fmt.Errorf("failed to read corpus range [%d, %d): %w", start, end, err)
	}
	return string(buf), nil
}
