// Package trainer runs the full training pipeline: parallel pretoken counting
// over a corpus followed by merge learning.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/born-ml/bpe/internal/bpe"
	"github.com/born-ml/bpe/internal/corpus"
	"github.com/born-ml/bpe/internal/parallel"
)

// Options configures a training run.
type Options struct {
	VocabSize     int
	SpecialTokens []string

	// BoundaryToken aligns the corpus ranges handed to counting workers.
	// Empty uses the first special token that cannot start inside another
	// special token; with none the corpus is counted as a single range.
	BoundaryToken string

	Chunks   int             // Desired number of ranges; 0 means corpus.DefaultChunks.
	Parallel parallel.Config // Worker pool used for counting.
	Logger   *slog.Logger    // Nil discards.
}

func (o Options) boundaryToken() string {
	if o.BoundaryToken != "" {
		return o.BoundaryToken
	}
	for _, s := range o.SpecialTokens {
		if splitSpecial(s, o.SpecialTokens) == "" {
			return s
		}
	}
	return ""
}

// splitSpecial returns the first special token an occurrence of token can
// start strictly inside of, or "" if there is none. A range boundary placed on
// such an occurrence would cut that special token in two.
func splitSpecial(token string, specials []string) string {
	for _, s := range specials {
		for i := 1; i < len(s); i++ {
			rest := s[i:]
			if strings.HasPrefix(rest, token) || strings.HasPrefix(token, rest) {
				return s
			}
		}
	}
	return ""
}

// Validate checks the options without touching any corpus.
func (o Options) Validate() error {
	if _, err := bpe.NumMergesFor(o.VocabSize, len(o.SpecialTokens)); err != nil {
		return err
	}
	if err := bpe.ValidateSpecialTokens(o.SpecialTokens); err != nil {
		return err
	}
	if o.BoundaryToken != "" {
		if s := splitSpecial(o.BoundaryToken, o.SpecialTokens); s != "" {
			return &bpe.ConfigError{
				Field:   "boundary_token",
				Details: fmt.Sprintf("%q can occur inside special token %q", o.BoundaryToken, s),
			}
		}
	}
	if o.Chunks < 0 {
		return &bpe.ConfigError{Field: "chunks", Details: fmt.Sprintf("must not be negative, got %d", o.Chunks)}
	}
	if o.Parallel.NumWorkers < 0 {
		return &bpe.ConfigError{
			Field:   "workers",
			Details: fmt.Sprintf("must not be negative, got %d", o.Parallel.NumWorkers),
		}
	}
	return nil
}

// Train learns a vocabulary from src.
//
// Configuration is validated before the corpus is read. Any counting failure
// aborts the run; running out of pairs early does not.
func Train(ctx context.Context, src corpus.Source, opts Options) (*bpe.Params, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	counts, err := corpus.Count(ctx, src, corpus.Options{
		Chunks:        opts.Chunks,
		BoundaryToken: opts.boundaryToken(),
		SpecialTokens: opts.SpecialTokens,
		Parallel:      opts.Parallel,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, err := bpe.Learn(counts, opts.VocabSize, opts.SpecialTokens, bpe.Options{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("failed to learn merges: %w", err)
	}

	log.Info("training finished",
		"vocab_size", params.VocabSize(), "merges", params.NumMerges(), "elapsed", time.Since(start))
	return params, nil
}

// TrainFile trains on the file at path, memory mapping it for the duration of
// the run.
func TrainFile(ctx context.Context, path string, opts Options) (*bpe.Params, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	f, err := corpus.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Train(ctx, f, opts)
}
