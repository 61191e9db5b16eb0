package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/bpe/internal/serialization"
	"github.com/born-ml/bpe/internal/trainer"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [corpus]",
		Short: "Learn a vocabulary from a text corpus and write it to --vocab",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			corpusPath := cfg.Paths.Corpus
			if len(args) == 1 {
				corpusPath = args[0]
			}
			if corpusPath == "" {
				return fmt.Errorf("no corpus given (pass a path or use --corpus)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runTrain(ctx, cmd, corpusPath, cfg.Paths.Vocab, trainer.Options{
				VocabSize:     cfg.Train.VocabSize,
				SpecialTokens: cfg.Train.SpecialTokens,
				BoundaryToken: cfg.Train.BoundaryToken,
				Chunks:        cfg.Train.Chunks,
				Parallel:      parallelConfig(cfg),
				Logger:        slog.Default(),
			})
		},
	}

	return cmd
}

func runTrain(ctx context.Context, cmd *cobra.Command, corpusPath, out string, opts trainer.Options) error {
	start := time.Now()
	params, err := trainer.TrainFile(ctx, corpusPath, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := map[string]string{
		"corpus":        corpusPath,
		"requested":     strconv.Itoa(opts.VocabSize),
		"training_time": elapsed.Round(time.Millisecond).String(),
	}
	if err := serialization.WriteFile(out, params, meta); err != nil {
		return err
	}
	slog.Info("wrote vocabulary", "path", out)

	_, err = fmt.Fprintf(cmd.OutOrStdout(),
		"trained %d merges (vocab size %d, special tokens [%s]) in %s\nwrote %s\n",
		params.NumMerges(), params.VocabSize(), strings.Join(params.SpecialTokens(), " "),
		elapsed.Round(time.Millisecond), out)
	return err
}
