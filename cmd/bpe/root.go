package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/born-ml/bpe/internal/config"
	"github.com/born-ml/bpe/internal/parallel"
	"github.com/born-ml/bpe/internal/serialization"
	"github.com/born-ml/bpe/internal/tokenizer"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg *config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "bpe",
		Short:         "Train and apply byte-level BPE tokenizers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			activeCfg = &loaded
			setupLogger(cmd.ErrOrStderr(), loaded.Log)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newTrainCmd())
	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(w io.Writer, cfg config.LogConfig) {
	lvl, err := config.ParseLogLevel(cfg.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg == nil {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return *activeCfg, nil
}

func parallelConfig(cfg config.Config) parallel.Config {
	pc := parallel.DefaultConfig()
	pc.Enabled = cfg.Train.Parallel
	pc.NumWorkers = cfg.Train.Workers
	return pc
}

// loadTokenizer opens the configured vocabulary file.
func loadTokenizer(cfg config.Config) (*tokenizer.BPETokenizer, *serialization.Vocabulary, error) {
	if cfg.Paths.Vocab == "" {
		return nil, nil, fmt.Errorf("no vocabulary file given (use --vocab)")
	}

	vocab, err := serialization.ReadFile(cfg.Paths.Vocab, serialization.ReaderOptions{})
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("loaded vocabulary", "path", cfg.Paths.Vocab,
		"vocab_size", vocab.Params.VocabSize(), "merges", vocab.Params.NumMerges())

	return tokenizer.NewBPETokenizer(vocab.Params), vocab, nil
}

// readInput returns args joined by spaces, or all of stdin when args is empty or
// a single "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// readTextFile reads path, or stdin when path is empty or "-".
func readTextFile(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		return readInput(cmd, nil)
	}
	//nolint:gosec // G304: path comes from the user by design
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
