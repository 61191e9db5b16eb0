// Package config loads command line configuration from defaults, a config
// file, BPE_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/born-ml/bpe/internal/bpe"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths PathsConfig `mapstructure:"paths"`
	Train TrainConfig `mapstructure:"train"`
	Log   LogConfig   `mapstructure:"log"`
}

type PathsConfig struct {
	Corpus string `mapstructure:"corpus"`
	Vocab  string `mapstructure:"vocab"`
}

type TrainConfig struct {
	VocabSize     int      `mapstructure:"vocab_size"`
	SpecialTokens []string `mapstructure:"special_tokens"`
	BoundaryToken string   `mapstructure:"boundary_token"`
	Chunks        int      `mapstructure:"chunks"`
	Workers       int      `mapstructure:"workers"`
	Parallel      bool     `mapstructure:"parallel"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"corpus":         "paths.corpus",
	"vocab":          "paths.vocab",
	"vocab-size":     "train.vocab_size",
	"special-tokens": "train.special_tokens",
	"boundary-token": "train.boundary_token",
	"chunks":         "train.chunks",
	"workers":        "train.workers",
	"parallel":       "train.parallel",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Corpus: "",
			Vocab:  "tokenizer.bpe",
		},
		Train: TrainConfig{
			VocabSize:     10000,
			SpecialTokens: []string{"<|endoftext|>"},
			BoundaryToken: "",
			Chunks:        8,
			Workers:       8,
			Parallel:      true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("corpus", defaults.Paths.Corpus, "Path to the training corpus")
	fs.String("vocab", defaults.Paths.Vocab, "Path to the .bpe vocabulary file")
	fs.Int("vocab-size", defaults.Train.VocabSize, "Target vocabulary size including bytes and special tokens")
	fs.StringSlice("special-tokens", defaults.Train.SpecialTokens, "Special tokens, comma separated")
	fs.String("boundary-token", defaults.Train.BoundaryToken, "Token the corpus is split on for parallel counting (default: first special token)")
	fs.Int("chunks", defaults.Train.Chunks, "Desired number of corpus chunks")
	fs.Int("workers", defaults.Train.Workers, "Maximum number of counting workers")
	fs.Bool("parallel", defaults.Train.Parallel, "Count chunks in parallel")
	fs.String("log-level", defaults.Log.Level, "Log level: debug, info, warn, error")
	fs.String("log-format", defaults.Log.Format, "Log format: text or json")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("BPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("bpe")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting as a *bpe.ConfigError.
func (c Config) Validate() error {
	if c.Train.VocabSize < bpe.NumBytes {
		return &bpe.ConfigError{
			Field:   "train.vocab_size",
			Details: fmt.Sprintf("must be at least %d, got %d", bpe.NumBytes, c.Train.VocabSize),
		}
	}
	if c.Train.Chunks < 1 {
		return &bpe.ConfigError{Field: "train.chunks", Details: fmt.Sprintf("must be positive, got %d", c.Train.Chunks)}
	}
	if c.Train.Workers < 0 {
		return &bpe.ConfigError{Field: "train.workers", Details: fmt.Sprintf("must not be negative, got %d", c.Train.Workers)}
	}
	if err := bpe.ValidateSpecialTokens(c.Train.SpecialTokens); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return &bpe.ConfigError{Field: "log.format", Details: fmt.Sprintf("unknown format %q (want text or json)", c.Log.Format)}
	}
	return nil
}

// ParseLogLevel maps a level name to its slog level. Matching ignores case and
// surrounding spaces.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, &bpe.ConfigError{
			Field:   "log.level",
			Details: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", s),
		}
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.corpus", c.Paths.Corpus)
	v.SetDefault("paths.vocab", c.Paths.Vocab)
	v.SetDefault("train.vocab_size", c.Train.VocabSize)
	v.SetDefault("train.special_tokens", c.Train.SpecialTokens)
	v.SetDefault("train.boundary_token", c.Train.BoundaryToken)
	v.SetDefault("train.chunks", c.Train.Chunks)
	v.SetDefault("train.workers", c.Train.Workers)
	v.SetDefault("train.parallel", c.Train.Parallel)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

// bindFlags binds every registered flag to its configuration key. A flag only
// overrides the config file and environment when it is set explicitly.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("flag %s: %w", name, err)
		}
	}
	return nil
}
