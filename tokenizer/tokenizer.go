// Package tokenizer is the public API for training and using byte-level BPE
// tokenizers.
//
// This package wraps the internal trainer, tokenizer and serialization
// packages.
//
// Example usage:
//
//	import "github.com/born-ml/bpe/tokenizer"
//
//	// Train on a corpus file
//	params, err := tokenizer.TrainFile(ctx, "corpus.txt", tokenizer.TrainOptions{
//	    VocabSize:     10000,
//	    SpecialTokens: []string{"<|endoftext|>"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save and load the vocabulary
//	if err := tokenizer.Save("tokenizer.bpe", params, nil); err != nil {
//	    log.Fatal(err)
//	}
//	tok, err := tokenizer.Load("tokenizer.bpe")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encode and decode
//	ids, _ := tok.Encode("Hello, world!")
//	text, err := tok.Decode(ids)
package tokenizer

import (
	"context"

	"github.com/born-ml/bpe/internal/bpe"
	"github.com/born-ml/bpe/internal/corpus"
	"github.com/born-ml/bpe/internal/parallel"
	"github.com/born-ml/bpe/internal/serialization"
	"github.com/born-ml/bpe/internal/tokenizer"
	"github.com/born-ml/bpe/internal/trainer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// BPETokenizer encodes and decodes with a learned vocabulary.
type BPETokenizer = tokenizer.BPETokenizer

// Params is a learned vocabulary: bytes, special tokens and merges.
type Params = bpe.Params

// Merge is a learned merge rule.
type Merge = bpe.Merge

// TrainOptions configures training.
type TrainOptions = trainer.Options

// ParallelConfig controls the worker pool used for counting.
type ParallelConfig = parallel.Config

// CompressionStats describes how well a tokenizer compresses a text.
type CompressionStats = tokenizer.CompressionStats

// Errors.
var (
	ErrInvalidConfiguration = bpe.ErrInvalidConfiguration
	ErrUnknownToken         = tokenizer.ErrUnknownToken
	ErrInvalidUTF8          = tokenizer.ErrInvalidUTF8
	ErrChecksumMismatch     = serialization.ErrChecksumMismatch
)

// DefaultParallelConfig returns the default counting pool.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Train learns a vocabulary from text held in memory.
func Train(ctx context.Context, text string, opts TrainOptions) (*Params, error) {
	return trainer.Train(ctx, corpus.FromString(text), opts)
}

// TrainFile learns a vocabulary from the file at path.
func TrainFile(ctx context.Context, path string, opts TrainOptions) (*Params, error) {
	return trainer.TrainFile(ctx, path, opts)
}

// New creates a tokenizer over params.
func New(params *Params) *BPETokenizer {
	return tokenizer.NewBPETokenizer(params)
}

// Save writes params to a .bpe file.
func Save(path string, params *Params, metadata map[string]string) error {
	return serialization.WriteFile(path, params, metadata)
}

// LoadParams reads the vocabulary stored in a .bpe file.
func LoadParams(path string) (*Params, error) {
	vocab, err := serialization.ReadFile(path, serialization.ReaderOptions{})
	if err != nil {
		return nil, err
	}
	return vocab.Params, nil
}

// Load reads a .bpe file and returns a tokenizer over it.
func Load(path string) (*BPETokenizer, error) {
	params, err := LoadParams(path)
	if err != nil {
		return nil, err
	}
	return New(params), nil
}

// NewTikToken creates a TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base", "r50k_base".
func NewTikToken(encodingName string) (Tokenizer, error) {
	return tokenizer.NewTikToken(encodingName)
}

// Compare measures the compression of every tokenizer on text.
func Compare(text string, tokenizers ...Tokenizer) ([]CompressionStats, error) {
	return tokenizer.Compare(text, tokenizers...)
}
