package tokenizer

import (
	"unicode/utf8"

	"github.com/born-ml/bpe/internal/bpe"
	"github.com/born-ml/bpe/internal/parallel"
)

// BPETokenizer encodes and decodes with a learned byte-level vocabulary.
//
// It never modifies its parameters and is safe for concurrent use.
type BPETokenizer struct {
	params *bpe.Params
	merges []bpe.Merge
}

// NewBPETokenizer creates a tokenizer over params.
func NewBPETokenizer(params *bpe.Params) *BPETokenizer {
	return &BPETokenizer{
		params: params,
		merges: params.Merges(),
	}
}

// Encode converts text to token IDs.
//
// Every merge rule is applied in learned order, one non-overlapping left to
// right pass per rule, over the whole byte sequence. Special tokens get no
// treatment of their own: their bytes are encoded like any other text.
func (b *BPETokenizer) Encode(text string) ([]int32, error) {
	if text == "" {
		return []int32{}, nil
	}

	ids := bpe.BytesToIDs(text)
	for _, m := range b.merges {
		if len(ids) < 2 {
			break
		}
		ids = bpe.ApplyInPlace(ids, m.Pair, m.ID)
	}
	return ids, nil
}

// EncodeBatch encodes every text on the worker pool described by cfg. The result
// is in input order.
func (b *BPETokenizer) EncodeBatch(texts []string, cfg parallel.Config) ([][]int32, error) {
	out := make([][]int32, len(texts))
	errs := make([]error, len(texts))
	parallel.For(len(texts), func(i int) {
		out[i], errs[i] = b.Encode(texts[i])
	}, cfg)

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecodeBytes concatenates the vocabulary entries of tokens without checking
// that the result is valid UTF-8.
func (b *BPETokenizer) DecodeBytes(tokens []int32) ([]byte, error) {
	buf := make([]byte, 0, len(tokens)*2)
	for i, id := range tokens {
		var ok bool
		buf, ok = b.params.AppendToken(buf, id)
		if !ok {
			return nil, &LookupError{ID: id, Position: i}
		}
	}
	return buf, nil
}

// Decode converts token IDs back to text.
//
// A missing ID yields a *LookupError and bytes that do not form valid UTF-8 a
// *DecodeError; neither is repaired.
func (b *BPETokenizer) Decode(tokens []int32) (string, error) {
	buf, err := b.DecodeBytes(tokens)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", &DecodeError{Offset: firstInvalid(buf), Bytes: buf}
	}
	return string(buf), nil
}

// Token returns the bytes of a single token ID.
func (b *BPETokenizer) Token(id int32) ([]byte, error) {
	tok, ok := b.params.Token(id)
	if !ok {
		return nil, &LookupError{ID: id}
	}
	return tok, nil
}

// VocabSize returns the total vocabulary size.
func (b *BPETokenizer) VocabSize() int {
	return b.params.VocabSize()
}

// IsSpecialToken checks if a token ID is a special token.
func (b *BPETokenizer) IsSpecialToken(token int32) bool {
	return b.params.IsSpecial(token)
}

// SpecialTokenID returns the ID reserved for a special token.
func (b *BPETokenizer) SpecialTokenID(text string) (int32, bool) {
	return b.params.SpecialID(text)
}

// Params returns the underlying vocabulary.
func (b *BPETokenizer) Params() *bpe.Params {
	return b.params
}

// Name returns the tokenizer name.
func (b *BPETokenizer) Name() string {
	return "bpe"
}

func firstInvalid(buf []byte) int {
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(buf)
}
