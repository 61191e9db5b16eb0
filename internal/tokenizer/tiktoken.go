package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the encoding used by GPT-4 and GPT-3.5-turbo.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the encoding used by Codex.
	EncodingP50kBase = "p50k_base"
	// EncodingR50kBase is the encoding used by GPT-2 and older GPT-3 models.
	EncodingR50kBase = "r50k_base"
)

// allSpecial lets special token text through Encode instead of panicking on it.
var allSpecial = []string{"all"}

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// It serves as a reference point when judging a learned vocabulary. Loading an
// encoding may download its ranks on first use.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a TikToken tokenizer with the specified encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// NewTikTokenForModel creates a TikToken tokenizer for a model such as "gpt-4".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken for model %q: %w", modelName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     modelName,
	}, nil
}

// Encode converts text to token IDs. Special token text is encoded as the
// special token.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, allSpecial, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
	}

	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	intTokens := make([]int, len(tokens))
	for i, tok := range tokens {
		intTokens[i] = int(tok)
	}

	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the number of ordinary tokens of the encoding.
//
// tiktoken-go doesn't expose the size, so known encodings are listed here.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case EncodingCL100kBase:
		return 100256
	case EncodingP50kBase, EncodingR50kBase:
		return 50257
	default:
		return 100000
	}
}

// IsSpecialToken checks if a token ID is a special token.
func (t *TikToken) IsSpecialToken(token int32) bool {
	switch t.name {
	case EncodingCL100kBase:
		// <|endoftext|>, the three FIM markers and <|endofprompt|>.
		return (token >= 100257 && token <= 100260) || token == 100276
	case EncodingP50kBase, EncodingR50kBase:
		return token == 50256
	default:
		return false
	}
}

// Name returns the tokenizer name.
func (t *TikToken) Name() string {
	return t.name
}
