package tokenizer

import "fmt"

// CompressionStats describes how well a tokenizer compresses a text.
type CompressionStats struct {
	Name          string  `json:"name" yaml:"name"`
	VocabSize     int     `json:"vocab_size" yaml:"vocab_size"`
	Bytes         int     `json:"bytes" yaml:"bytes"`
	Tokens        int     `json:"tokens" yaml:"tokens"`
	BytesPerToken float64 `json:"bytes_per_token" yaml:"bytes_per_token"`
	RoundTrip     bool    `json:"round_trip" yaml:"round_trip"` // Decode(Encode(text)) == text.
}

// Measure encodes text with tok and reports its compression.
func Measure(tok Tokenizer, text string) (CompressionStats, error) {
	stats := CompressionStats{
		Name:      nameOf(tok),
		VocabSize: tok.VocabSize(),
		Bytes:     len(text),
	}

	ids, err := tok.Encode(text)
	if err != nil {
		return stats, fmt.Errorf("failed to encode with %s: %w", stats.Name, err)
	}
	stats.Tokens = len(ids)
	if len(ids) > 0 {
		stats.BytesPerToken = float64(len(text)) / float64(len(ids))
	}

	decoded, err := tok.Decode(ids)
	stats.RoundTrip = err == nil && decoded == text

	return stats, nil
}

// Compare measures every tokenizer on the same text, in argument order.
func Compare(text string, tokenizers ...Tokenizer) ([]CompressionStats, error) {
	out := make([]CompressionStats, 0, len(tokenizers))
	for _, tok := range tokenizers {
		stats, err := Measure(tok, text)
		if err != nil {
			return nil, err
		}
		out = append(out, stats)
	}
	return out, nil
}

func nameOf(tok Tokenizer) string {
	if n, ok := tok.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", tok)
}
