// Package tokenizer turns text into token identifiers and back.
//
// BPETokenizer applies a vocabulary learned by package bpe: the input is read as
// UTF-8 bytes, each byte becomes its base identifier, and every merge rule is
// then applied in learned order with one left-to-right pass per rule. Decoding
// concatenates the vocabulary entries and requires the result to be valid UTF-8.
//
// TikToken wraps the OpenAI encodings from tiktoken-go so a learned vocabulary
// can be measured against a reference (see Compare).
//
// Example usage:
//
//	params, err := bpe.LearnText(text, 300, nil, bpe.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tok := tokenizer.NewBPETokenizer(params)
//	ids, _ := tok.Encode("low lower lowest")
//	text, err := tok.Decode(ids)
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer
