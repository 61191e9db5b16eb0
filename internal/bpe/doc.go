// Package bpe implements byte-level byte-pair-encoding training.
//
// Training starts from 256 single-byte identifiers plus any reserved special
// tokens, then repeatedly merges the most frequent adjacent identifier pair
// across all pretokens:
//
//	counts := map[string]int64{"low": 5, " lower": 2, " lowest": 3}
//	params, err := bpe.Learn(counts, 300, []string{"<|endoftext|>"}, bpe.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Ties between equally frequent pairs are broken by the lexicographically
// greater byte sequences (left token first, then right token) and finally by the
// greater identifiers, so identical input always yields identical merges.
//
// The resulting Params is immutable and is what the tokenizer package encodes
// and decodes with.
package bpe
