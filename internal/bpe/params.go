package bpe

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// NumBytes is the number of base identifiers, one per byte value.
const NumBytes = 256

// Pair is an ordered pair of adjacent token identifiers.
type Pair struct {
	Left  int32
	Right int32
}

// Merge is a learned rule replacing Pair with ID.
type Merge struct {
	Pair
	ID int32
}

// Params is a finished vocabulary and its ordered merge rules.
//
// Params is immutable once constructed and safe to share between goroutines.
// Identifiers are laid out as:
//
//	[0, 256)                         single bytes
//	[256, 256+len(specials))         special tokens, in input order
//	[256+len(specials), VocabSize)   merges, in the order they were learned
type Params struct {
	vocab    [][]byte
	merges   []Merge
	specials []string
	special  map[string]int32
}

// NewParams validates and copies a vocabulary, merge list and special tokens.
//
// vocab is indexed by identifier. Every layout invariant documented on Params is
// checked, so a Params obtained from NewParams is always consistent.
func NewParams(vocab [][]byte, merges []Merge, specials []string) (*Params, error) {
	base := NumBytes + len(specials)
	if len(vocab) != base+len(merges) {
		return nil, fmt.Errorf("%w: vocabulary has %d entries, want %d bytes + %d specials + %d merges",
			ErrInconsistentParams, len(vocab), NumBytes, len(specials), len(merges))
	}

	for i := 0; i < NumBytes; i++ {
		if len(vocab[i]) != 1 || vocab[i][0] != byte(i) {
			return nil, fmt.Errorf("%w: base identifier %d is %q", ErrInconsistentParams, i, vocab[i])
		}
	}

	special := make(map[string]int32, len(specials))
	for i, s := range specials {
		if err := validateSpecial(s, special); err != nil {
			return nil, err
		}
		id := int32(NumBytes + i) //nolint:gosec // G115: vocabulary size fits in int32
		if !bytes.Equal(vocab[id], []byte(s)) {
			return nil, fmt.Errorf("%w: special identifier %d is %q, want %q", ErrInconsistentParams, id, vocab[id], s)
		}
		special[s] = id
	}

	for i, m := range merges {
		want := int32(base + i) //nolint:gosec // G115: vocabulary size fits in int32
		if m.ID != want {
			return nil, fmt.Errorf("%w: merge %d has identifier %d, want %d", ErrInconsistentParams, i, m.ID, want)
		}
		for _, id := range []int32{m.Left, m.Right} {
			if id < 0 || id >= m.ID {
				return nil, fmt.Errorf("%w: merge %d references identifier %d", ErrInconsistentParams, i, id)
			}
			if id >= NumBytes && int(id) < base {
				return nil, fmt.Errorf("%w: merge %d uses special identifier %d", ErrInconsistentParams, i, id)
			}
		}
		if !bytes.Equal(vocab[m.ID], concat(vocab[m.Left], vocab[m.Right])) {
			return nil, fmt.Errorf("%w: merge %d bytes %q are not %q+%q",
				ErrInconsistentParams, i, vocab[m.ID], vocab[m.Left], vocab[m.Right])
		}
	}

	owned := make([][]byte, len(vocab))
	for i, tok := range vocab {
		owned[i] = bytes.Clone(tok)
	}

	return &Params{
		vocab:    owned,
		merges:   append([]Merge(nil), merges...),
		specials: append([]string(nil), specials...),
		special:  special,
	}, nil
}

func validateSpecial(s string, seen map[string]int32) error {
	if s == "" {
		return &ConfigError{Field: "special_tokens", Details: "empty special token"}
	}
	if !utf8.ValidString(s) {
		return &ConfigError{Field: "special_tokens", Details: fmt.Sprintf("special token %q is not valid UTF-8", s)}
	}
	if _, dup := seen[s]; dup {
		return &ConfigError{Field: "special_tokens", Details: fmt.Sprintf("duplicate special token %q", s)}
	}
	return nil
}

// VocabSize returns the number of identifiers in the vocabulary.
func (p *Params) VocabSize() int {
	return len(p.vocab)
}

// NumMerges returns the number of learned merge rules.
func (p *Params) NumMerges() int {
	return len(p.merges)
}

// Token returns a copy of the bytes for id.
func (p *Params) Token(id int32) ([]byte, bool) {
	if id < 0 || int(id) >= len(p.vocab) {
		return nil, false
	}
	return bytes.Clone(p.vocab[id]), true
}

// AppendToken appends the bytes of id to dst without copying the entry first.
func (p *Params) AppendToken(dst []byte, id int32) ([]byte, bool) {
	if id < 0 || int(id) >= len(p.vocab) {
		return dst, false
	}
	return append(dst, p.vocab[id]...), true
}

// Merges returns the merge rules in learned order.
func (p *Params) Merges() []Merge {
	return append([]Merge(nil), p.merges...)
}

// SpecialTokens returns the special tokens in identifier order.
func (p *Params) SpecialTokens() []string {
	return append([]string(nil), p.specials...)
}

// SpecialID returns the identifier reserved for a special token.
func (p *Params) SpecialID(token string) (int32, bool) {
	id, ok := p.special[token]
	return id, ok
}

// IsSpecial reports whether id is a reserved special-token identifier.
func (p *Params) IsSpecial(id int32) bool {
	return id >= NumBytes && int(id) < NumBytes+len(p.specials)
}

// Vocab returns a copy of the whole vocabulary indexed by identifier.
func (p *Params) Vocab() [][]byte {
	out := make([][]byte, len(p.vocab))
	for i, tok := range p.vocab {
		out[i] = bytes.Clone(tok)
	}
	return out
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
