// Package pretokenize splits raw text into the units BPE training counts.
package pretokenize

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
)

// Pattern is the GPT-2 style split: an English contraction suffix, an optionally
// space-prefixed run of letters, digits or other symbols, trailing whitespace
// not followed by a non-space, or any other whitespace run.
const Pattern = `'(?:[sdmt]|ll|ve|re)| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

var pattern = regexp2.MustCompile(Pattern, regexp2.None)

// ErrEmptySpecialToken is returned when a special token is the empty string.
var ErrEmptySpecialToken = errors.New("special token is empty")

// Pretokenizer splits text with Pattern while keeping special tokens whole.
//
// A Pretokenizer is safe for concurrent use.
type Pretokenizer struct {
	specials []string
	special  *regexp2.Regexp // nil when there are no special tokens
}

// New creates a Pretokenizer that treats every string in specials as an
// indivisible unit.
func New(specials []string) (*Pretokenizer, error) {
	p := &Pretokenizer{specials: slices.Clone(specials)}
	if len(specials) == 0 {
		return p, nil
	}

	// Longest first, so a special token that prefixes another never wins.
	sorted := slices.Clone(specials)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	alternatives := make([]string, 0, len(sorted))
	for _, s := range sorted {
		if s == "" {
			return nil, ErrEmptySpecialToken
		}
		alternatives = append(alternatives, regexp2.Escape(s))
	}

	re, err := regexp2.Compile(strings.Join(alternatives, "|"), regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile special tokens: %w", err)
	}
	p.special = re

	return p, nil
}

// SpecialTokens returns the special tokens the Pretokenizer was created with.
func (p *Pretokenizer) SpecialTokens() []string {
	return slices.Clone(p.specials)
}

// Split returns the units of text in order.
func (p *Pretokenizer) Split(text string) ([]string, error) {
	var units []string
	err := p.each(text, func(unit string) bool {
		units = append(units, unit)
		return true
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// Count returns how often each unit occurs in text.
func (p *Pretokenizer) Count(text string) (Counts, error) {
	counts := make(Counts)
	err := p.each(text, func(unit string) bool {
		counts[unit]++
		return true
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// each calls yield for every unit of text until yield returns false.
// Invalid UTF-8 is dropped first.
func (p *Pretokenizer) each(text string, yield func(string) bool) error {
	text = strings.ToValidUTF8(text, "")
	if p.special == nil {
		_, err := splitSegment(text, yield)
		return err
	}

	runes := []rune(text)
	offset := 0

	m, err := p.special.FindRunesMatch(runes)
	for m != nil {
		if m.Index > offset {
			more, err := splitSegment(string(runes[offset:m.Index]), yield)
			if err != nil || !more {
				return err
			}
		}
		if !yield(m.String()) {
			return nil
		}
		offset = m.Index + m.Length

		m, err = p.special.FindNextMatch(m)
	}
	if err != nil {
		return fmt.Errorf("failed to match special tokens: %w", err)
	}

	if offset < len(runes) {
		_, err := splitSegment(string(runes[offset:]), yield)
		return err
	}
	return nil
}

// splitSegment applies Pattern to text containing no special tokens. It reports
// false if yield asked to stop.
func splitSegment(text string, yield func(string) bool) (bool, error) {
	if text == "" {
		return true, nil
	}

	m, err := pattern.FindStringMatch(text)
	for m != nil {
		if !yield(m.String()) {
			return false, nil
		}
		m, err = pattern.FindNextMatch(m)
	}
	if err != nil {
		return false, fmt.Errorf("failed to split text: %w", err)
	}
	return true, nil
}
