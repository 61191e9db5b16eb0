package bpe

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// Options configures Learn.
type Options struct {
	// Logger receives per-merge debug records and a summary. Nil discards.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// NumMergesFor returns how many merges a vocabulary of vocabSize identifiers
// leaves room for after the base bytes and numSpecials special tokens.
func NumMergesFor(vocabSize, numSpecials int) (int, error) {
	if vocabSize > math.MaxInt32 {
		return 0, &ConfigError{
			Field:   "vocab_size",
			Details: fmt.Sprintf("%d exceeds the largest identifier %d", vocabSize, math.MaxInt32),
		}
	}
	n := vocabSize - NumBytes - numSpecials
	if n < 0 {
		return 0, &ConfigError{
			Field:   "vocab_size",
			Details: fmt.Sprintf("%d is smaller than %d bytes + %d special tokens", vocabSize, NumBytes, numSpecials),
		}
	}
	return n, nil
}

// ValidateSpecialTokens rejects empty, non UTF-8 and duplicate special tokens.
func ValidateSpecialTokens(specials []string) error {
	seen := make(map[string]int32, len(specials))
	for i, s := range specials {
		if err := validateSpecial(s, seen); err != nil {
			return err
		}
		seen[s] = int32(i) //nolint:gosec // G115: special token count fits in int32
	}
	return nil
}

// Learn trains merges over a pretoken frequency map.
//
// counts maps every pretoken to its corpus frequency. A pretoken equal to one of
// specials is a single reserved identifier and never takes part in a merge. Learn
// performs vocabSize-256-len(specials) merges, or fewer when the corpus runs out
// of adjacent pairs.
func Learn(counts map[string]int64, vocabSize int, specials []string, opts Options) (*Params, error) {
	numMerges, err := NumMergesFor(vocabSize, len(specials))
	if err != nil {
		return nil, err
	}
	if err := ValidateSpecialTokens(specials); err != nil {
		return nil, err
	}
	log := opts.logger()

	specialIDs := make(map[string]int32, len(specials))
	for i, s := range specials {
		specialIDs[s] = int32(NumBytes + i) //nolint:gosec // G115: checked by NumMergesFor
	}
	words := newWords(counts, specialIDs)

	// Every merge shortens at least one working sequence.
	capacity := min(numMerges, maxMerges(words))

	vocab := make([][]byte, NumBytes, NumBytes+len(specials)+capacity)
	for i := range vocab {
		vocab[i] = []byte{byte(i)}
	}
	for _, s := range specials {
		vocab = append(vocab, []byte(s))
	}

	merges := make([]Merge, 0, capacity)
	for step := 0; step < numMerges; step++ {
		best, ok := SelectPair(countPairs(words), vocab)
		if !ok {
			log.Warn("no adjacent pairs left, stopping early",
				"merges", len(merges), "requested", numMerges)
			break
		}

		id := int32(len(vocab)) //nolint:gosec // G115: vocabulary size fits in int32
		vocab = append(vocab, concat(vocab[best.Left], vocab[best.Right]))
		merges = append(merges, Merge{Pair: best.Pair, ID: id})

		for i := range words {
			if contains(words[i].ids, best.Pair) {
				words[i].ids = Apply(words[i].ids, best.Pair, id)
			}
		}

		log.Debug("merge", "step", step, "left", best.Left, "right", best.Right,
			"id", id, "count", best.Count, "token", string(vocab[id]))
	}

	log.Info("learned merges", "merges", len(merges), "vocab_size", len(vocab),
		"pretokens", len(words), "special_tokens", len(specials))

	return NewParams(vocab, merges, specials)
}

// LearnText trains merges over text taken as one sequence, without
// pretokenization. Merges may then span word and whitespace boundaries.
func LearnText(text string, vocabSize int, specials []string, opts Options) (*Params, error) {
	counts := map[string]int64{}
	if text != "" {
		counts[text] = 1
	}
	return Learn(counts, vocabSize, specials, opts)
}

// maxMerges returns the number of merges after which no pair can be left.
func maxMerges(words []word) int {
	n := 0
	for _, w := range words {
		if len(w.ids) > 1 {
			n += len(w.ids) - 1
		}
	}
	return n
}

// newWords builds the working sequences in a stable order.
func newWords(counts map[string]int64, specialIDs map[string]int32) []word {
	keys := make([]string, 0, len(counts))
	for k, n := range counts {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	words := make([]word, 0, len(keys))
	for _, k := range keys {
		var ids []int32
		if id, ok := specialIDs[k]; ok {
			ids = []int32{id}
		} else {
			ids = BytesToIDs(k)
		}
		words = append(words, word{ids: ids, count: counts[k]})
	}
	return words
}
