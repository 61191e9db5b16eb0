package bpe

import (
	"bytes"
	"cmp"

	"github.com/emirpasic/gods/v2/trees/binaryheap"
)

// PairCount is an adjacent pair with its frequency-weighted occurrence count.
type PairCount struct {
	Pair
	Count int64
}

// word is a pretoken during training: its current identifiers and how often the
// pretoken occurs in the corpus.
type word struct {
	ids   []int32
	count int64
}

// countPairs returns the weighted count of every adjacent pair across words.
// A pair occurring k times inside a word contributes k*count.
func countPairs(words []word) map[Pair]int64 {
	counts := make(map[Pair]int64)
	for _, w := range words {
		for i := 0; i+1 < len(w.ids); i++ {
			counts[Pair{w.ids[i], w.ids[i+1]}] += w.count
		}
	}
	return counts
}

type candidate struct {
	PairCount
	left, right []byte
}

// compareCandidates orders candidates best first: higher count, then the
// lexicographically greater (left bytes, right bytes), then the greater
// (left id, right id). It is a total order over distinct pairs.
func compareCandidates(a, b *candidate) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	if c := bytes.Compare(b.left, a.left); c != 0 {
		return c
	}
	if c := bytes.Compare(b.right, a.right); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Left, a.Left); c != 0 {
		return c
	}
	return cmp.Compare(b.Right, a.Right)
}

// TopPairs ranks the pairs in counts and returns the best k of them.
//
// vocab must hold an entry for every identifier that appears in counts.
func TopPairs(counts map[Pair]int64, vocab [][]byte, k int) []PairCount {
	if k <= 0 || len(counts) == 0 {
		return nil
	}

	cands := make([]*candidate, 0, len(counts))
	for p, n := range counts {
		if n <= 0 {
			continue
		}
		cands = append(cands, &candidate{
			PairCount: PairCount{Pair: p, Count: n},
			left:      vocab[p.Left],
			right:     vocab[p.Right],
		})
	}
	if len(cands) == 0 {
		return nil
	}

	heap := binaryheap.NewWith(compareCandidates)
	heap.Push(cands...)

	out := make([]PairCount, 0, min(k, len(cands)))
	for len(out) < k {
		c, ok := heap.Pop()
		if !ok {
			break
		}
		out = append(out, c.PairCount)
	}
	return out
}

// SelectPair returns the pair that the next merge should create.
// It reports false when counts holds no pair.
func SelectPair(counts map[Pair]int64, vocab [][]byte) (PairCount, bool) {
	top := TopPairs(counts, vocab, 1)
	if len(top) == 0 {
		return PairCount{}, false
	}
	return top[0], true
}
