package bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseVocab(extra ...string) [][]byte {
	vocab := make([][]byte, NumBytes, NumBytes+len(extra))
	for i := range vocab {
		vocab[i] = []byte{byte(i)}
	}
	for _, s := range extra {
		vocab = append(vocab, []byte(s))
	}
	return vocab
}

func TestCountPairs(t *testing.T) {
	words := []word{
		{ids: BytesToIDs("aaa"), count: 2},
		{ids: BytesToIDs("ab"), count: 5},
		{ids: []int32{256}, count: 9},
	}

	counts := countPairs(words)
	assert.Equal(t, map[Pair]int64{
		{'a', 'a'}: 4, // twice per occurrence, two occurrences
		{'a', 'b'}: 5,
	}, counts)
}

func TestSelectPair(t *testing.T) {
	vocab := baseVocab("aa")

	tests := []struct {
		name   string
		counts map[Pair]int64
		want   Pair
	}{
		{
			name:   "highest count wins",
			counts: map[Pair]int64{{'a', 'b'}: 3, {'z', 'z'}: 2},
			want:   Pair{'a', 'b'},
		},
		{
			name:   "tie prefers greater left bytes",
			counts: map[Pair]int64{{'a', 'z'}: 3, {'b', 'a'}: 3},
			want:   Pair{'b', 'a'},
		},
		{
			name:   "tie on left prefers greater right bytes",
			counts: map[Pair]int64{{'a', 'b'}: 3, {'a', 'c'}: 3},
			want:   Pair{'a', 'c'},
		},
		{
			name:   "longer sequence sorts after its prefix",
			counts: map[Pair]int64{{'a', 'b'}: 1, {256, 'b'}: 1},
			want:   Pair{256, 'b'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectPair(tt.counts, vocab)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Pair)
			assert.Equal(t, tt.counts[tt.want], got.Count)
		})
	}
}

func TestSelectPair_Empty(t *testing.T) {
	_, ok := SelectPair(map[Pair]int64{}, baseVocab())
	assert.False(t, ok)

	_, ok = SelectPair(map[Pair]int64{{'a', 'b'}: 0}, baseVocab())
	assert.False(t, ok)
}

func TestCompareCandidates_SameBytes(t *testing.T) {
	// 256 = "aa": (a,256) and (256,a) both spell "aaa" with equal counts.
	vocab := baseVocab("aa")
	a := &candidate{PairCount: PairCount{Pair: Pair{'a', 256}, Count: 2}, left: vocab['a'], right: vocab[256]}
	b := &candidate{PairCount: PairCount{Pair: Pair{256, 'a'}, Count: 2}, left: vocab[256], right: vocab['a']}

	assert.Positive(t, compareCandidates(a, b))
	assert.Negative(t, compareCandidates(b, a))
	assert.Zero(t, compareCandidates(a, a))
}

func TestTopPairs(t *testing.T) {
	counts := map[Pair]int64{
		{'a', 'b'}: 10,
		{'c', 'd'}: 7,
		{'e', 'f'}: 7,
		{'g', 'h'}: 1,
	}

	top := TopPairs(counts, baseVocab(), 3)
	assert.Equal(t, []PairCount{
		{Pair: Pair{'a', 'b'}, Count: 10},
		{Pair: Pair{'e', 'f'}, Count: 7},
		{Pair: Pair{'c', 'd'}, Count: 7},
	}, top)

	assert.Len(t, TopPairs(counts, baseVocab(), 100), 4)
	assert.Nil(t, TopPairs(counts, baseVocab(), 0))
}
