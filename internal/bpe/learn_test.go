package bpe

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearn_LowLowerLowest(t *testing.T) {
	counts := map[string]int64{"low": 1, " lower": 1, " lowest": 1}

	params, err := Learn(counts, 259, nil, Options{})
	require.NoError(t, err)

	// (l,o) and (o,w) both count 3; "o" > "l" so (o,w) is merged first.
	want := []Merge{
		{Pair: Pair{'o', 'w'}, ID: 256},
		{Pair: Pair{'l', 256}, ID: 257},
		{Pair: Pair{257, 'e'}, ID: 258},
	}
	assert.Equal(t, want, params.Merges())

	tokens := map[int32]string{256: "ow", 257: "low", 258: "lowe"}
	for id, s := range tokens {
		tok, ok := params.Token(id)
		require.True(t, ok)
		assert.Equal(t, s, string(tok))
	}
	assert.Equal(t, 259, params.VocabSize())
}

func TestLearn_VocabSizeAccounting(t *testing.T) {
	tests := []struct {
		name       string
		counts     map[string]int64
		vocabSize  int
		specials   []string
		wantMerges int
	}{
		{
			name:       "no merges requested",
			counts:     map[string]int64{"hello": 3},
			vocabSize:  256,
			wantMerges: 0,
		},
		{
			name:       "all merges performed",
			counts:     map[string]int64{"hello": 3, " world": 2},
			vocabSize:  260,
			wantMerges: 4,
		},
		{
			name:       "corpus exhausted",
			counts:     map[string]int64{"ab": 1},
			vocabSize:  300,
			wantMerges: 1,
		},
		{
			name:       "empty corpus",
			counts:     map[string]int64{},
			vocabSize:  300,
			wantMerges: 0,
		},
		{
			name:       "special tokens reserve identifiers",
			counts:     map[string]int64{"<|endoftext|>": 4, "abc": 2},
			vocabSize:  260,
			specials:   []string{"<|endoftext|>", "<pad>"},
			wantMerges: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := Learn(tt.counts, tt.vocabSize, tt.specials, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantMerges, params.NumMerges())
			assert.Equal(t, NumBytes+len(tt.specials)+tt.wantMerges, params.VocabSize())
		})
	}
}

func TestLearn_SpecialTokenIsolation(t *testing.T) {
	special := "<|endoftext|>"
	counts := map[string]int64{
		special: 100,
		"ab":    1,
		" <|":   50,
	}

	params, err := Learn(counts, 270, []string{special}, Options{})
	require.NoError(t, err)

	id, ok := params.SpecialID(special)
	require.True(t, ok)
	assert.Equal(t, int32(256), id)
	assert.True(t, params.IsSpecial(id))

	for _, m := range params.Merges() {
		assert.NotEqual(t, id, m.Left)
		assert.NotEqual(t, id, m.Right)
		assert.Greater(t, m.ID, id)
	}
}

func TestLearn_Deterministic(t *testing.T) {
	counts := map[string]int64{
		"the": 7, " the": 12, " then": 3, " there": 4, " other": 2,
		" 123": 1, "!!": 5, " cat": 3, " hat": 3, " that": 6,
	}

	first, err := Learn(counts, 300, []string{"<|endoftext|>"}, Options{})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Learn(counts, 300, []string{"<|endoftext|>"}, Options{})
		require.NoError(t, err)
		assert.Equal(t, first.Merges(), again.Merges())
		assert.Equal(t, first.Vocab(), again.Vocab())
	}
}

func TestLearn_WeightsByFrequency(t *testing.T) {
	// "xy" appears once but twice inside the word; "ab" appears three times.
	counts := map[string]int64{"xyxy": 1, "ab": 3}

	params, err := Learn(counts, 257, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []Merge{{Pair: Pair{'a', 'b'}, ID: 256}}, params.Merges())

	counts["xyxy"] = 2 // now (x,y) counts 4
	params, err = Learn(counts, 257, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []Merge{{Pair: Pair{'x', 'y'}, ID: 256}}, params.Merges())
}

func TestLearn_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		vocabSize int
		specials  []string
	}{
		{name: "vocab too small", vocabSize: 255},
		{name: "no room for specials", vocabSize: 257, specials: []string{"<a>", "<b>"}},
		{name: "empty special", vocabSize: 300, specials: []string{""}},
		{name: "duplicate special", vocabSize: 300, specials: []string{"<a>", "<a>"}},
		{name: "identifier overflow", vocabSize: math.MaxInt32 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Learn(map[string]int64{"abc": 1}, tt.vocabSize, tt.specials, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestLearn_HugeVocabStopsEarly(t *testing.T) {
	var params *Params
	require.NotPanics(t, func() {
		var err error
		params, err = Learn(map[string]int64{"ab": 1, "<s>": 3}, math.MaxInt32, []string{"<s>"}, Options{})
		require.NoError(t, err)
	})

	assert.Equal(t, 1, params.NumMerges())
	assert.Equal(t, NumBytes+2, params.VocabSize())
	id, ok := params.SpecialID("<s>")
	require.True(t, ok)
	assert.Equal(t, int32(NumBytes), id)
}

func TestLearnText(t *testing.T) {
	params, err := LearnText("aaab aaab", 258, nil, Options{})
	require.NoError(t, err)

	// (a,a) counts 4. Afterwards (256,a) and (a,b) tie at 2 and "aa" > "a".
	merges := params.Merges()
	require.Len(t, merges, 2)
	assert.Equal(t, Pair{'a', 'a'}, merges[0].Pair)
	assert.Equal(t, Pair{256, 'a'}, merges[1].Pair)

	empty, err := LearnText("", 300, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumMerges())
}
