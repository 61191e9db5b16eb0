package trainer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/born-ml/bpe/internal/bpe"
	"github.com/born-ml/bpe/internal/corpus"
	"github.com/born-ml/bpe/internal/parallel"
	"github.com/born-ml/bpe/internal/pretokenize"
	"github.com/born-ml/bpe/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eot = "<|endoftext|>"

type countingSource struct {
	corpus.Source
	reads atomic.Int64
}

func (c *countingSource) ReadAt(p []byte, off int64) (int, error) {
	c.reads.Add(1)
	return c.Source.ReadAt(p, off)
}

func sampleCorpus() string {
	docs := []string{
		"low lower lowest",
		"newer wider newest widest",
		"The cat sat on the mat. The dog sat on the log.",
		"It's 2024 and they've counted 12345 tokens!",
		"naïve café 你好 世界",
	}
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString(docs[i%len(docs)])
		sb.WriteString(eot)
	}
	return sb.String()
}

func TestTrain_LowLowerLowest(t *testing.T) {
	params, err := Train(context.Background(), corpus.FromString("low lower lowest"), Options{
		VocabSize: 259,
		Parallel:  parallel.DefaultConfig(),
	})
	require.NoError(t, err)

	want := []bpe.Merge{
		{Pair: bpe.Pair{Left: 'o', Right: 'w'}, ID: 256},
		{Pair: bpe.Pair{Left: 'l', Right: 256}, ID: 257},
		{Pair: bpe.Pair{Left: 257, Right: 'e'}, ID: 258},
	}
	assert.Equal(t, want, params.Merges())

	tok, ok := params.Token(258)
	require.True(t, ok)
	assert.Equal(t, "lowe", string(tok))
}

func TestTrain_MatchesSequentialLearn(t *testing.T) {
	text := sampleCorpus()

	pre, err := pretokenize.New([]string{eot})
	require.NoError(t, err)
	counts, err := pre.Count(text)
	require.NoError(t, err)
	want, err := bpe.Learn(counts, 400, []string{eot}, bpe.Options{})
	require.NoError(t, err)

	for _, chunks := range []int{1, 4, 9} {
		got, err := Train(context.Background(), corpus.FromString(text), Options{
			VocabSize:     400,
			SpecialTokens: []string{eot},
			Chunks:        chunks,
			Parallel:      parallel.Config{Enabled: true, NumWorkers: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, want.Merges(), got.Merges(), "chunks=%d", chunks)
		assert.Equal(t, want.Vocab(), got.Vocab(), "chunks=%d", chunks)
	}
}

func TestTrain_RoundTrip(t *testing.T) {
	text := sampleCorpus()
	params, err := Train(context.Background(), corpus.FromString(text), Options{
		VocabSize:     350,
		SpecialTokens: []string{eot},
		Parallel:      parallel.DefaultConfig(),
	})
	require.NoError(t, err)

	tok := tokenizer.NewBPETokenizer(params)
	inputs := []string{
		"",
		"low lower lowest",
		"completely unseen text with ünïcödé and emoji 🎉",
		text,
	}
	for _, in := range inputs {
		ids, err := tok.Encode(in)
		require.NoError(t, err)
		out, err := tok.Decode(ids)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestTrain_MergeMonotonicity(t *testing.T) {
	params, err := Train(context.Background(), corpus.FromString(sampleCorpus()), Options{
		VocabSize:     380,
		SpecialTokens: []string{eot},
		Parallel:      parallel.DefaultConfig(),
	})
	require.NoError(t, err)

	first := int32(bpe.NumBytes + 1)
	for k, m := range params.Merges() {
		assert.Equal(t, first+int32(k), m.ID)
		assert.Less(t, m.Left, m.ID)
		assert.Less(t, m.Right, m.ID)
		assert.False(t, params.IsSpecial(m.Left))
		assert.False(t, params.IsSpecial(m.Right))
	}
}

func TestTrain_StopsEarly(t *testing.T) {
	params, err := Train(context.Background(), corpus.FromString("ab"), Options{
		VocabSize: 300,
		Parallel:  parallel.DefaultConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, params.NumMerges())
	assert.Equal(t, bpe.NumBytes+1, params.VocabSize())
}

func TestTrain_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "vocab too small", opts: Options{VocabSize: 256, SpecialTokens: []string{eot}}},
		{name: "empty special", opts: Options{VocabSize: 300, SpecialTokens: []string{""}}},
		{name: "duplicate special", opts: Options{VocabSize: 300, SpecialTokens: []string{eot, eot}}},
		{name: "negative chunks", opts: Options{VocabSize: 300, Chunks: -1}},
		{name: "negative workers", opts: Options{VocabSize: 300, Parallel: parallel.Config{NumWorkers: -2}}},
		{
			name: "boundary inside special",
			opts: Options{VocabSize: 300, SpecialTokens: []string{"<s>", "<<s>"}, BoundaryToken: "<s>"},
		},
		{
			name: "boundary straddles special",
			opts: Options{VocabSize: 300, SpecialTokens: []string{"<s>"}, BoundaryToken: "s>x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{Source: corpus.FromString("some text" + eot + "more text")}
			_, err := Train(context.Background(), src, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, bpe.ErrInvalidConfiguration)
			assert.Zero(t, src.reads.Load(), "corpus must not be read")
		})
	}
}

func TestOptions_BoundaryToken(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "no specials", opts: Options{}, want: ""},
		{name: "first special", opts: Options{SpecialTokens: []string{eot, "<pad>"}}, want: eot},
		{name: "explicit", opts: Options{SpecialTokens: []string{eot}, BoundaryToken: "\n\n"}, want: "\n\n"},
		{name: "skips nested special", opts: Options{SpecialTokens: []string{"<s>", "<<s>"}}, want: "<<s>"},
		{name: "self overlapping", opts: Options{SpecialTokens: []string{"aa"}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.boundaryToken())
		})
	}
}

func TestTrain_NestedSpecialTokens(t *testing.T) {
	specials := []string{"<s>", "<<s>"}
	text := strings.Repeat("some words <<s>", 500)

	pre, err := pretokenize.New(specials)
	require.NoError(t, err)
	want, err := pre.Count(text)
	require.NoError(t, err)
	require.Equal(t, int64(500), want["<<s>"])

	for _, chunks := range []int{1, 7, 32} {
		counts, err := corpus.Count(context.Background(), corpus.FromString(text), corpus.Options{
			Chunks:        chunks,
			BoundaryToken: Options{SpecialTokens: specials}.boundaryToken(),
			SpecialTokens: specials,
			Parallel:      parallel.DefaultConfig(),
		})
		require.NoError(t, err)
		assert.Equal(t, want, counts, "chunks=%d", chunks)
	}
}

func TestTrain_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Train(ctx, corpus.FromString(sampleCorpus()), Options{
		VocabSize:     300,
		SpecialTokens: []string{eot},
		Parallel:      parallel.DefaultConfig(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	text := sampleCorpus()
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))

	opts := Options{VocabSize: 320, SpecialTokens: []string{eot}, Chunks: 4, Parallel: parallel.DefaultConfig()}
	fromFile, err := TrainFile(context.Background(), path, opts)
	require.NoError(t, err)
	fromMemory, err := Train(context.Background(), corpus.FromString(text), opts)
	require.NoError(t, err)
	assert.Equal(t, fromMemory.Merges(), fromFile.Merges())

	_, err = TrainFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), opts)
	assert.Error(t, err)
}
