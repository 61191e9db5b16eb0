package tokenizer_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/bpe/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainSaveLoad(t *testing.T) {
	text := strings.Repeat("hug pug pun bun hugs<|endoftext|>", 20)

	params, err := tokenizer.Train(context.Background(), text, tokenizer.TrainOptions{
		VocabSize:     270,
		SpecialTokens: []string{"<|endoftext|>"},
		Parallel:      tokenizer.DefaultParallelConfig(),
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tokenizer.bpe")
	require.NoError(t, tokenizer.Save(path, params, map[string]string{"corpus": "inline"}))

	tok, err := tokenizer.Load(path)
	require.NoError(t, err)
	assert.Equal(t, params.Merges(), tok.Params().Merges())

	ids, err := tok.Encode("hugs and pugs")
	require.NoError(t, err)
	got, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "hugs and pugs", got)

	stats, err := tokenizer.Compare("hug pug", tok)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.True(t, stats[0].RoundTrip)
}

func TestTrain_InvalidConfiguration(t *testing.T) {
	_, err := tokenizer.Train(context.Background(), "abc", tokenizer.TrainOptions{VocabSize: 10})
	assert.ErrorIs(t, err, tokenizer.ErrInvalidConfiguration)
}

func TestDecode_UnknownToken(t *testing.T) {
	params, err := tokenizer.Train(context.Background(), "aaab", tokenizer.TrainOptions{VocabSize: 257})
	require.NoError(t, err)

	_, err = tokenizer.New(params).Decode([]int32{512})
	assert.ErrorIs(t, err, tokenizer.ErrUnknownToken)
}
