package bpe

import (
	"testing"

	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	vocab := map[string]uint32{
		"h": 0, "e": 1, "l": 2, "o": 3, "w": 4, "r": 5, "d": 6,
		"he": 7, "lo": 8, "hel": 9, "hello": 10,
		"wo": 11, "wor": 12, "world": 13,
	}
	merges := []string{
		"h e",
		"l o",
		"w o",
		"he l",
		"hel lo",
		"wo r",
		"wor l",
		"worl d",
	}
	m, err := New(vocab, merges, Options{})
	require.NoError(t, err)
	return m
}

func TestTokenizeMerges(t *testing.T) {
	m := testModel(t)

	tokens, err := m.Tokenize("hello")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint32(10), tokens[0].ID)
	assert.Equal(t, "hello", tokens[0].Value)
	assert.Equal(t, encoding.Offset{Start: 0, End: 5}, tokens[0].Offsets)
}

func TestTokenizePartialMerge(t *testing.T) {
	m := testModel(t)

	// "held": h+e merge to "he", then "he l" applies; no merge covers "d".
	tokens, err := m.Tokenize("held")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "hel", tokens[0].Value)
	assert.Equal(t, "d", tokens[1].Value)
	assert.Equal(t, encoding.Offset{Start: 0, End: 3}, tokens[0].Offsets)
	assert.Equal(t, encoding.Offset{Start: 3, End: 4}, tokens[1].Offsets)
}

func TestTokenizeEmptyPiece(t *testing.T) {
	m := testModel(t)
	tokens, err := m.Tokenize("")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenizeUnknownSymbol(t *testing.T) {
	m := testModel(t)
	_, err := m.Tokenize("hx")
	assert.Error(t, err, "x is not in the vocabulary and no unk is configured")
}

func TestUnkFallback(t *testing.T) {
	vocab := map[string]uint32{"<unk>": 0, "a": 1}
	m, err := New(vocab, nil, Options{UnkToken: "<unk>"})
	require.NoError(t, err)

	tokens, err := m.Tokenize("ab")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, uint32(1), tokens[0].ID)
	assert.Equal(t, uint32(0), tokens[1].ID)
	assert.Equal(t, "<unk>", tokens[1].Value)
}

func TestEndOfWordSuffix(t *testing.T) {
	vocab := map[string]uint32{"a": 0, "b</w>": 1}
	m, err := New(vocab, nil, Options{EndOfWordSuffix: "</w>"})
	require.NoError(t, err)

	tokens, err := m.Tokenize("ab")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "a", tokens[0].Value)
	assert.Equal(t, "b</w>", tokens[1].Value)
}

func TestMergeOrderRespectsRank(t *testing.T) {
	// Both "a b" and "b c" could apply to "abc"; the lower rank wins first.
	vocab := map[string]uint32{"a": 0, "b": 1, "c": 2, "bc": 3, "abc": 4, "ab": 5}
	merges := []string{"b c", "a bc"}
	m, err := New(vocab, merges, Options{})
	require.NoError(t, err)

	tokens, err := m.Tokenize("abc")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "abc", tokens[0].Value)
}

func TestVocabLookups(t *testing.T) {
	m := testModel(t)

	id, ok := m.TokenToID("world")
	assert.True(t, ok)
	assert.Equal(t, uint32(13), id)

	token, ok := m.IDToToken(10)
	assert.True(t, ok)
	assert.Equal(t, "hello", token)

	assert.Equal(t, 14, m.VocabSize())
}
