package wordpiece

import (
	"testing"

	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab() map[string]uint32 {
	return map[string]uint32{
		"[UNK]":  0,
		"hello":  1,
		"world":  2,
		"test":   3,
		"##ing":  4,
		"##ed":   5,
		"##s":    6,
		"un":     7,
		"##able": 8,
	}
}

func TestTokenize(t *testing.T) {
	m, err := New(testVocab(), Options{UnkToken: "[UNK]"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		piece string
		want  []uint32
	}{
		{"word in vocab", "hello", []uint32{1}},
		{"subword split", "testing", []uint32{3, 4}},
		{"three pieces", "unable", []uint32{7, 8}},
		{"unknown word", "xyzzy", []uint32{0}},
		{"unknown suffix collapses whole word", "helloqq", []uint32{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := m.Tokenize(tt.piece)
			require.NoError(t, err)
			ids := make([]uint32, len(tokens))
			for i, tok := range tokens {
				ids[i] = tok.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTokenizeOffsets(t *testing.T) {
	m, err := New(testVocab(), Options{UnkToken: "[UNK]"})
	require.NoError(t, err)

	tokens, err := m.Tokenize("testing")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, encoding.Offset{Start: 0, End: 4}, tokens[0].Offsets)
	assert.Equal(t, encoding.Offset{Start: 4, End: 7}, tokens[1].Offsets)
	assert.Equal(t, "test", tokens[0].Value)
	assert.Equal(t, "##ing", tokens[1].Value)
}

func TestTokenizeEmptyPiece(t *testing.T) {
	m, err := New(testVocab(), Options{UnkToken: "[UNK]"})
	require.NoError(t, err)
	tokens, err := m.Tokenize("")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenizeLongWord(t *testing.T) {
	m, err := New(testVocab(), Options{UnkToken: "[UNK]", MaxInputCharsPerWord: 5})
	require.NoError(t, err)
	tokens, err := m.Tokenize("toolong")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint32(0), tokens[0].ID)
}

func TestMaxInputCharsCountsRunes(t *testing.T) {
	// "für" is 4 bytes but 3 characters; a 3-character limit must admit it.
	vocab := map[string]uint32{"[UNK]": 0, "für": 1}
	m, err := New(vocab, Options{UnkToken: "[UNK]", MaxInputCharsPerWord: 3})
	require.NoError(t, err)

	tokens, err := m.Tokenize("für")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint32(1), tokens[0].ID)
}

func TestNoUnkToken(t *testing.T) {
	m, err := New(testVocab(), Options{})
	require.NoError(t, err)
	_, err = m.Tokenize("xyzzy")
	assert.Error(t, err)
}

func TestUnkTokenNotInVocab(t *testing.T) {
	_, err := New(testVocab(), Options{UnkToken: "<missing>"})
	assert.Error(t, err)
}

func TestVocabLookups(t *testing.T) {
	m, err := New(testVocab(), Options{UnkToken: "[UNK]"})
	require.NoError(t, err)

	id, ok := m.TokenToID("hello")
	assert.True(t, ok)
	assert.Equal(t, uint32(1), id)

	token, ok := m.IDToToken(4)
	assert.True(t, ok)
	assert.Equal(t, "##ing", token)

	_, ok = m.TokenToID("nope")
	assert.False(t, ok)
	_, ok = m.IDToToken(999)
	assert.False(t, ok)

	assert.Equal(t, len(testVocab()), m.VocabSize())
	assert.Equal(t, uint32(2), m.Vocab()["world"])
}
