package unigram

import (
	"testing"

	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	vocab := map[string]uint32{
		"<unk>":  0,
		"▁":      1,
		"▁he":    2,
		"▁hell":  3,
		"▁hello": 4,
		"llo":    5,
		"l":      6,
		"o":      7,
		"w":      8,
	}
	m, err := New(vocab, "<unk>")
	require.NoError(t, err)
	return m
}

func TestTokenizeLongestMatch(t *testing.T) {
	m := testModel(t)

	tokens, err := m.Tokenize("▁hello")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint32(4), tokens[0].ID)
}

func TestTokenizeFallsBackToShorterMatches(t *testing.T) {
	m := testModel(t)

	// "▁hellow": longest match is ▁hello, then w.
	tokens, err := m.Tokenize("▁hellow")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "▁hello", tokens[0].Value)
	assert.Equal(t, "w", tokens[1].Value)
}

func TestTokenizeUnknownCharacter(t *testing.T) {
	m := testModel(t)

	tokens, err := m.Tokenize("▁hex")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "▁he", tokens[0].Value)
	assert.Equal(t, uint32(0), tokens[1].ID, "x maps to the unknown token")
}

func TestTokenizeByteOffsetsWithMultibyteRunes(t *testing.T) {
	m := testModel(t)

	// ▁ is 3 bytes long; offsets must be byte spans, not rune counts.
	tokens, err := m.Tokenize("▁hellow")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, encoding.Offset{Start: 0, End: 9}, tokens[0].Offsets)
	assert.Equal(t, encoding.Offset{Start: 9, End: 10}, tokens[1].Offsets)
}

func TestTokenizeEmptyPiece(t *testing.T) {
	m := testModel(t)
	tokens, err := m.Tokenize("")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestNoUnkConfigured(t *testing.T) {
	m, err := New(map[string]uint32{"a": 0}, "")
	require.NoError(t, err)
	_, err = m.Tokenize("ab")
	assert.Error(t, err)
}
