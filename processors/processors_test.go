package processors

import (
	"testing"

	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqEncoding(ids ...uint32) *encoding.Encoding {
	tokens := make([]encoding.Token, len(ids))
	for i, id := range ids {
		tokens[i] = encoding.Token{
			ID:      id,
			Value:   "tok",
			Offsets: encoding.Offset{Start: i, End: i + 1},
			Word:    i,
		}
	}
	return encoding.NewFromTokens(tokens)
}

func TestBertSingle(t *testing.T) {
	p := NewBert("[CLS]", "[SEP]", 101, 102)
	enc := seqEncoding(7, 8)

	got, err := p.Process(enc, nil, true)
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, []uint32{101, 7, 8, 102}, got.IDs)
	assert.Equal(t, []uint32{0, 0, 0, 0}, got.TypeIDs)
	assert.Equal(t, []uint32{1, 0, 0, 1}, got.SpecialTokensMask)
	assert.Equal(t, []uint32{1, 1, 1, 1}, got.AttentionMask)

	// Input untouched.
	assert.Equal(t, []uint32{7, 8}, enc.IDs)
	assert.Equal(t, 2, enc.Len())
}

func TestBertPair(t *testing.T) {
	p := NewBert("[CLS]", "[SEP]", 101, 102)
	a := seqEncoding(7, 8)
	b := seqEncoding(9)

	got, err := p.Process(a, b, true)
	require.NoError(t, err)

	assert.Equal(t, []uint32{101, 7, 8, 102, 9, 102}, got.IDs)
	assert.Equal(t, []uint32{0, 0, 0, 0, 1, 1}, got.TypeIDs)
	assert.Equal(t, []uint32{1, 0, 0, 1, 0, 1}, got.SpecialTokensMask)

	// The pair keeps its own type ids.
	assert.Equal(t, []uint32{0}, b.TypeIDs)
}

func TestBertWithoutSpecialTokens(t *testing.T) {
	p := NewBert("[CLS]", "[SEP]", 101, 102)

	got, err := p.Process(seqEncoding(7), seqEncoding(9), false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{7, 9}, got.IDs)
	assert.Equal(t, []uint32{0, 1}, got.TypeIDs)
}

func TestRobertaPair(t *testing.T) {
	p := NewRoberta("<s>", "</s>", 0, 2)

	got, err := p.Process(seqEncoding(7), seqEncoding(9), true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 7, 2, 2, 9, 2}, got.IDs)
	assert.Equal(t, []uint32{0, 0, 0, 0, 0, 0}, got.TypeIDs)
}

func TestUnregisteredSpecialToken(t *testing.T) {
	p := &Template{
		Single:        []Piece{{Special: "[CLS]"}, {Sequence: SeqA}},
		SpecialTokens: map[string]uint32{},
	}
	_, err := p.Process(seqEncoding(7), nil, true)
	assert.Error(t, err)
}

func TestPairWithoutPairTemplate(t *testing.T) {
	p := &Template{
		Single:        []Piece{{Sequence: SeqA}},
		SpecialTokens: map[string]uint32{},
	}
	_, err := p.Process(seqEncoding(7), seqEncoding(8), true)
	assert.Error(t, err)
}

func TestAddedTokensCount(t *testing.T) {
	p := NewBert("[CLS]", "[SEP]", 101, 102)
	assert.Equal(t, 2, p.AddedTokensCount(false))
	assert.Equal(t, 3, p.AddedTokensCount(true))
}
