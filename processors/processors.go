// Package processors provides post-processors: the stage that turns a model
// output Encoding (or a pair of them) into the final sequence, inserting
// special tokens and assigning type ids.
package processors

import (
	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/pkg/errors"
)

// Seq selects which input sequence a template piece refers to.
type Seq uint8

const (
	SeqA Seq = iota + 1
	SeqB
)

// Piece is one element of a processing template: either a special token
// (Special non-empty) or one of the input sequences.
type Piece struct {
	Special  string // special token content, e.g. "[CLS]"
	Sequence Seq    // SeqA or SeqB when Special is empty
	TypeID   uint32 // type id assigned to the piece's tokens
}

// Template is a template-driven post-processor: the Single template lays out
// one sequence, the Pair template two. Special tokens are resolved through
// the SpecialTokens map.
//
// With GrowingOffsets true, sequence pieces after the first are merged with
// Encoding.Merge's offset-growing behavior; by default every piece keeps the
// offsets of the text it was encoded against.
type Template struct {
	Single         []Piece
	Pair           []Piece
	SpecialTokens  map[string]uint32
	GrowingOffsets bool
}

var _ api.PostProcessor = &Template{}

// NewBert returns the BERT layout: "[CLS] A [SEP]" for single sequences and
// "[CLS] A [SEP] B [SEP]" for pairs, with the second sequence and its
// closing separator on type id 1.
func NewBert(cls, sep string, clsID, sepID uint32) *Template {
	return &Template{
		Single: []Piece{
			{Special: cls, TypeID: 0},
			{Sequence: SeqA, TypeID: 0},
			{Special: sep, TypeID: 0},
		},
		Pair: []Piece{
			{Special: cls, TypeID: 0},
			{Sequence: SeqA, TypeID: 0},
			{Special: sep, TypeID: 0},
			{Sequence: SeqB, TypeID: 1},
			{Special: sep, TypeID: 1},
		},
		SpecialTokens: map[string]uint32{cls: clsID, sep: sepID},
	}
}

// NewRoberta returns the RoBERTa layout: "<s> A </s>" and
// "<s> A </s> </s> B </s>", all on type id 0.
func NewRoberta(bos, eos string, bosID, eosID uint32) *Template {
	return &Template{
		Single: []Piece{
			{Special: bos},
			{Sequence: SeqA},
			{Special: eos},
		},
		Pair: []Piece{
			{Special: bos},
			{Sequence: SeqA},
			{Special: eos},
			{Special: eos},
			{Sequence: SeqB},
			{Special: eos},
		},
		SpecialTokens: map[string]uint32{bos: bosID, eos: eosID},
	}
}

// Process lays the inputs out according to the template. The inputs are not
// modified; the result is a fresh Encoding.
func (t *Template) Process(enc, pair *encoding.Encoding, addSpecialTokens bool) (*encoding.Encoding, error) {
	template := t.Single
	if pair != nil {
		template = t.Pair
		if len(template) == 0 {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"a sequence pair was given but the processor has no pair template")
		}
	}

	result := encoding.New()
	seenSequence := false
	for _, piece := range template {
		switch {
		case piece.Special != "":
			if !addSpecialTokens {
				continue
			}
			id, ok := t.SpecialTokens[piece.Special]
			if !ok {
				return nil, errors.Wrapf(api.ErrInvalidConfiguration,
					"special token %q is not registered with the processor", piece.Special)
			}
			result.Merge(encoding.NewFromTokens([]encoding.Token{{
				ID:      id,
				Value:   piece.Special,
				Word:    encoding.NoWord,
				TypeID:  piece.TypeID,
				Special: true,
			}}), false)
		case piece.Sequence == SeqA || piece.Sequence == SeqB:
			src := enc
			if piece.Sequence == SeqB {
				src = pair
				if src == nil {
					return nil, errors.Wrapf(api.ErrInvalidConfiguration,
						"the template references sequence B but no pair was given")
				}
			}
			chunk := src.Clone()
			for i := range chunk.TypeIDs {
				chunk.TypeIDs[i] = piece.TypeID
			}
			result.Merge(chunk, t.GrowingOffsets && seenSequence)
			seenSequence = true
		default:
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"template piece has neither a special token nor a sequence")
		}
	}
	return result, nil
}

// AddedTokensCount returns how many special tokens the single or pair
// template inserts.
func (t *Template) AddedTokensCount(isPair bool) int {
	template := t.Single
	if isPair {
		template = t.Pair
	}
	count := 0
	for _, piece := range template {
		if piece.Special != "" {
			count++
		}
	}
	return count
}
