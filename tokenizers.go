// Package tokenizers implements a tokenization pipeline in pure Go:
// Normalizer → PreTokenizer → Model → PostProcessor on encode, Decoder on
// decode, with padding and truncation applied to the resulting Encoding.
//
// The Model is the only mandatory stage; every other stage is optional and
// defaults to a sensible identity behavior. Once assembled, a Tokenizer is
// safe for concurrent use: Encode and Decode share only read-only
// configuration.
package tokenizers

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
)

// TruncationParams configures truncation of encodings that exceed MaxLength.
type TruncationParams struct {
	MaxLength int
	Direction encoding.Direction
	// Stride is the window overlap that overflow encodings would use; kept
	// for configuration fidelity, overflow encodings are not generated.
	Stride int
}

// PaddingStrategy selects what length to pad to.
type PaddingStrategy uint8

const (
	// PadLongest pads every encoding of a batch to the batch's longest
	// member. It has no effect on single-sequence encodes.
	PadLongest PaddingStrategy = iota
	// PadFixed pads to a fixed length.
	PadFixed
)

//go:generate stringer -type=PaddingStrategy -trimprefix=Pad -output=padding_string.go .

// PaddingParams configures padding of encodings.
type PaddingParams struct {
	Strategy  PaddingStrategy
	Length    int // target length, used by PadFixed
	Direction encoding.Direction
	PadID     uint32
	PadTypeID uint32
	PadToken  string // token text for filler slots, "[PAD]" when empty
	// PadToMultipleOf snaps the target length up to the next multiple, when
	// non-zero.
	PadToMultipleOf int
}

// Tokenizer orchestrates the pipeline stages and owns the padding and
// truncation configuration plus the added-vocabulary table.
type Tokenizer struct {
	model         api.Model
	normalizer    api.Normalizer
	preTokenizer  api.PreTokenizer
	postProcessor api.PostProcessor
	decoder       api.Decoder

	truncation *TruncationParams
	padding    *PaddingParams

	added *AddedVocabulary
}

// New creates a Tokenizer around the given model, with no other stages and
// no padding or truncation configured. Configure with the With* methods,
// which return the Tokenizer for chaining.
func New(model api.Model) *Tokenizer {
	return &Tokenizer{
		model: model,
		added: NewAddedVocabulary(),
	}
}

// WithNormalizer sets the normalizer stage.
func (t *Tokenizer) WithNormalizer(n api.Normalizer) *Tokenizer {
	t.normalizer = n
	return t
}

// WithPreTokenizer sets the pre-tokenizer stage.
func (t *Tokenizer) WithPreTokenizer(pt api.PreTokenizer) *Tokenizer {
	t.preTokenizer = pt
	return t
}

// WithPostProcessor sets the post-processor stage.
func (t *Tokenizer) WithPostProcessor(pp api.PostProcessor) *Tokenizer {
	t.postProcessor = pp
	return t
}

// WithDecoder sets the decoder stage.
func (t *Tokenizer) WithDecoder(d api.Decoder) *Tokenizer {
	t.decoder = d
	return t
}

// WithTruncation enables truncation with the given parameters.
func (t *Tokenizer) WithTruncation(params TruncationParams) *Tokenizer {
	t.truncation = &params
	return t
}

// WithNoTruncation disables truncation.
func (t *Tokenizer) WithNoTruncation() *Tokenizer {
	t.truncation = nil
	return t
}

// WithPadding enables padding with the given parameters.
func (t *Tokenizer) WithPadding(params PaddingParams) *Tokenizer {
	if params.PadToken == "" {
		params.PadToken = "[PAD]"
	}
	t.padding = &params
	return t
}

// WithNoPadding disables padding.
func (t *Tokenizer) WithNoPadding() *Tokenizer {
	t.padding = nil
	return t
}

// Model returns the tokenizer's model.
func (t *Tokenizer) Model() api.Model {
	return t.model
}

// AddedVocabulary returns the added-vocabulary table.
func (t *Tokenizer) AddedVocabulary() *AddedVocabulary {
	return t.added
}

// AddTokens registers contents as ordinary added tokens, matched as whole
// units before pre-tokenization. It returns how many were new.
func (t *Tokenizer) AddTokens(contents ...string) int {
	return t.added.Add(t.model, contents, false)
}

// AddSpecialTokens registers contents as special added tokens: matched as
// whole units on encode and skipped by Decode when skipSpecialTokens is set.
func (t *Tokenizer) AddSpecialTokens(contents ...string) int {
	return t.added.Add(t.model, contents, true)
}

// TokenToID looks the token text up in the added vocabulary first, then in
// the model.
func (t *Tokenizer) TokenToID(token string) (uint32, bool) {
	if id, ok := t.added.TokenToID(token); ok {
		return id, true
	}
	return t.model.TokenToID(token)
}

// IDToToken resolves the id through the added vocabulary first, then the
// model.
func (t *Tokenizer) IDToToken(id uint32) (string, bool) {
	if token, ok := t.added.IDToToken(id); ok {
		return token, true
	}
	return t.model.IDToToken(id)
}

// VocabSize returns the model vocabulary size plus the added tokens.
func (t *Tokenizer) VocabSize() int {
	return t.model.VocabSize() + t.added.Len()
}

// Encode runs the full pipeline on one input: normalize, pre-tokenize,
// tokenize each piece, assemble one Encoding, post-process, then truncate
// and pad per the configured parameters (truncation first, so padding
// targets account for inserted special tokens).
//
// Registered added tokens are carved out of the input before the pipeline
// sees it. Any stage failure aborts the encode; no partial Encoding is
// returned.
func (t *Tokenizer) Encode(input string, addSpecialTokens bool) (*encoding.Encoding, error) {
	enc, err := t.encodeSequence(input, 0)
	if err != nil {
		return nil, err
	}
	return t.finalize(enc, nil, addSpecialTokens)
}

// EncodePair encodes two sequences together, as used for entailment or
// question-answering inputs. The pair is handed to the post-processor, which
// lays out special tokens and type ids across both.
func (t *Tokenizer) EncodePair(first, second string, addSpecialTokens bool) (*encoding.Encoding, error) {
	enc, err := t.encodeSequence(first, 0)
	if err != nil {
		return nil, err
	}
	pair, err := t.encodeSequence(second, 1)
	if err != nil {
		return nil, err
	}
	return t.finalize(enc, pair, addSpecialTokens)
}

// encodeSequence runs normalize → pre-tokenize → model over one input and
// assembles the resulting Encoding, before any post-processing.
func (t *Tokenizer) encodeSequence(input string, typeID uint32) (*encoding.Encoding, error) {
	if t.model == nil {
		return nil, errors.Wrapf(api.ErrInvalidConfiguration, "tokenizer has no model")
	}

	var tokens []encoding.Token
	word := 0
	for _, seg := range t.added.extract(input) {
		if seg.added {
			tok := seg.token(t.added.IsSpecial(seg.id))
			tok.Word = word
			tok.TypeID = typeID
			tokens = append(tokens, tok)
			word++
			continue
		}

		text := seg.text
		if t.normalizer != nil {
			var err error
			text, err = t.normalizer.Normalize(text)
			if err != nil {
				return nil, errors.WithMessagef(err, "normalizing input")
			}
		}

		pieces, err := t.preTokenizePieces(text)
		if err != nil {
			return nil, errors.WithMessagef(err, "pre-tokenizing input")
		}

		for _, piece := range pieces {
			pieceTokens, err := t.model.Tokenize(piece.Value)
			if err != nil {
				return nil, errors.WithMessagef(err, "tokenizing piece %q", piece.Value)
			}
			if len(pieceTokens) == 0 {
				continue
			}
			for _, tok := range pieceTokens {
				tok.Offsets = tok.Offsets.Shift(piece.Offsets.Start + seg.start)
				tok.Word = word
				tok.TypeID = typeID
				tokens = append(tokens, tok)
			}
			word++
		}
	}
	return encoding.NewFromTokens(tokens), nil
}

// preTokenizePieces applies the configured pre-tokenizer, or treats the
// whole text as a single piece when none is set.
func (t *Tokenizer) preTokenizePieces(text string) ([]api.PreToken, error) {
	if t.preTokenizer == nil {
		if text == "" {
			return nil, nil
		}
		return []api.PreToken{{Value: text, Offsets: encoding.Offset{Start: 0, End: len(text)}}}, nil
	}
	return t.preTokenizer.PreTokenize(text)
}

// finalize post-processes, truncates and pads an assembled encoding (pair
// may be nil).
func (t *Tokenizer) finalize(enc, pair *encoding.Encoding, addSpecialTokens bool) (*encoding.Encoding, error) {
	result := enc
	if t.postProcessor != nil {
		var err error
		result, err = t.postProcessor.Process(enc, pair, addSpecialTokens)
		if err != nil {
			return nil, errors.WithMessagef(err, "post-processing")
		}
	} else if pair != nil {
		result = enc.Clone()
		result.Merge(pair, true)
	}

	if t.truncation != nil {
		if err := result.Truncate(t.truncation.MaxLength, t.truncation.Stride, t.truncation.Direction); err != nil {
			return nil, err
		}
	}
	if t.padding != nil && t.padding.Strategy == PadFixed {
		t.padding.apply(result, t.padding.Length)
	}
	return result, nil
}

// apply pads enc to the target length, snapped up to PadToMultipleOf.
func (p *PaddingParams) apply(enc *encoding.Encoding, target int) {
	if p.PadToMultipleOf > 0 && target%p.PadToMultipleOf != 0 {
		target += p.PadToMultipleOf - target%p.PadToMultipleOf
	}
	enc.Pad(target, p.PadID, p.PadTypeID, p.PadToken, p.Direction)
}

// Decode maps ids back to token texts and runs the decoder over them. Ids
// with no mapping in either the added vocabulary or the model are an error.
// With skipSpecialTokens set, ids of registered special tokens are dropped
// before decoding.
func (t *Tokenizer) Decode(ids []uint32, skipSpecialTokens bool) (string, error) {
	if t.model == nil {
		return "", errors.Wrapf(api.ErrInvalidConfiguration, "tokenizer has no model")
	}
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		if skipSpecialTokens && t.added.IsSpecial(id) {
			continue
		}
		token, ok := t.IDToToken(id)
		if !ok {
			return "", errors.Wrapf(api.ErrInvalidToken, "id %d has no token mapping", id)
		}
		tokens = append(tokens, token)
	}
	if t.decoder == nil {
		return strings.Join(tokens, " "), nil
	}
	text, err := t.decoder.Decode(tokens)
	if err != nil {
		return "", errors.Wrapf(api.ErrDecodingFailed, "decoding %d token(s): %s", len(tokens), err)
	}
	return text, nil
}
