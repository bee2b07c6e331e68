// Package api defines the pipeline stage contracts.
// It's a small leaf package so that stage implementations and the tokenizer
// orchestrator can depend on the contracts without importing each other.
//
// A tokenization pipeline runs Normalizer → PreTokenizer → Model →
// PostProcessor on encode, and Decoder on decode. Exactly one Model is
// mandatory per tokenizer; every other stage is optional. Implementations
// must be safe for concurrent use once constructed: the orchestrator shares
// them across goroutines without locking.
package api

import (
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/pkg/errors"
)

// Error kinds surfaced by the pipeline. Stage implementations wrap these
// (with github.com/pkg/errors) so callers can test with errors.Is while
// still getting contextual messages.
var (
	// ErrInvalidInput marks malformed text or ids given to encode/decode.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidToken marks an id with no vocabulary mapping during decode.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidConfiguration marks inconsistently assembled stages.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEncodingFailed marks a stage that could not produce output on encode.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDecodingFailed marks a stage that could not produce output on decode.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrVocabularyFull marks a vocabulary that cannot accept more tokens.
	// Raised by Model implementations with bounded vocabularies; the pipeline
	// propagates it unchanged.
	ErrVocabularyFull = errors.New("vocabulary full")
)

// Normalizer transforms raw text before pre-tokenization (Unicode
// normalization, casing, accent stripping, ...). It must fail explicitly
// rather than silently pass through input it cannot handle.
type Normalizer interface {
	Normalize(text string) (string, error)
}

// PreToken is one piece produced by pre-tokenization: a substring and its
// byte span in the text the pre-tokenizer received.
type PreToken struct {
	Value   string
	Offsets encoding.Offset
}

// PreTokenizer splits text into an ordered sequence of pieces, each fed
// individually to the Model.
type PreTokenizer interface {
	PreTokenize(text string) ([]PreToken, error)
}

// Model turns one pre-tokenized piece into tokens and exposes vocabulary
// lookups. Token offsets are relative to the piece; the orchestrator shifts
// them into text coordinates and assigns word indices.
//
// An empty piece must yield an empty token slice, not an error.
type Model interface {
	Tokenize(piece string) ([]encoding.Token, error)

	// TokenToID returns the id for the given token text, if known.
	TokenToID(token string) (id uint32, ok bool)

	// IDToToken returns the token text for the given id, if known.
	IDToToken(id uint32) (token string, ok bool)

	// VocabSize returns the number of entries in the vocabulary.
	VocabSize() int

	// Vocab returns the full token→id mapping. The returned map must not be
	// mutated by the caller.
	Vocab() map[string]uint32
}

// PostProcessor finalizes one encoding (or a pair of them, for tasks like
// question answering that encode two sequences together): it inserts special
// tokens, assigns type ids across the pair and keeps the attention mask
// correct. Implementations build on Encoding.Merge and return a new Encoding;
// the inputs are not modified.
type PostProcessor interface {
	Process(enc, pair *encoding.Encoding, addSpecialTokens bool) (*encoding.Encoding, error)

	// AddedTokensCount returns how many special tokens Process inserts for a
	// single sequence (isPair false) or a pair (isPair true), so truncation
	// can reserve room for them.
	AddedTokensCount(isPair bool) int
}

// Decoder turns an ordered sequence of token texts back into a string,
// undoing tokenization artifacts (continuation markers, byte-level escaping,
// metaspace substitution, ...).
type Decoder interface {
	Decode(tokens []string) (string, error)
}
