// Package unigram implements a Unigram tokenization model over a scored
// vocabulary, segmenting each piece by greedy longest-match with a
// single-character fallback.
package unigram

import (
	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/pkg/errors"
)

// Model is a Unigram tokenization model.
type Model struct {
	vocab     map[string]uint32
	idToToken map[uint32]string

	unkToken string
	unkID    uint32
	hasUnk   bool
}

var _ api.Model = &Model{}

// New builds a Unigram model from a vocabulary. An unkToken not present in
// the vocabulary is an error; pass "" for no unknown token.
func New(vocab map[string]uint32, unkToken string) (*Model, error) {
	m := &Model{
		vocab:     vocab,
		idToToken: make(map[uint32]string, len(vocab)),
		unkToken:  unkToken,
	}
	for token, id := range vocab {
		m.idToToken[id] = token
	}
	if unkToken != "" {
		id, ok := vocab[unkToken]
		if !ok {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"unknown-token %q is not in the vocabulary", unkToken)
		}
		m.unkID = id
		m.hasUnk = true
	}
	return m, nil
}

// Tokenize segments one piece by repeatedly taking the longest vocabulary
// entry at the current position, falling back to a single character (or the
// unknown token) when nothing matches. Offsets are byte spans within the
// piece.
//
// The reference Unigram algorithm scores segmentations with a Viterbi
// lattice; greedy longest-match is a close approximation for inference-time
// vocabularies and needs no per-token scores.
func (m *Model) Tokenize(piece string) ([]encoding.Token, error) {
	if piece == "" {
		return nil, nil
	}

	var tokens []encoding.Token
	runes := []rune(piece)
	// Byte position of each rune, so spans can be reported in bytes.
	byteAt := make([]int, len(runes)+1)
	pos := 0
	for i, r := range runes {
		byteAt[i] = pos
		pos += len(string(r))
	}
	byteAt[len(runes)] = pos

	start := 0
	for start < len(runes) {
		matched := false
		for end := len(runes); end > start; end-- {
			substr := string(runes[start:end])
			if id, ok := m.vocab[substr]; ok {
				tokens = append(tokens, encoding.Token{
					ID:      id,
					Value:   substr,
					Offsets: encoding.Offset{Start: byteAt[start], End: byteAt[end]},
					Word:    encoding.NoWord,
				})
				start = end
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		span := encoding.Offset{Start: byteAt[start], End: byteAt[start+1]}
		char := string(runes[start])
		if id, ok := m.vocab[char]; ok {
			tokens = append(tokens, encoding.Token{ID: id, Value: char, Offsets: span, Word: encoding.NoWord})
		} else if m.hasUnk {
			tokens = append(tokens, encoding.Token{ID: m.unkID, Value: m.unkToken, Offsets: span, Word: encoding.NoWord})
		} else {
			return nil, errors.Wrapf(api.ErrEncodingFailed,
				"character %q of piece %q is not in the vocabulary and no unknown-token is configured", char, piece)
		}
		start++
	}
	return tokens, nil
}

// TokenToID returns the id for the given token text, if in the vocabulary.
func (m *Model) TokenToID(token string) (uint32, bool) {
	id, ok := m.vocab[token]
	return id, ok
}

// IDToToken returns the token text for the given id, if in the vocabulary.
func (m *Model) IDToToken(id uint32) (string, bool) {
	token, ok := m.idToToken[id]
	return token, ok
}

// VocabSize returns the number of vocabulary entries.
func (m *Model) VocabSize() int {
	return len(m.vocab)
}

// Vocab returns the token→id mapping. The map is shared, not copied; callers
// must not mutate it.
func (m *Model) Vocab() map[string]uint32 {
	return m.vocab
}
