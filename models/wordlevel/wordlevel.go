// Package wordlevel implements the simplest tokenization model: each
// pre-tokenized piece is looked up whole in the vocabulary, with an optional
// unknown-token fallback.
package wordlevel

import (
	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/pkg/errors"
)

// Model is a word-level tokenization model.
type Model struct {
	vocab     map[string]uint32
	idToToken map[uint32]string

	unkToken string
	unkID    uint32
	hasUnk   bool
}

var _ api.Model = &Model{}

// New builds a word-level model from a vocabulary. An unkToken not present
// in the vocabulary is an error; pass "" for no unknown token.
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

// Tokenize maps the whole piece to a single token.
func (m *Model) Tokenize(piece string) ([]encoding.Token, error) {
	if piece == "" {
		return nil, nil
	}
	span := encoding.Offset{Start: 0, End: len(piece)}
	if id, ok := m.vocab[piece]; ok {
		return []encoding.Token{{ID: id, Value: piece, Offsets: span, Word: encoding.NoWord}}, nil
	}
	if m.hasUnk {
		return []encoding.Token{{ID: m.unkID, Value: m.unkToken, Offsets: span, Word: encoding.NoWord}}, nil
	}
	return nil, errors.Wrapf(api.ErrEncodingFailed,
		"piece %q is not in the vocabulary and no unknown-token is configured", piece)
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
