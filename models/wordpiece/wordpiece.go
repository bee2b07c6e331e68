// Package wordpiece implements the WordPiece model used by BERT-family
// tokenizers: greedy longest-prefix matching, with continuation pieces
// carrying a subword prefix ("##" by default).
package wordpiece

import (
	"unicode/utf8"

	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/pkg/errors"
)

const (
	// DefaultContinuingSubwordPrefix marks non-initial subword pieces.
	DefaultContinuingSubwordPrefix = "##"

	// DefaultMaxInputCharsPerWord bounds the number of characters (runes) of
	// words the model will attempt to split; longer words map to the unknown
	// token.
	DefaultMaxInputCharsPerWord = 100
)

// Options configures a WordPiece model.
type Options struct {
	UnkToken                string
	ContinuingSubwordPrefix string
	MaxInputCharsPerWord    int
}

// Model is a WordPiece tokenization model.
type Model struct {
	vocab     map[string]uint32
	idToToken map[uint32]string

	unkToken string
	unkID    uint32
	hasUnk   bool

	prefix   string
	maxChars int
}

var _ api.Model = &Model{}

// New builds a WordPiece model from a vocabulary. The zero Options value
// selects the defaults; an UnkToken not present in the vocabulary is an
// error.
func New(vocab map[string]uint32, opts Options) (*Model, error) {
	m := &Model{
		vocab:     vocab,
		idToToken: make(map[uint32]string, len(vocab)),
		unkToken:  opts.UnkToken,
		prefix:    opts.ContinuingSubwordPrefix,
		maxChars:  opts.MaxInputCharsPerWord,
	}
	if m.prefix == "" {
		m.prefix = DefaultContinuingSubwordPrefix
	}
	if m.maxChars == 0 {
		m.maxChars = DefaultMaxInputCharsPerWord
	}
	for token, id := range vocab {
		m.idToToken[id] = token
	}
	if m.unkToken != "" {
		id, ok := vocab[m.unkToken]
		if !ok {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"unknown-token %q is not in the vocabulary", m.unkToken)
		}
		m.unkID = id
		m.hasUnk = true
	}
	return m, nil
}

// Tokenize splits one piece greedily: at each position it takes the longest
// vocabulary entry (continuation-prefixed after the first). When any
// position has no match the whole word collapses to the unknown token.
// Offsets are byte spans within the piece.
func (m *Model) Tokenize(piece string) ([]encoding.Token, error) {
	if piece == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(piece) > m.maxChars {
		return m.unknown(piece)
	}

	var tokens []encoding.Token
	start := 0
	for start < len(piece) {
		end := len(piece)
		found := false
		for start < end {
			substr := piece[start:end]
			if start > 0 {
				substr = m.prefix + substr
			}
			if id, ok := m.vocab[substr]; ok {
				tokens = append(tokens, encoding.Token{
					ID:      id,
					Value:   substr,
					Offsets: encoding.Offset{Start: start, End: end},
					Word:    encoding.NoWord,
				})
				found = true
				break
			}
			end--
		}
		if !found {
			return m.unknown(piece)
		}
		start = end
	}
	return tokens, nil
}

func (m *Model) unknown(piece string) ([]encoding.Token, error) {
	if !m.hasUnk {
		return nil, errors.Wrapf(api.ErrEncodingFailed,
			"piece %q cannot be tokenized and no unknown-token is configured", piece)
	}
	return []encoding.Token{{
		ID:      m.unkID,
		Value:   m.unkToken,
		Offsets: encoding.Offset{Start: 0, End: len(piece)},
		Word:    encoding.NoWord,
	}}, nil
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
