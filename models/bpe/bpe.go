// Package bpe implements the byte-pair-encoding model used by GPT-2 and
// RoBERTa style tokenizers: a piece starts as per-rune symbols and adjacent
// symbols are repeatedly merged, lowest merge rank first, until no learned
// merge applies.
package bpe

import (
	"strings"

	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/pkg/errors"
)

// Options configures a BPE model.
type Options struct {
	UnkToken        string
	EndOfWordSuffix string
}

// Model is a BPE tokenization model.
type Model struct {
	vocab     map[string]uint32
	idToToken map[uint32]string

	// mergeRanks maps "left right" pairs to their merge priority; lower rank
	// merges first.
	mergeRanks map[string]int

	unkToken string
	unkID    uint32
	hasUnk   bool

	endOfWordSuffix string
}

var _ api.Model = &Model{}

// New builds a BPE model from a vocabulary and an ordered merge list, each
// entry being "left right". An UnkToken not present in the vocabulary is an
// error.
func New(vocab map[string]uint32, merges []string, opts Options) (*Model, error) {
	m := &Model{
		vocab:           vocab,
		idToToken:       make(map[uint32]string, len(vocab)),
		mergeRanks:      make(map[string]int, len(merges)),
		unkToken:        opts.UnkToken,
		endOfWordSuffix: opts.EndOfWordSuffix,
	}
	for token, id := range vocab {
		m.idToToken[id] = token
	}
	for i, merge := range merges {
		m.mergeRanks[merge] = i
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

// symbol is one BPE unit during merging, with its byte span in the piece.
type symbol struct {
	value      string
	start, end int
}

// Tokenize applies the learned merges to one piece. Offsets are byte spans
// within the piece. Symbols left without a vocabulary entry after merging map
// to the unknown token, or fail when none is configured.
func (m *Model) Tokenize(piece string) ([]encoding.Token, error) {
	if piece == "" {
		return nil, nil
	}

	symbols := m.initialSymbols(piece)
	for len(symbols) > 1 {
		bestRank := -1
		bestIdx := -1
		for i := 0; i < len(symbols)-1; i++ {
			pair := symbols[i].value + " " + symbols[i+1].value
			if rank, ok := m.mergeRanks[pair]; ok {
				if bestRank == -1 || rank < bestRank {
					bestRank = rank
					bestIdx = i
				}
			}
		}
		if bestIdx == -1 {
			break
		}
		merged := symbol{
			value: symbols[bestIdx].value + symbols[bestIdx+1].value,
			start: symbols[bestIdx].start,
			end:   symbols[bestIdx+1].end,
		}
		symbols = append(symbols[:bestIdx], append([]symbol{merged}, symbols[bestIdx+2:]...)...)
	}

	tokens := make([]encoding.Token, 0, len(symbols))
	for _, sym := range symbols {
		id, ok := m.vocab[sym.value]
		value := sym.value
		if !ok {
			if !m.hasUnk {
				return nil, errors.Wrapf(api.ErrEncodingFailed,
					"symbol %q of piece %q is not in the vocabulary and no unknown-token is configured",
					sym.value, piece)
			}
			id = m.unkID
			value = m.unkToken
		}
		tokens = append(tokens, encoding.Token{
			ID:      id,
			Value:   value,
			Offsets: encoding.Offset{Start: sym.start, End: sym.end},
			Word:    encoding.NoWord,
		})
	}
	return tokens, nil
}

// initialSymbols splits the piece into per-rune symbols, attaching the
// end-of-word suffix to the last one when configured.
func (m *Model) initialSymbols(piece string) []symbol {
	var symbols []symbol
	for i, r := range piece {
		symbols = append(symbols, symbol{
			value: string(r),
			start: i,
			end:   i + len(string(r)),
		})
	}
	if m.endOfWordSuffix != "" && len(symbols) > 0 {
		last := &symbols[len(symbols)-1]
		if !strings.HasSuffix(last.value, m.endOfWordSuffix) {
			last.value += m.endOfWordSuffix
		}
	}
	return symbols
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
