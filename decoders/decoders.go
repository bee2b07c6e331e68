// Package decoders provides the de-tokenization stage: turning a sequence of
// token texts back into a string by undoing the artifacts the model and
// pre-tokenizer introduced (continuation prefixes, byte-level escaping,
// metaspace markers, end-of-word suffixes).
//
// Every decoder here also supports per-token chaining, so a Sequence can run
// several of them in order without losing token boundaries between stages.
package decoders

import (
	"strings"

	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/internal/bytelevel"
)

// chainDecoder transforms a token list into a token list, keeping boundaries
// so a later stage still sees individual tokens.
type chainDecoder interface {
	decodeChain(tokens []string) []string
}

// WordPiece joins tokens with spaces, gluing continuation pieces (those
// starting with the subword prefix) onto the previous token.
type WordPiece struct {
	Prefix string // continuation prefix, "##" when empty
}

var _ api.Decoder = WordPiece{}
var _ chainDecoder = WordPiece{}

func (d WordPiece) Decode(tokens []string) (string, error) {
	return strings.Join(d.decodeChain(tokens), ""), nil
}

func (d WordPiece) decodeChain(tokens []string) []string {
	prefix := d.Prefix
	if prefix == "" {
		prefix = "##"
	}
	result := make([]string, len(tokens))
	for i, token := range tokens {
		switch {
		case strings.HasPrefix(token, prefix):
			result[i] = strings.TrimPrefix(token, prefix)
		case i > 0:
			result[i] = " " + token
		default:
			result[i] = token
		}
	}
	return result
}

// ByteLevel maps each token from the byte-level alphabet back to raw bytes.
type ByteLevel struct{}

var _ api.Decoder = ByteLevel{}
var _ chainDecoder = ByteLevel{}

func (d ByteLevel) Decode(tokens []string) (string, error) {
	return strings.Join(d.decodeChain(tokens), ""), nil
}

func (ByteLevel) decodeChain(tokens []string) []string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		result[i] = bytelevel.Decode(token)
	}
	return result
}

// Metaspace replaces the metaspace marker with spaces and trims the leading
// one that AddPrefixSpace introduced.
type Metaspace struct {
	Replacement string // marker, "▁" when empty
}

var _ api.Decoder = Metaspace{}
var _ chainDecoder = Metaspace{}

func (d Metaspace) Decode(tokens []string) (string, error) {
	return strings.Join(d.decodeChain(tokens), ""), nil
}

func (d Metaspace) decodeChain(tokens []string) []string {
	replacement := d.Replacement
	if replacement == "" {
		replacement = "▁"
	}
	result := make([]string, len(tokens))
	for i, token := range tokens {
		decoded := strings.ReplaceAll(token, replacement, " ")
		if i == 0 {
			decoded = strings.TrimPrefix(decoded, " ")
		}
		result[i] = decoded
	}
	return result
}

// BPE joins tokens carrying an end-of-word suffix, turning each suffix into
// a separating space.
type BPE struct {
	Suffix string // end-of-word suffix, e.g. "</w>"
}

var _ api.Decoder = BPE{}
var _ chainDecoder = BPE{}

func (d BPE) Decode(tokens []string) (string, error) {
	return strings.Join(d.decodeChain(tokens), ""), nil
}

func (d BPE) decodeChain(tokens []string) []string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		if d.Suffix != "" && strings.HasSuffix(token, d.Suffix) {
			token = strings.TrimSuffix(token, d.Suffix)
			if i < len(tokens)-1 {
				token += " "
			}
		}
		result[i] = token
	}
	return result
}

// Replace substitutes a literal pattern in every token.
type Replace struct {
	Pattern string
	Content string
}

var _ api.Decoder = Replace{}
var _ chainDecoder = Replace{}

func (d Replace) Decode(tokens []string) (string, error) {
	return strings.Join(d.decodeChain(tokens), ""), nil
}

func (d Replace) decodeChain(tokens []string) []string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		result[i] = strings.ReplaceAll(token, d.Pattern, d.Content)
	}
	return result
}

// Sequence chains decoders. Stages from this package transform the token
// list element-wise, so boundary-sensitive decoders later in the chain still
// see individual tokens; a foreign api.Decoder collapses the list to its
// single decoded string.
type Sequence []api.Decoder

var _ api.Decoder = Sequence{}

func (s Sequence) Decode(tokens []string) (string, error) {
	for _, d := range s {
		if cd, ok := d.(chainDecoder); ok {
			tokens = cd.decodeChain(tokens)
			continue
		}
		text, err := d.Decode(tokens)
		if err != nil {
			return "", err
		}
		tokens = []string{text}
	}
	return strings.Join(tokens, ""), nil
}
