// Package pretokenizers provides the splitters that turn normalized text
// into pieces for the model: whitespace and punctuation based splitting,
// BERT-style splitting, metaspace and byte-level transforms, regex splitting
// and a Sequence combinator.
//
// Every pre-tokenizer reports the byte span of each piece in the text it
// received, so callers can map tokens back to positions.
package pretokenizers

import (
	"regexp"
	"unicode"

	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/gomlx/go-tokenizers/internal/bytelevel"
	"github.com/pkg/errors"
)

// Whitespace splits into runs of word characters and runs of other
// non-whitespace characters, dropping the whitespace itself. "Hello, world"
// becomes ["Hello", ",", "world"].
type Whitespace struct{}

var _ api.PreTokenizer = Whitespace{}

func (Whitespace) PreTokenize(text string) ([]api.PreToken, error) {
	var pieces []api.PreToken
	start := -1
	wasWord := false
	flush := func(end int) {
		if start >= 0 {
			pieces = append(pieces, api.PreToken{
				Value:   text[start:end],
				Offsets: encoding.Offset{Start: start, End: end},
			})
			start = -1
		}
	}
	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isWordRune(r) != wasWord:
			flush(i)
			start = i
			wasWord = isWordRune(r)
		default:
			if start < 0 {
				start = i
				wasWord = isWordRune(r)
			}
		}
	}
	flush(len(text))
	return pieces, nil
}

// WhitespaceSplit splits on whitespace only, like strings.Fields but keeping
// byte spans.
type WhitespaceSplit struct{}

var _ api.PreTokenizer = WhitespaceSplit{}

func (WhitespaceSplit) PreTokenize(text string) ([]api.PreToken, error) {
	var pieces []api.PreToken
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				pieces = append(pieces, api.PreToken{
					Value:   text[start:i],
					Offsets: encoding.Offset{Start: start, End: i},
				})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		pieces = append(pieces, api.PreToken{
			Value:   text[start:],
			Offsets: encoding.Offset{Start: start, End: len(text)},
		})
	}
	return pieces, nil
}

// Bert splits on whitespace and isolates every punctuation character as its
// own piece, the way BERT's reference pre-tokenizer does.
type Bert struct{}

var _ api.PreTokenizer = Bert{}

func (Bert) PreTokenize(text string) ([]api.PreToken, error) {
	var pieces []api.PreToken
	start := -1
	flush := func(end int) {
		if start >= 0 {
			pieces = append(pieces, api.PreToken{
				Value:   text[start:end],
				Offsets: encoding.Offset{Start: start, End: end},
			})
			start = -1
		}
	}
	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isPunctuation(r):
			flush(i)
			end := i + len(string(r))
			pieces = append(pieces, api.PreToken{
				Value:   text[i:end],
				Offsets: encoding.Offset{Start: i, End: end},
			})
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(text))
	return pieces, nil
}

// Punctuation isolates punctuation characters and keeps everything else
// contiguous, whitespace included.
type Punctuation struct{}

var _ api.PreTokenizer = Punctuation{}

func (Punctuation) PreTokenize(text string) ([]api.PreToken, error) {
	var pieces []api.PreToken
	start := -1
	for i, r := range text {
		if isPunctuation(r) {
			if start >= 0 {
				pieces = append(pieces, api.PreToken{
					Value:   text[start:i],
					Offsets: encoding.Offset{Start: start, End: i},
				})
				start = -1
			}
			end := i + len(string(r))
			pieces = append(pieces, api.PreToken{
				Value:   text[i:end],
				Offsets: encoding.Offset{Start: i, End: end},
			})
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		pieces = append(pieces, api.PreToken{
			Value:   text[start:],
			Offsets: encoding.Offset{Start: start, End: len(text)},
		})
	}
	return pieces, nil
}

// MetaspaceReplacement is the marker rune (U+2581, "lower one eighth block")
// SentencePiece-style tokenizers substitute for spaces.
const MetaspaceReplacement = "▁"

// Metaspace splits on spaces and prefixes each word with the metaspace
// marker. The reported span of a word includes the space that preceded it.
type Metaspace struct {
	AddPrefixSpace bool
}

var _ api.PreTokenizer = Metaspace{}

func (m Metaspace) PreTokenize(text string) ([]api.PreToken, error) {
	var pieces []api.PreToken
	i := 0
	first := true
	for i < len(text) {
		start := i
		for i < len(text) && text[i] == ' ' {
			i++
		}
		wordStart := i
		for i < len(text) && text[i] != ' ' {
			i++
		}
		if wordStart == i && wordStart == start {
			break
		}
		value := MetaspaceReplacement + text[wordStart:i]
		if first && !m.AddPrefixSpace && start == wordStart {
			// No leading space in the input and none requested.
			value = text[wordStart:i]
		}
		pieces = append(pieces, api.PreToken{
			Value:   value,
			Offsets: encoding.Offset{Start: start, End: i},
		})
		first = false
	}
	return pieces, nil
}

// ByteLevel splits on spaces, attaching each space to the word that follows
// it, and remaps every piece into the GPT-2 byte-level alphabet. Spans refer
// to the raw text, before the remapping.
type ByteLevel struct {
	AddPrefixSpace bool
}

var _ api.PreTokenizer = ByteLevel{}

func (bl ByteLevel) PreTokenize(text string) ([]api.PreToken, error) {
	var pieces []api.PreToken
	prefixed := false
	i := 0
	for i < len(text) {
		start := i
		for i < len(text) && text[i] == ' ' {
			i++
		}
		for i < len(text) && text[i] != ' ' {
			i++
		}
		if start == i {
			break
		}
		raw := text[start:i]
		if bl.AddPrefixSpace && !prefixed && len(raw) > 0 && raw[0] != ' ' {
			raw = " " + raw
		}
		prefixed = true
		pieces = append(pieces, api.PreToken{
			Value:   bytelevel.Encode(raw),
			Offsets: encoding.Offset{Start: start, End: i},
		})
	}
	return pieces, nil
}

// SplitBehavior controls what happens to the regexp matches of a Split
// pre-tokenizer.
type SplitBehavior uint8

const (
	// SplitRemoved drops the matched delimiters.
	SplitRemoved SplitBehavior = iota
	// SplitIsolated keeps each match as its own piece.
	SplitIsolated
)

// Split breaks text around matches of a regular expression.
type Split struct {
	pattern  *regexp.Regexp
	behavior SplitBehavior
}

var _ api.PreTokenizer = &Split{}

// NewSplit compiles the pattern and returns the pre-tokenizer.
func NewSplit(pattern string, behavior SplitBehavior) (*Split, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid split pattern %q", pattern)
	}
	return &Split{pattern: re, behavior: behavior}, nil
}

func (s *Split) PreTokenize(text string) ([]api.PreToken, error) {
	var pieces []api.PreToken
	last := 0
	for _, m := range s.pattern.FindAllStringIndex(text, -1) {
		if m[0] > last {
			pieces = append(pieces, api.PreToken{
				Value:   text[last:m[0]],
				Offsets: encoding.Offset{Start: last, End: m[0]},
			})
		}
		if s.behavior == SplitIsolated && m[1] > m[0] {
			pieces = append(pieces, api.PreToken{
				Value:   text[m[0]:m[1]],
				Offsets: encoding.Offset{Start: m[0], End: m[1]},
			})
		}
		last = m[1]
	}
	if last < len(text) {
		pieces = append(pieces, api.PreToken{
			Value:   text[last:],
			Offsets: encoding.Offset{Start: last, End: len(text)},
		})
	}
	return pieces, nil
}

// Sequence chains pre-tokenizers: each stage re-splits the pieces produced
// by the previous one, with spans shifted back into the original text's
// coordinates.
type Sequence []api.PreTokenizer

var _ api.PreTokenizer = Sequence{}

func (s Sequence) PreTokenize(text string) ([]api.PreToken, error) {
	pieces := []api.PreToken{{Value: text, Offsets: encoding.Offset{Start: 0, End: len(text)}}}
	for _, pt := range s {
		var next []api.PreToken
		for _, piece := range pieces {
			sub, err := pt.PreTokenize(piece.Value)
			if err != nil {
				return nil, err
			}
			for _, p := range sub {
				p.Offsets = p.Offsets.Shift(piece.Offsets.Start)
				next = append(next, p)
			}
		}
		pieces = next
	}
	return pieces, nil
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isPunctuation(r rune) bool {
	// ASCII punctuation first, then the Unicode punctuation categories.
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}
