// Package normalizers provides the text normalizers used ahead of
// pre-tokenization: Unicode normal forms, lower-casing, accent stripping,
// BERT text cleanup, literal replacement and prefixing, plus a Sequence
// combinator.
package normalizers

import (
	"strings"
	"unicode"

	"github.com/gomlx/go-tokenizers/api"
	"golang.org/x/text/unicode/norm"
)

// Lowercase lower-cases the whole text.
type Lowercase struct{}

var _ api.Normalizer = Lowercase{}

func (Lowercase) Normalize(text string) (string, error) {
	return strings.ToLower(text), nil
}

// Unicode applies one of the Unicode normal forms (norm.NFC, norm.NFD,
// norm.NFKC, norm.NFKD).
type Unicode struct {
	Form norm.Form
}

var _ api.Normalizer = Unicode{}

func (u Unicode) Normalize(text string) (string, error) {
	return u.Form.String(text), nil
}

// StripAccents removes combining marks after NFD decomposition, so "café"
// becomes "cafe".
type StripAccents struct{}

var _ api.Normalizer = StripAccents{}

func (StripAccents) Normalize(text string) (string, error) {
	return removeAccents(norm.NFD.String(text)), nil
}

// Bert performs the BERT text cleanup: drops null and control characters,
// canonicalizes whitespace to plain spaces, and optionally strips accents and
// lower-cases.
type Bert struct {
	Lowercase          bool
	StripAccents       bool
	CleanText          bool
	HandleChineseChars bool
}

var _ api.Normalizer = Bert{}

// NewBert returns the default BERT normalizer configuration.
func NewBert(lowercase bool) Bert {
	return Bert{Lowercase: lowercase, StripAccents: lowercase, CleanText: true, HandleChineseChars: true}
}

func (b Bert) Normalize(text string) (string, error) {
	result := text
	if b.CleanText {
		result = cleanText(result)
	}
	if b.HandleChineseChars {
		result = padChineseChars(result)
	}
	if b.StripAccents {
		result = removeAccents(norm.NFD.String(result))
	}
	if b.Lowercase {
		result = strings.ToLower(result)
	}
	return result, nil
}

// Replace substitutes every occurrence of a literal pattern.
type Replace struct {
	Pattern string
	Content string
}

var _ api.Normalizer = Replace{}

func (r Replace) Normalize(text string) (string, error) {
	return strings.ReplaceAll(text, r.Pattern, r.Content), nil
}

// Prepend prefixes the text, unless it already starts with the prefix.
// Used by Llama-style tokenizers to prepend the metaspace marker.
type Prepend struct {
	Prefix string
}

var _ api.Normalizer = Prepend{}

func (p Prepend) Normalize(text string) (string, error) {
	if text == "" || strings.HasPrefix(text, p.Prefix) {
		return text, nil
	}
	return p.Prefix + text, nil
}

// Sequence runs a list of normalizers in order, feeding each one's output to
// the next.
type Sequence []api.Normalizer

var _ api.Normalizer = Sequence{}

func (s Sequence) Normalize(text string) (string, error) {
	var err error
	for _, n := range s {
		text, err = n.Normalize(text)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

func cleanText(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// padChineseChars surrounds CJK ideographs with spaces so that each one is
// pre-tokenized as its own word.
func padChineseChars(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if isChineseChar(r) {
			result.WriteRune(' ')
			result.WriteRune(r)
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func isChineseChar(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}

func removeAccents(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing
			result.WriteRune(r)
		}
	}
	return result.String()
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}
