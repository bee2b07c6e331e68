package tokenizers

import (
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/encoding"
)

// AddedVocabulary holds user-registered whole-token strings mapped to ids
// reserved above the model's vocabulary. Registered tokens are carved out of
// the input before pre-tokenization, so the model never splits them.
type AddedVocabulary struct {
	tokens  map[string]uint32
	ids     map[uint32]string
	special map[uint32]bool

	// contents sorted by decreasing length, so extraction prefers the
	// longest registered token at any position.
	byLength []string

	// nextID is the next id to allocate, valid once hasNext is set. It starts
	// above the model's highest id, so sparse vocabularies (ids not dense in
	// [0, VocabSize)) cannot collide with added tokens.
	nextID  uint32
	hasNext bool
}

// NewAddedVocabulary returns an empty added-vocabulary table.
func NewAddedVocabulary() *AddedVocabulary {
	return &AddedVocabulary{
		tokens:  make(map[string]uint32),
		ids:     make(map[uint32]string),
		special: make(map[uint32]bool),
	}
}

// Add registers contents as whole tokens, allocating ids right above the
// model's highest id and any previously added tokens. Already-registered
// contents and contents already in the model's vocabulary are skipped (the
// model's own id keeps winning for the latter). It returns the number of
// tokens actually added.
func (a *AddedVocabulary) Add(model api.Model, contents []string, special bool) int {
	added := 0
	for _, content := range contents {
		if content == "" {
			continue
		}
		if _, ok := a.tokens[content]; ok {
			continue
		}
		if id, ok := model.TokenToID(content); ok {
			// Already a model token: just remember the special flag so
			// decode can skip it.
			if special {
				a.special[id] = true
			}
			continue
		}
		id := a.allocateID(model)
		a.tokens[content] = id
		a.ids[id] = content
		if special {
			a.special[id] = true
		}
		a.byLength = append(a.byLength, content)
		added++
	}
	sort.Slice(a.byLength, func(i, j int) bool {
		return len(a.byLength[i]) > len(a.byLength[j])
	})
	if added > 0 {
		klog.V(1).Infof("added %d token(s) to the added-vocabulary (special=%v), now %d total",
			added, special, len(a.tokens))
	}
	return added
}

// allocateID hands out the next free id. The base is computed once, from the
// model's highest id (at least VocabSize, for empty vocabularies).
func (a *AddedVocabulary) allocateID(model api.Model) uint32 {
	if !a.hasNext {
		next := uint32(model.VocabSize())
		for _, id := range model.Vocab() {
			if id >= next {
				next = id + 1
			}
		}
		a.nextID = next
		a.hasNext = true
	}
	id := a.nextID
	a.nextID++
	return id
}

// Len returns the number of added tokens.
func (a *AddedVocabulary) Len() int {
	return len(a.tokens)
}

// TokenToID returns the id of a registered token, if present.
func (a *AddedVocabulary) TokenToID(content string) (uint32, bool) {
	id, ok := a.tokens[content]
	return id, ok
}

// IDToToken returns the content of a registered id, if present.
func (a *AddedVocabulary) IDToToken(id uint32) (string, bool) {
	content, ok := a.ids[id]
	return content, ok
}

// IsSpecial reports whether id belongs to a token registered as special.
func (a *AddedVocabulary) IsSpecial(id uint32) bool {
	return a.special[id]
}

// segment is a slice of the input text: either a matched added token or a
// stretch of ordinary text for the pipeline to process.
type segment struct {
	text  string
	start int // byte offset in the original input
	id    uint32
	added bool
}

// extract splits text around registered tokens. At every position the
// longest registered token wins; the text between matches is returned as
// ordinary segments.
func (a *AddedVocabulary) extract(text string) []segment {
	if len(a.byLength) == 0 {
		return []segment{{text: text}}
	}
	var segments []segment
	pos := 0
	for pos < len(text) {
		matchPos, matchContent := a.findNext(text, pos)
		if matchPos < 0 {
			break
		}
		if matchPos > pos {
			segments = append(segments, segment{text: text[pos:matchPos], start: pos})
		}
		segments = append(segments, segment{
			text:  matchContent,
			start: matchPos,
			id:    a.tokens[matchContent],
			added: true,
		})
		pos = matchPos + len(matchContent)
	}
	if pos < len(text) {
		segments = append(segments, segment{text: text[pos:], start: pos})
	}
	if segments == nil {
		segments = []segment{{text: text}}
	}
	return segments
}

// findNext locates the earliest match of any registered token at or after
// pos. Ties at the same position go to the longer token because byLength is
// scanned longest first.
func (a *AddedVocabulary) findNext(text string, pos int) (int, string) {
	best := -1
	var bestContent string
	for _, content := range a.byLength {
		idx := indexFrom(text, content, pos)
		if idx < 0 {
			continue
		}
		if best == -1 || idx < best {
			best = idx
			bestContent = content
		}
	}
	return best, bestContent
}

func indexFrom(text, substr string, from int) int {
	if from >= len(text) {
		return -1
	}
	idx := strings.Index(text[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// token builds the Encoding token for a matched added-token segment.
func (s segment) token(special bool) encoding.Token {
	return encoding.Token{
		ID:      s.id,
		Value:   s.text,
		Offsets: encoding.Offset{Start: s.start, End: s.start + len(s.text)},
		Word:    encoding.NoWord,
		Special: special,
	}
}
