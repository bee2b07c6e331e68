// Package encoding holds the columnar result of tokenizing one sequence and
// the transformations (merge, pad, truncate) the rest of the pipeline builds
// on.
//
// An Encoding keeps seven parallel slices, one entry per token. The parallel
// layout is deliberate: model-serving code consumes ids and masks as flat
// arrays, and keeping them columnar avoids a row-to-column transpose at the
// boundary. The price is that every mutation must touch all seven slices
// identically; all mutations therefore funnel through the methods here.
package encoding

import "github.com/pkg/errors"

// Direction selects which end of a sequence receives padding, or which end
// loses elements on truncation.
type Direction uint8

const (
	Left  Direction = 0
	Right Direction = 1
)

//go:generate stringer -type=Direction -output=direction_string.go .

// Encoding is the tokenization of one sequence: seven parallel slices, always
// exactly the same length.
//
// Only the methods of this package mutate an Encoding; they keep the
// seven-way length equality intact. Callers that fill the fields directly are
// expected to call Validate before handing the Encoding to anything else.
type Encoding struct {
	IDs               []uint32 // token ids
	TypeIDs           []uint32 // sequence type ids (segment ids)
	Tokens            []string // textual form of each token
	Words             []int    // word index per token, NoWord where absent
	AttentionMask     []uint32 // 1 for real tokens, 0 for padding
	SpecialTokensMask []uint32 // 1 for special (non-content) tokens
	Offsets           []Offset // byte span of each token in its source text
}

// NewFromTokens assembles an Encoding from a Model's token output.
//
// The attention mask is initialized to all ones and the special-tokens mask
// from each token's Special flag.
func NewFromTokens(tokens []Token) *Encoding {
	n := len(tokens)
	e := &Encoding{
		IDs:               make([]uint32, n),
		TypeIDs:           make([]uint32, n),
		Tokens:            make([]string, n),
		Words:             make([]int, n),
		AttentionMask:     make([]uint32, n),
		SpecialTokensMask: make([]uint32, n),
		Offsets:           make([]Offset, n),
	}
	for i, t := range tokens {
		e.IDs[i] = t.ID
		e.TypeIDs[i] = t.TypeID
		e.Tokens[i] = t.Value
		e.Words[i] = t.Word
		e.AttentionMask[i] = 1
		if t.Special {
			e.SpecialTokensMask[i] = 1
		}
		e.Offsets[i] = t.Offsets
	}
	return e
}

// New returns an empty Encoding.
func New() *Encoding {
	return &Encoding{}
}

// Len returns the common length of the seven parallel slices.
func (e *Encoding) Len() int {
	return len(e.IDs)
}

// IsEmpty reports whether the Encoding holds no tokens.
func (e *Encoding) IsEmpty() bool {
	return len(e.IDs) == 0
}

// Validate checks the seven-way length equality. It only needs to be called
// on Encodings whose fields were filled directly, bypassing NewFromTokens.
func (e *Encoding) Validate() error {
	n := len(e.IDs)
	if len(e.TypeIDs) != n || len(e.Tokens) != n || len(e.Words) != n ||
		len(e.AttentionMask) != n || len(e.SpecialTokensMask) != n || len(e.Offsets) != n {
		return errors.Errorf(
			"encoding slices have diverging lengths: ids=%d type_ids=%d tokens=%d words=%d attention_mask=%d special_tokens_mask=%d offsets=%d",
			n, len(e.TypeIDs), len(e.Tokens), len(e.Words),
			len(e.AttentionMask), len(e.SpecialTokensMask), len(e.Offsets))
	}
	return nil
}

// Clone returns a deep copy: the copy owns its own slices and shares no
// storage with e.
func (e *Encoding) Clone() *Encoding {
	n := e.Len()
	c := &Encoding{
		IDs:               make([]uint32, n),
		TypeIDs:           make([]uint32, n),
		Tokens:            make([]string, n),
		Words:             make([]int, n),
		AttentionMask:     make([]uint32, n),
		SpecialTokensMask: make([]uint32, n),
		Offsets:           make([]Offset, n),
	}
	copy(c.IDs, e.IDs)
	copy(c.TypeIDs, e.TypeIDs)
	copy(c.Tokens, e.Tokens)
	copy(c.Words, e.Words)
	copy(c.AttentionMask, e.AttentionMask)
	copy(c.SpecialTokensMask, e.SpecialTokensMask)
	copy(c.Offsets, e.Offsets)
	return c
}

// Merge appends every slice of other onto e, keeping e's elements first.
// other is copied from and left unmodified.
//
// With growingOffsets true and e non-empty, other's offsets are shifted by
// the End of e's last offset before being appended. This models concatenating
// two sequences that were encoded against their own separate input strings
// into one logical offset space, as sequence-pair post-processing does.
func (e *Encoding) Merge(other *Encoding, growingOffsets bool) {
	delta := 0
	if growingOffsets && !e.IsEmpty() {
		delta = e.Offsets[len(e.Offsets)-1].End
	}

	e.IDs = append(e.IDs, other.IDs...)
	e.TypeIDs = append(e.TypeIDs, other.TypeIDs...)
	e.Tokens = append(e.Tokens, other.Tokens...)
	e.Words = append(e.Words, other.Words...)
	e.AttentionMask = append(e.AttentionMask, other.AttentionMask...)
	e.SpecialTokensMask = append(e.SpecialTokensMask, other.SpecialTokensMask...)
	if delta == 0 {
		e.Offsets = append(e.Offsets, other.Offsets...)
	} else {
		for _, o := range other.Offsets {
			e.Offsets = append(e.Offsets, o.Shift(delta))
		}
	}
}

// Pad grows the Encoding to targetLength with filler entries; it is a no-op
// when the Encoding is already at least that long.
//
// Filler entries carry the given pad id, type id and token text, no word
// assignment, attention mask 0, special-tokens mask 1 and a (0,0) offset.
// With direction Left the filler block is inserted before the existing
// elements, with Right it is appended after them; existing elements keep
// their relative order either way.
func (e *Encoding) Pad(targetLength int, padID, padTypeID uint32, padToken string, direction Direction) {
	k := targetLength - e.Len()
	if k <= 0 {
		return
	}

	if direction == Right {
		for i := 0; i < k; i++ {
			e.IDs = append(e.IDs, padID)
			e.TypeIDs = append(e.TypeIDs, padTypeID)
			e.Tokens = append(e.Tokens, padToken)
			e.Words = append(e.Words, NoWord)
			e.AttentionMask = append(e.AttentionMask, 0)
			e.SpecialTokensMask = append(e.SpecialTokensMask, 1)
			e.Offsets = append(e.Offsets, Offset{})
		}
		return
	}

	ids := make([]uint32, 0, targetLength)
	typeIDs := make([]uint32, 0, targetLength)
	tokens := make([]string, 0, targetLength)
	words := make([]int, 0, targetLength)
	attention := make([]uint32, 0, targetLength)
	special := make([]uint32, 0, targetLength)
	offsets := make([]Offset, 0, targetLength)
	for i := 0; i < k; i++ {
		ids = append(ids, padID)
		typeIDs = append(typeIDs, padTypeID)
		tokens = append(tokens, padToken)
		words = append(words, NoWord)
		attention = append(attention, 0)
		special = append(special, 1)
		offsets = append(offsets, Offset{})
	}
	e.IDs = append(ids, e.IDs...)
	e.TypeIDs = append(typeIDs, e.TypeIDs...)
	e.Tokens = append(tokens, e.Tokens...)
	e.Words = append(words, e.Words...)
	e.AttentionMask = append(attention, e.AttentionMask...)
	e.SpecialTokensMask = append(special, e.SpecialTokensMask...)
	e.Offsets = append(offsets, e.Offsets...)
}

// Truncate shrinks the Encoding to targetLength, keeping a contiguous window
// and slicing all seven slices to the same index range; it is a no-op when
// the Encoding is already short enough.
//
// Direction Right keeps the head (the window starts at index 0), Left keeps
// the tail. The stride parameter is the overlap that overflow encodings would
// use for sliding-window strategies; overflow encodings are not generated
// here, the displaced elements are dropped. Neither targetLength nor stride
// may be negative.
func (e *Encoding) Truncate(targetLength int, stride int, direction Direction) error {
	if targetLength < 0 {
		return errors.Errorf("truncate target length must be >= 0, got %d", targetLength)
	}
	if stride < 0 {
		return errors.Errorf("truncate stride must be >= 0, got %d", stride)
	}
	n := e.Len()
	if n <= targetLength {
		return nil
	}

	start := 0
	if direction == Left {
		start = n - targetLength
	}
	end := start + targetLength

	// Re-slice into fresh storage so the dropped elements don't keep the old
	// backing arrays alive.
	e.IDs = append([]uint32(nil), e.IDs[start:end]...)
	e.TypeIDs = append([]uint32(nil), e.TypeIDs[start:end]...)
	e.Tokens = append([]string(nil), e.Tokens[start:end]...)
	e.Words = append([]int(nil), e.Words[start:end]...)
	e.AttentionMask = append([]uint32(nil), e.AttentionMask[start:end]...)
	e.SpecialTokensMask = append([]uint32(nil), e.SpecialTokensMask[start:end]...)
	e.Offsets = append([]Offset(nil), e.Offsets[start:end]...)
	return nil
}
