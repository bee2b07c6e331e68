package encoding

// Offset is a half-open [Start, End) byte range locating a token in the text
// it was produced from. Offsets are byte positions (not rune positions), so
// text[offset.Start:offset.End] slices Go strings directly.
type Offset struct {
	Start int // start byte position (inclusive)
	End   int // end byte position (exclusive)
}

// Shift returns the offset translated by delta bytes.
func (o Offset) Shift(delta int) Offset {
	return Offset{Start: o.Start + delta, End: o.End + delta}
}

// NoWord is the Word value of tokens that don't belong to any pre-tokenized
// word, like padding and other special tokens.
const NoWord = -1

// Token is a single unit produced by a Model when tokenizing one
// pre-tokenized piece. Tokens are values: once produced they are copied into
// an Encoding's columnar storage and never referenced back.
type Token struct {
	ID      uint32 // id in the vocabulary
	Value   string // textual form of the token
	Offsets Offset // byte span in the piece (or text) the token came from
	Word    int    // index of the word the token belongs to, or NoWord
	TypeID  uint32 // sequence type id (0 for single sequences)
	Special bool   // true for non-content tokens ([CLS], [SEP], padding, ...)
}

// NewToken creates a content (non-special) token with TypeID 0 and no word
// assignment.
func NewToken(id uint32, value string, offsets Offset) Token {
	return Token{ID: id, Value: value, Offsets: offsets, Word: NoWord}
}
