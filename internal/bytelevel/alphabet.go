// Package bytelevel holds the GPT-2 byte↔rune alphabet shared by the
// byte-level pre-tokenizer and decoder.
//
// Byte-level BPE maps every byte to a printable rune so that arbitrary bytes
// survive a round trip through a text-based vocabulary: printable ASCII and
// most of Latin-1 map to themselves, the rest are remapped into the
// U+0100..U+0142 range.
package bytelevel

var (
	byteToRune [256]rune
	runeToByte map[rune]byte
)

func init() {
	runeToByte = make(map[rune]byte, 256)
	n := 0
	for b := 0; b < 256; b++ {
		if (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF) {
			byteToRune[b] = rune(b)
		} else {
			byteToRune[b] = rune(256 + n)
			n++
		}
		runeToByte[byteToRune[b]] = byte(b)
	}
}

// Encode maps raw text into the byte-level alphabet, one rune per input byte.
func Encode(text string) string {
	runes := make([]rune, 0, len(text))
	for i := 0; i < len(text); i++ {
		runes = append(runes, byteToRune[text[i]])
	}
	return string(runes)
}

// Decode maps alphabet text back to raw bytes. Runes outside the alphabet
// are passed through unchanged.
func Decode(text string) string {
	result := make([]byte, 0, len(text))
	for _, r := range text {
		if b, ok := runeToByte[r]; ok {
			result = append(result, b)
		} else {
			result = append(result, []byte(string(r))...)
		}
	}
	return string(result)
}
