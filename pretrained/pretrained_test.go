package pretrained

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/api"
)

// tokenizer.json content for a WordPiece model (BERT-style).
var testWordPieceJSON = []byte(`{
  "version": "1.0",
  "truncation": null,
  "padding": null,
  "added_tokens": [
    {"id": 0, "content": "[PAD]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true},
    {"id": 1, "content": "[UNK]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true},
    {"id": 2, "content": "[CLS]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true},
    {"id": 3, "content": "[SEP]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true}
  ],
  "normalizer": {
    "type": "BertNormalizer",
    "lowercase": true
  },
  "pre_tokenizer": {
    "type": "BertPreTokenizer"
  },
  "post_processor": {
    "type": "TemplateProcessing",
    "single": [
      {"SpecialToken": {"id": "[CLS]", "type_id": 0}},
      {"Sequence": {"id": "A", "type_id": 0}},
      {"SpecialToken": {"id": "[SEP]", "type_id": 0}}
    ],
    "pair": [
      {"SpecialToken": {"id": "[CLS]", "type_id": 0}},
      {"Sequence": {"id": "A", "type_id": 0}},
      {"SpecialToken": {"id": "[SEP]", "type_id": 0}},
      {"Sequence": {"id": "B", "type_id": 1}},
      {"SpecialToken": {"id": "[SEP]", "type_id": 1}}
    ],
    "special_tokens": {
      "[CLS]": {"id": "[CLS]", "ids": [2], "tokens": ["[CLS]"]},
      "[SEP]": {"id": "[SEP]", "ids": [3], "tokens": ["[SEP]"]}
    }
  },
  "decoder": {
    "type": "WordPiece",
    "prefix": "##"
  },
  "model": {
    "type": "WordPiece",
    "unk_token": "[UNK]",
    "continuing_subword_prefix": "##",
    "max_input_chars_per_word": 100,
    "vocab": {
      "[PAD]": 0,
      "[UNK]": 1,
      "[CLS]": 2,
      "[SEP]": 3,
      "hello": 4,
      "world": 5,
      "test": 6,
      "##ing": 7
    }
  }
}`)

// tokenizer.json content for a BPE model (GPT-2-style) with padding and
// truncation configured.
var testBPEJSON = []byte(`{
  "version": "1.0",
  "truncation": {"direction": "Right", "max_length": 8, "strategy": "LongestFirst", "stride": 0},
  "padding": {"strategy": {"Fixed": 8}, "direction": "Right", "pad_to_multiple_of": null, "pad_id": 0, "pad_type_id": 0, "pad_token": "<pad>"},
  "added_tokens": [
    {"id": 0, "content": "<pad>", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true}
  ],
  "normalizer": null,
  "pre_tokenizer": {
    "type": "ByteLevel",
    "add_prefix_space": false
  },
  "post_processor": null,
  "decoder": {
    "type": "ByteLevel"
  },
  "model": {
    "type": "BPE",
    "unk_token": null,
    "vocab": {
      "<pad>": 0,
      "h": 1,
      "e": 2,
      "l": 3,
      "o": 4,
      "he": 5,
      "ll": 6,
      "hell": 7,
      "hello": 8
    },
    "merges": [
      "h e",
      "l l",
      "he ll",
      "hell o"
    ]
  }
}`)

// tokenizer.json content for a Unigram model with a Metaspace pipeline. The
// vocab entries are [piece, score] pairs; ids are the positions.
var testUnigramJSON = []byte(`{
  "version": "1.0",
  "truncation": null,
  "padding": null,
  "added_tokens": [],
  "normalizer": {
    "type": "Sequence",
    "normalizers": [
      {"type": "Prepend", "prepend": "▁"},
      {"type": "Replace", "pattern": {"String": " "}, "content": "▁"}
    ]
  },
  "pre_tokenizer": null,
  "post_processor": null,
  "decoder": {
    "type": "Metaspace",
    "replacement": "▁"
  },
  "model": {
    "type": "Unigram",
    "unk_id": 0,
    "vocab": [
      ["<unk>", 0.0],
      ["▁hello", -1.0],
      ["▁world", -2.0]
    ]
  }
}`)

func TestFromBytesWordPiece(t *testing.T) {
	tok, err := FromBytes(testWordPieceJSON)
	require.NoError(t, err)

	enc, err := tok.Encode("Hello testing", true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 4, 6, 7, 3}, enc.IDs)
	assert.Equal(t, []string{"[CLS]", "hello", "test", "##ing", "[SEP]"}, enc.Tokens)
	assert.Equal(t, []uint32{1, 0, 0, 0, 1}, enc.SpecialTokensMask)

	text, err := tok.Decode(enc.IDs, true)
	require.NoError(t, err)
	assert.Equal(t, "hello testing", text)
}

func TestFromBytesWordPiecePair(t *testing.T) {
	tok, err := FromBytes(testWordPieceJSON)
	require.NoError(t, err)

	enc, err := tok.EncodePair("hello", "world", true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 4, 3, 5, 3}, enc.IDs)
	assert.Equal(t, []uint32{0, 0, 0, 1, 1}, enc.TypeIDs)
}

func TestFromBytesBPE(t *testing.T) {
	tok, err := FromBytes(testBPEJSON)
	require.NoError(t, err)

	enc, err := tok.Encode("hello", false)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), enc.IDs[0])

	// Padding from the file: fixed length 8 with <pad> (id 0).
	assert.Equal(t, 8, enc.Len())
	assert.Equal(t, uint32(0), enc.IDs[7])
	assert.Equal(t, uint32(0), enc.AttentionMask[7])

	text, err := tok.Decode([]uint32{8}, false)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestFromBytesUnigram(t *testing.T) {
	tok, err := FromBytes(testUnigramJSON)
	require.NoError(t, err)

	enc, err := tok.Encode("hello world", false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, enc.IDs)

	text, err := tok.Decode(enc.IDs, false)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestFromBytesNegativeMaxLength(t *testing.T) {
	_, err := FromBytes([]byte(`{
  "truncation": {"direction": "Right", "max_length": -1, "strategy": "LongestFirst", "stride": 0},
  "model": {"type": "WordLevel", "unk_token": "", "vocab": {"a": 0}}
}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrInvalidConfiguration))
}

func TestFromBytesUnknownModelType(t *testing.T) {
	_, err := FromBytes([]byte(`{"model": {"type": "Mystery", "vocab": {}}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrInvalidConfiguration))
}

func TestFromBytesInvalidJSON(t *testing.T) {
	_, err := FromBytes([]byte(`{not json`))
	require.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, testWordPieceJSON, 0o644))

	tok, err := FromFile(path)
	require.NoError(t, err)

	enc, err := tok.Encode("hello world", false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{4, 5}, enc.IDs)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
