package pretrained

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/gomlx/go-tokenizers/api"
)

// tokenizerJSON mirrors the layout of HuggingFace's tokenizer.json file, the
// serialization format of the "fast" tokenizers.
type tokenizerJSON struct {
	Version       string               `json:"version"`
	Truncation    *truncationConfig    `json:"truncation"`
	Padding       *paddingConfig       `json:"padding"`
	AddedTokens   []addedToken         `json:"added_tokens"`
	Normalizer    *normalizerConfig    `json:"normalizer"`
	PreTokenizer  *preTokenizerConfig  `json:"pre_tokenizer"`
	PostProcessor *postProcessorConfig `json:"post_processor"`
	Decoder       *decoderConfig       `json:"decoder"`
	Model         modelConfig          `json:"model"`
}

// addedToken is one entry of the added_tokens list.
type addedToken struct {
	ID         int    `json:"id"`
	Content    string `json:"content"`
	SingleWord bool   `json:"single_word"`
	Lstrip     bool   `json:"lstrip"`
	Rstrip     bool   `json:"rstrip"`
	Normalized bool   `json:"normalized"`
	Special    bool   `json:"special"`
}

// truncationConfig mirrors the truncation section.
type truncationConfig struct {
	Direction string `json:"direction"`
	MaxLength int    `json:"max_length"`
	Strategy  string `json:"strategy"`
	Stride    int    `json:"stride"`
}

// paddingConfig mirrors the padding section. Strategy is either the string
// "BatchLongest" or an object {"Fixed": n}.
type paddingConfig struct {
	Strategy        json.RawMessage `json:"strategy"`
	Direction       string          `json:"direction"`
	PadToMultipleOf int             `json:"pad_to_multiple_of"`
	PadID           int             `json:"pad_id"`
	PadTypeID       int             `json:"pad_type_id"`
	PadToken        string          `json:"pad_token"`
}

// fixedLength decodes the strategy field: (n, true) for {"Fixed": n},
// (0, false) for "BatchLongest".
func (p *paddingConfig) fixedLength() (int, bool, error) {
	if len(p.Strategy) == 0 {
		return 0, false, nil
	}
	var name string
	if err := json.Unmarshal(p.Strategy, &name); err == nil {
		if name != "BatchLongest" {
			return 0, false, errors.Wrapf(api.ErrInvalidConfiguration, "unknown padding strategy %q", name)
		}
		return 0, false, nil
	}
	var fixed struct {
		Fixed int `json:"Fixed"`
	}
	if err := json.Unmarshal(p.Strategy, &fixed); err != nil {
		return 0, false, errors.Wrapf(err, "parsing padding strategy")
	}
	return fixed.Fixed, true, nil
}

// patternConfig is a regex or literal pattern, as used by Replace and Split.
type patternConfig struct {
	Regex  string `json:"Regex,omitempty"`
	String string `json:"String,omitempty"`
}

// normalizerConfig is one normalizer node; Sequence nodes nest further
// normalizers.
type normalizerConfig struct {
	Type               string             `json:"type"`
	Lowercase          bool               `json:"lowercase"`
	StripAccents       *bool              `json:"strip_accents"`
	CleanText          *bool              `json:"clean_text"`
	HandleChineseChars *bool              `json:"handle_chinese_chars"`
	Pattern            *patternConfig     `json:"pattern"`
	Content            string             `json:"content"`
	Prepend            string             `json:"prepend"`
	Normalizers        []normalizerConfig `json:"normalizers"`
}

// preTokenizerConfig is one pre-tokenizer node.
type preTokenizerConfig struct {
	Type           string               `json:"type"`
	AddPrefixSpace bool                 `json:"add_prefix_space"`
	Replacement    string               `json:"replacement"`
	Pattern        *patternConfig       `json:"pattern"`
	Behavior       string               `json:"behavior"`
	Invert         bool                 `json:"invert"`
	PreTokenizers  []preTokenizerConfig `json:"pretokenizers"`
}

// postProcessorConfig covers TemplateProcessing plus the older
// BertProcessing/RobertaProcessing forms, whose sep/cls fields are
// ["token", id] pairs.
type postProcessorConfig struct {
	Type          string                          `json:"type"`
	Single        []templateItem                  `json:"single"`
	Pair          []templateItem                  `json:"pair"`
	SpecialTokens map[string]templateSpecialToken `json:"special_tokens"`
	Sep           []json.RawMessage               `json:"sep"`
	Cls           []json.RawMessage               `json:"cls"`
}

// templateItem is one element of a TemplateProcessing single or pair
// template.
type templateItem struct {
	SpecialToken *templateRef `json:"SpecialToken,omitempty"`
	Sequence     *templateRef `json:"Sequence,omitempty"`
}

type templateRef struct {
	ID     string `json:"id"`
	TypeID uint32 `json:"type_id"`
}

// templateSpecialToken resolves a template special-token id to vocabulary
// ids.
type templateSpecialToken struct {
	ID     string   `json:"id"`
	IDs    []uint32 `json:"ids"`
	Tokens []string `json:"tokens"`
}

// tokenPair decodes a ["token", id] pair from BertProcessing and
// RobertaProcessing configs.
func tokenPair(raw []json.RawMessage) (string, uint32, error) {
	if len(raw) != 2 {
		return "", 0, errors.Wrapf(api.ErrInvalidConfiguration, "expected a [token, id] pair, got %d element(s)", len(raw))
	}
	var token string
	if err := json.Unmarshal(raw[0], &token); err != nil {
		return "", 0, errors.Wrapf(err, "parsing special token content")
	}
	var id uint32
	if err := json.Unmarshal(raw[1], &id); err != nil {
		return "", 0, errors.Wrapf(err, "parsing special token id")
	}
	return token, id, nil
}

// decoderConfig is one decoder node.
type decoderConfig struct {
	Type        string          `json:"type"`
	Prefix      string          `json:"prefix"`
	Suffix      string          `json:"suffix"`
	Replacement string          `json:"replacement"`
	Pattern     *patternConfig  `json:"pattern"`
	Content     string          `json:"content"`
	Decoders    []decoderConfig `json:"decoders"`
}

// modelConfig is the model section. Vocab stays raw because its shape depends
// on the model type: a token→id map for WordPiece/BPE/WordLevel, a list of
// [piece, score] pairs for Unigram.
type modelConfig struct {
	Type                    string          `json:"type"`
	Vocab                   json.RawMessage `json:"vocab"`
	Merges                  json.RawMessage `json:"merges"`
	UnkToken                string          `json:"unk_token"`
	UnkID                   *int            `json:"unk_id"`
	ContinuingSubwordPrefix string          `json:"continuing_subword_prefix"`
	MaxInputCharsPerWord    int             `json:"max_input_chars_per_word"`
	EndOfWordSuffix         string          `json:"end_of_word_suffix"`
}

// vocabMap decodes the vocab as a token→id map.
func (m *modelConfig) vocabMap() (map[string]uint32, error) {
	var vocab map[string]uint32
	if err := json.Unmarshal(m.Vocab, &vocab); err != nil {
		return nil, errors.Wrapf(err, "parsing %s vocabulary", m.Type)
	}
	return vocab, nil
}

// unigramVocab decodes the Unigram [piece, score] list; ids are the list
// positions.
func (m *modelConfig) unigramVocab() (map[string]uint32, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(m.Vocab, &entries); err != nil {
		return nil, errors.Wrapf(err, "parsing Unigram vocabulary")
	}
	vocab := make(map[string]uint32, len(entries))
	for i, entry := range entries {
		var pair []json.RawMessage
		if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration, "Unigram vocabulary entry %d is not a [piece, score] pair", i)
		}
		var piece string
		if err := json.Unmarshal(pair[0], &piece); err != nil {
			return nil, errors.Wrapf(err, "parsing Unigram vocabulary entry %d", i)
		}
		vocab[piece] = uint32(i)
	}
	return vocab, nil
}

// mergeList decodes the BPE merges, accepting both the legacy "left right"
// strings and the newer ["left", "right"] pairs.
func (m *modelConfig) mergeList() ([]string, error) {
	if len(m.Merges) == 0 {
		return nil, nil
	}
	var asStrings []string
	if err := json.Unmarshal(m.Merges, &asStrings); err == nil {
		return asStrings, nil
	}
	var asPairs [][]string
	if err := json.Unmarshal(m.Merges, &asPairs); err != nil {
		return nil, errors.Wrapf(err, "parsing BPE merges")
	}
	merges := make([]string, 0, len(asPairs))
	for i, pair := range asPairs {
		if len(pair) != 2 {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration, "BPE merge %d is not a pair", i)
		}
		merges = append(merges, strings.Join(pair, " "))
	}
	return merges, nil
}
