// Package pretrained loads tokenizers from HuggingFace tokenizer.json files,
// assembling the pipeline stages the file describes: normalizer,
// pre-tokenizer, model, post-processor and decoder, plus padding, truncation
// and the added tokens.
package pretrained

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
	"k8s.io/klog/v2"

	"github.com/gomlx/go-tokenizers"
	"github.com/gomlx/go-tokenizers/api"
	"github.com/gomlx/go-tokenizers/decoders"
	"github.com/gomlx/go-tokenizers/encoding"
	"github.com/gomlx/go-tokenizers/models/bpe"
	"github.com/gomlx/go-tokenizers/models/unigram"
	"github.com/gomlx/go-tokenizers/models/wordlevel"
	"github.com/gomlx/go-tokenizers/models/wordpiece"
	"github.com/gomlx/go-tokenizers/normalizers"
	"github.com/gomlx/go-tokenizers/pretokenizers"
	"github.com/gomlx/go-tokenizers/processors"
)

// FromFile loads a tokenizer from a tokenizer.json file. The file is
// memory-mapped while parsing; vocabularies of large models easily run to
// tens of megabytes.
func FromFile(path string) (*tokenizers.Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening tokenizer file %q", path)
	}
	defer func() { _ = f.Close() }()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "memory-mapping tokenizer file %q", path)
	}
	defer func() { _ = m.Unmap() }()

	tok, err := FromBytes(m)
	if err != nil {
		return nil, errors.WithMessagef(err, "loading tokenizer from %q", path)
	}
	return tok, nil
}

// FromBytes builds a tokenizer from tokenizer.json content.
func FromBytes(content []byte) (*tokenizers.Tokenizer, error) {
	var config tokenizerJSON
	if err := json.Unmarshal(content, &config); err != nil {
		return nil, errors.Wrapf(err, "parsing tokenizer.json")
	}

	model, err := buildModel(&config.Model)
	if err != nil {
		return nil, err
	}
	tok := tokenizers.New(model)

	if config.Normalizer != nil {
		normalizer, err := buildNormalizer(config.Normalizer)
		if err != nil {
			return nil, err
		}
		tok.WithNormalizer(normalizer)
	}
	if config.PreTokenizer != nil {
		preTokenizer, err := buildPreTokenizer(config.PreTokenizer)
		if err != nil {
			return nil, err
		}
		tok.WithPreTokenizer(preTokenizer)
	}
	if config.PostProcessor != nil {
		postProcessor, err := buildPostProcessor(config.PostProcessor)
		if err != nil {
			return nil, err
		}
		tok.WithPostProcessor(postProcessor)
	}
	if config.Decoder != nil {
		decoder, err := buildDecoder(config.Decoder)
		if err != nil {
			return nil, err
		}
		tok.WithDecoder(decoder)
	}

	if config.Truncation != nil {
		direction, err := parseDirection(config.Truncation.Direction)
		if err != nil {
			return nil, err
		}
		if config.Truncation.MaxLength < 0 {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"truncation max_length must be >= 0, got %d", config.Truncation.MaxLength)
		}
		tok.WithTruncation(tokenizers.TruncationParams{
			MaxLength: config.Truncation.MaxLength,
			Direction: direction,
			Stride:    config.Truncation.Stride,
		})
	}
	if config.Padding != nil {
		params, err := buildPadding(config.Padding)
		if err != nil {
			return nil, err
		}
		tok.WithPadding(params)
	}

	if err := registerAddedTokens(tok, config.AddedTokens); err != nil {
		return nil, err
	}

	klog.V(1).Infof("loaded tokenizer: model=%s vocab=%d added=%d",
		config.Model.Type, model.VocabSize(), len(config.AddedTokens))
	return tok, nil
}

// registerAddedTokens registers the added_tokens entries, in id order so the
// allocated ids line up with the file's.
func registerAddedTokens(tok *tokenizers.Tokenizer, added []addedToken) error {
	sorted := make([]addedToken, len(added))
	copy(sorted, added)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, at := range sorted {
		if at.Special {
			tok.AddSpecialTokens(at.Content)
		} else {
			tok.AddTokens(at.Content)
		}
		if id, ok := tok.TokenToID(at.Content); ok && int(id) != at.ID {
			return errors.Wrapf(api.ErrInvalidConfiguration,
				"added token %q declares id %d but resolves to %d; ids above the vocabulary must be contiguous",
				at.Content, at.ID, id)
		}
	}
	return nil
}

func buildModel(cfg *modelConfig) (api.Model, error) {
	switch cfg.Type {
	case "WordPiece":
		vocab, err := cfg.vocabMap()
		if err != nil {
			return nil, err
		}
		return wordpiece.New(vocab, wordpiece.Options{
			UnkToken:                cfg.UnkToken,
			ContinuingSubwordPrefix: cfg.ContinuingSubwordPrefix,
			MaxInputCharsPerWord:    cfg.MaxInputCharsPerWord,
		})
	case "BPE":
		vocab, err := cfg.vocabMap()
		if err != nil {
			return nil, err
		}
		merges, err := cfg.mergeList()
		if err != nil {
			return nil, err
		}
		return bpe.New(vocab, merges, bpe.Options{
			UnkToken:        cfg.UnkToken,
			EndOfWordSuffix: cfg.EndOfWordSuffix,
		})
	case "Unigram":
		vocab, err := cfg.unigramVocab()
		if err != nil {
			return nil, err
		}
		unkToken := cfg.UnkToken
		if unkToken == "" && cfg.UnkID != nil {
			for piece, id := range vocab {
				if int(id) == *cfg.UnkID {
					unkToken = piece
					break
				}
			}
		}
		return unigram.New(vocab, unkToken)
	case "WordLevel":
		vocab, err := cfg.vocabMap()
		if err != nil {
			return nil, err
		}
		return wordlevel.New(vocab, cfg.UnkToken)
	default:
		return nil, errors.Wrapf(api.ErrInvalidConfiguration, "unsupported model type %q", cfg.Type)
	}
}

func buildNormalizer(cfg *normalizerConfig) (api.Normalizer, error) {
	switch cfg.Type {
	case "Lowercase":
		return normalizers.Lowercase{}, nil
	case "NFD":
		return normalizers.Unicode{Form: norm.NFD}, nil
	case "NFC":
		return normalizers.Unicode{Form: norm.NFC}, nil
	case "NFKD":
		return normalizers.Unicode{Form: norm.NFKD}, nil
	case "NFKC":
		return normalizers.Unicode{Form: norm.NFKC}, nil
	case "StripAccents":
		return normalizers.StripAccents{}, nil
	case "BertNormalizer":
		stripAccents := cfg.Lowercase
		if cfg.StripAccents != nil {
			stripAccents = *cfg.StripAccents
		}
		return normalizers.Bert{
			Lowercase:          cfg.Lowercase,
			StripAccents:       stripAccents,
			CleanText:          boolOr(cfg.CleanText, true),
			HandleChineseChars: boolOr(cfg.HandleChineseChars, true),
		}, nil
	case "Replace":
		if cfg.Pattern == nil || cfg.Pattern.String == "" {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"Replace normalizer needs a literal String pattern")
		}
		return normalizers.Replace{Pattern: cfg.Pattern.String, Content: cfg.Content}, nil
	case "Prepend":
		return normalizers.Prepend{Prefix: cfg.Prepend}, nil
	case "Sequence":
		sequence := make(normalizers.Sequence, 0, len(cfg.Normalizers))
		for i := range cfg.Normalizers {
			child, err := buildNormalizer(&cfg.Normalizers[i])
			if err != nil {
				return nil, err
			}
			sequence = append(sequence, child)
		}
		return sequence, nil
	default:
		return nil, errors.Wrapf(api.ErrInvalidConfiguration, "unsupported normalizer type %q", cfg.Type)
	}
}

func buildPreTokenizer(cfg *preTokenizerConfig) (api.PreTokenizer, error) {
	switch cfg.Type {
	case "BertPreTokenizer":
		return pretokenizers.Bert{}, nil
	case "Whitespace":
		return pretokenizers.Whitespace{}, nil
	case "WhitespaceSplit":
		return pretokenizers.WhitespaceSplit{}, nil
	case "Punctuation":
		return pretokenizers.Punctuation{}, nil
	case "ByteLevel":
		return pretokenizers.ByteLevel{AddPrefixSpace: cfg.AddPrefixSpace}, nil
	case "Metaspace":
		return pretokenizers.Metaspace{AddPrefixSpace: cfg.AddPrefixSpace}, nil
	case "Split":
		pattern, err := splitPattern(cfg.Pattern)
		if err != nil {
			return nil, err
		}
		behavior, err := splitBehavior(cfg.Behavior)
		if err != nil {
			return nil, err
		}
		return pretokenizers.NewSplit(pattern, behavior)
	case "Sequence":
		sequence := make(pretokenizers.Sequence, 0, len(cfg.PreTokenizers))
		for i := range cfg.PreTokenizers {
			child, err := buildPreTokenizer(&cfg.PreTokenizers[i])
			if err != nil {
				return nil, err
			}
			sequence = append(sequence, child)
		}
		return sequence, nil
	default:
		return nil, errors.Wrapf(api.ErrInvalidConfiguration, "unsupported pre-tokenizer type %q", cfg.Type)
	}
}

func splitPattern(pattern *patternConfig) (string, error) {
	if pattern == nil {
		return "", errors.Wrapf(api.ErrInvalidConfiguration, "Split pre-tokenizer has no pattern")
	}
	if pattern.Regex != "" {
		return pattern.Regex, nil
	}
	return regexp.QuoteMeta(pattern.String), nil
}

func splitBehavior(behavior string) (pretokenizers.SplitBehavior, error) {
	switch behavior {
	case "Removed", "":
		return pretokenizers.SplitRemoved, nil
	case "Isolated":
		return pretokenizers.SplitIsolated, nil
	default:
		return 0, errors.Wrapf(api.ErrInvalidConfiguration, "unsupported Split behavior %q", behavior)
	}
}

func buildPostProcessor(cfg *postProcessorConfig) (api.PostProcessor, error) {
	switch cfg.Type {
	case "TemplateProcessing":
		return buildTemplate(cfg)
	case "BertProcessing":
		cls, clsID, err := tokenPair(cfg.Cls)
		if err != nil {
			return nil, err
		}
		sep, sepID, err := tokenPair(cfg.Sep)
		if err != nil {
			return nil, err
		}
		return processors.NewBert(cls, sep, clsID, sepID), nil
	case "RobertaProcessing":
		bos, bosID, err := tokenPair(cfg.Cls)
		if err != nil {
			return nil, err
		}
		eos, eosID, err := tokenPair(cfg.Sep)
		if err != nil {
			return nil, err
		}
		return processors.NewRoberta(bos, eos, bosID, eosID), nil
	default:
		return nil, errors.Wrapf(api.ErrInvalidConfiguration, "unsupported post-processor type %q", cfg.Type)
	}
}

func buildTemplate(cfg *postProcessorConfig) (*processors.Template, error) {
	single, err := buildTemplatePieces(cfg.Single)
	if err != nil {
		return nil, err
	}
	pair, err := buildTemplatePieces(cfg.Pair)
	if err != nil {
		return nil, err
	}
	specialTokens := make(map[string]uint32, len(cfg.SpecialTokens))
	for content, st := range cfg.SpecialTokens {
		if len(st.IDs) != 1 {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"special token %q maps to %d ids; only single-id special tokens are supported", content, len(st.IDs))
		}
		specialTokens[content] = st.IDs[0]
	}
	return &processors.Template{
		Single:        single,
		Pair:          pair,
		SpecialTokens: specialTokens,
	}, nil
}

func buildTemplatePieces(items []templateItem) ([]processors.Piece, error) {
	pieces := make([]processors.Piece, 0, len(items))
	for _, item := range items {
		switch {
		case item.SpecialToken != nil:
			pieces = append(pieces, processors.Piece{
				Special: item.SpecialToken.ID,
				TypeID:  item.SpecialToken.TypeID,
			})
		case item.Sequence != nil:
			seq := processors.SeqA
			if item.Sequence.ID == "B" {
				seq = processors.SeqB
			}
			pieces = append(pieces, processors.Piece{
				Sequence: seq,
				TypeID:   item.Sequence.TypeID,
			})
		default:
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"template item is neither a SpecialToken nor a Sequence")
		}
	}
	return pieces, nil
}

func buildDecoder(cfg *decoderConfig) (api.Decoder, error) {
	switch cfg.Type {
	case "WordPiece":
		return decoders.WordPiece{Prefix: cfg.Prefix}, nil
	case "ByteLevel":
		return decoders.ByteLevel{}, nil
	case "Metaspace":
		return decoders.Metaspace{Replacement: cfg.Replacement}, nil
	case "BPEDecoder":
		return decoders.BPE{Suffix: cfg.Suffix}, nil
	case "Replace":
		if cfg.Pattern == nil || cfg.Pattern.String == "" {
			return nil, errors.Wrapf(api.ErrInvalidConfiguration,
				"Replace decoder needs a literal String pattern")
		}
		return decoders.Replace{Pattern: cfg.Pattern.String, Content: cfg.Content}, nil
	case "Sequence":
		sequence := make(decoders.Sequence, 0, len(cfg.Decoders))
		for i := range cfg.Decoders {
			child, err := buildDecoder(&cfg.Decoders[i])
			if err != nil {
				return nil, err
			}
			sequence = append(sequence, child)
		}
		return sequence, nil
	default:
		return nil, errors.Wrapf(api.ErrInvalidConfiguration, "unsupported decoder type %q", cfg.Type)
	}
}

func buildPadding(cfg *paddingConfig) (tokenizers.PaddingParams, error) {
	direction, err := parseDirection(cfg.Direction)
	if err != nil {
		return tokenizers.PaddingParams{}, err
	}
	length, fixed, err := cfg.fixedLength()
	if err != nil {
		return tokenizers.PaddingParams{}, err
	}
	strategy := tokenizers.PadLongest
	if fixed {
		strategy = tokenizers.PadFixed
	}
	return tokenizers.PaddingParams{
		Strategy:        strategy,
		Length:          length,
		Direction:       direction,
		PadID:           uint32(cfg.PadID),
		PadTypeID:       uint32(cfg.PadTypeID),
		PadToken:        cfg.PadToken,
		PadToMultipleOf: cfg.PadToMultipleOf,
	}, nil
}

func parseDirection(direction string) (encoding.Direction, error) {
	switch {
	case direction == "" || strings.EqualFold(direction, "right"):
		return encoding.Right, nil
	case strings.EqualFold(direction, "left"):
		return encoding.Left, nil
	default:
		return 0, errors.Wrapf(api.ErrInvalidConfiguration, "unknown direction %q", direction)
	}
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
