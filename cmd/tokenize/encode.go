package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gomlx/go-tokenizers"
	"github.com/gomlx/go-tokenizers/encoding"
)

func newEncodeCmd() *cobra.Command {
	var pair string
	var addSpecialTokens bool
	var maxLength int
	var padTo int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text to token ids",
		Long: `Encode text to token ids. The text is taken from the argument, or from
stdin when no argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := loadTokenizer()
			if err != nil {
				return err
			}
			if maxLength > 0 {
				tok.WithTruncation(tokenizers.TruncationParams{MaxLength: maxLength})
			}
			if padTo > 0 {
				tok.WithPadding(tokenizers.PaddingParams{Strategy: tokenizers.PadFixed, Length: padTo})
			}

			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var enc *encoding.Encoding
			if pair != "" {
				enc, err = tok.EncodePair(text, pair, addSpecialTokens)
			} else {
				enc, err = tok.Encode(text, addSpecialTokens)
			}
			if err != nil {
				return err
			}

			if asJSON {
				out := json.NewEncoder(cmd.OutOrStdout())
				out.SetIndent("", "  ")
				return out.Encode(enc)
			}
			fmt.Fprintln(cmd.OutOrStdout(), joinIDs(enc.IDs))
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(enc.Tokens, " "))
			return nil
		},
	}

	cmd.Flags().StringVar(&pair, "pair", "", "Second sequence, encoded together with the first")
	cmd.Flags().BoolVar(&addSpecialTokens, "add-special-tokens", true, "Let the post-processor insert special tokens")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Truncate the encoding to this many tokens")
	cmd.Flags().IntVar(&padTo, "pad-to", 0, "Pad the encoding to this many tokens")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full encoding as JSON")

	return cmd
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	content, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(content), "\n"), nil
}

func joinIDs(ids []uint32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, " ")
}
