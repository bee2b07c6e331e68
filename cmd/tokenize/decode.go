package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gomlx/go-tokenizers/api"
)

func newDecodeCmd() *cobra.Command {
	var skipSpecialTokens bool

	cmd := &cobra.Command{
		Use:   "decode id [id...]",
		Short: "Decode token ids back to text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := loadTokenizer()
			if err != nil {
				return err
			}

			ids := make([]uint32, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseUint(arg, 10, 32)
				if err != nil {
					return errors.Wrapf(api.ErrInvalidInput, "invalid token id %q", arg)
				}
				ids = append(ids, uint32(id))
			}

			text, err := tok.Decode(ids, skipSpecialTokens)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSpecialTokens, "skip-special-tokens", true, "Drop special tokens before decoding")

	return cmd
}
