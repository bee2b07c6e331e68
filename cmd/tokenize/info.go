package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print tokenizer vocabulary information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := loadTokenizer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vocabulary size: %d\n", tok.VocabSize())
			fmt.Fprintf(out, "model tokens:    %d\n", tok.Model().VocabSize())
			fmt.Fprintf(out, "added tokens:    %d\n", tok.AddedVocabulary().Len())
			return nil
		},
	}
	return cmd
}
