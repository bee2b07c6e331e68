package main

import (
	goflag "flag"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/gomlx/go-tokenizers"
	"github.com/gomlx/go-tokenizers/pretrained"
)

var tokenizerPath string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize",
		Short: "Encode and decode text with a tokenizer.json tokenizer",
	}

	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)
	cmd.PersistentFlags().StringVarP(&tokenizerPath, "tokenizer", "t", "tokenizer.json",
		"Path to the tokenizer.json file")

	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newInfoCmd())

	return cmd
}

func loadTokenizer() (*tokenizers.Tokenizer, error) {
	if tokenizerPath == "" {
		return nil, errors.New("no tokenizer file given, see --tokenizer")
	}
	return pretrained.FromFile(tokenizerPath)
}
