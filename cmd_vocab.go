package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/manningwu07/toyGPT/IO"
	"github.com/manningwu07/toyGPT/params"
	"github.com/manningwu07/toyGPT/utils"
	"github.com/manningwu07/toyGPT/vocab"
)

func newVocabCmd() *cobra.Command {
	var (
		corpusPath string
		topN       int
	)

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Tokenize a corpus and inspect its vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVocab(corpusPath, topN)
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", params.DefaultCorpusPath, "Path to the corpus")
	cmd.Flags().IntVar(&topN, "top", 10, "How many of the most frequent tokens to show")

	return cmd
}

func runVocab(corpusPath string, topN int) error {
	tokens, err := IO.TokenizeFile(corpusPath)
	if err != nil {
		return err
	}
	fmt.Printf("Total number of tokens: %s\n", humanize.Comma(int64(len(tokens))))
	if len(tokens) == 0 {
		fmt.Println("No tokens available; nothing to inspect.")
		return nil
	}

	lengths := make([]float64, len(tokens))
	for i, tok := range tokens {
		lengths[i] = float64(len(tok))
	}
	fmt.Printf("Average token length: %.2f\n", utils.Mean(lengths))

	v := vocab.Build(tokens)
	fmt.Printf("Vocabulary size: %d\n", v.Size())

	// Most frequent tokens, ties broken alphabetically.
	type kv struct {
		tok  string
		freq int
	}
	arr := make([]kv, 0, v.Size())
	for id, tok := range v.IDToToken {
		arr = append(arr, kv{tok: tok, freq: v.Counts[id]})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].freq == arr[j].freq {
			return arr[i].tok < arr[j].tok
		}
		return arr[i].freq > arr[j].freq
	})
	if topN < 0 {
		topN = 0
	}
	if topN > len(arr) {
		topN = len(arr)
	}
	fmt.Printf("Top %d tokens by frequency:\n", topN)
	for _, e := range arr[:topN] {
		id, err := v.TokenID(e.tok)
		if err != nil {
			return err
		}
		fmt.Printf("  %s (ID %d): %d\n", e.tok, id, e.freq)
	}
	return nil
}
