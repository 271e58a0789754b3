package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manningwu07/toyGPT/IO"
	"github.com/manningwu07/toyGPT/context2"
	"github.com/manningwu07/toyGPT/params"
)

func newGenerateCmd() *cobra.Command {
	var (
		artifactsDir string
		startToken   string
		numTokens    int
		topK         int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate tokens greedily from saved training artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(artifactsDir, startToken, numTokens, topK)
		},
	}

	cmd.Flags().StringVar(&artifactsDir, "artifacts", params.DefaultArtifactsDir, "Directory holding the training artifacts")
	cmd.Flags().StringVar(&startToken, "start", "", "Start token (default: the lowest-ID vocabulary token)")
	cmd.Flags().IntVar(&numTokens, "num", 10, "Number of tokens to generate (not counting the start token)")
	cmd.Flags().IntVar(&topK, "topk", 3, "Show top-k next-token probabilities for the start context")

	return cmd
}

func runGenerate(artifactsDir, startToken string, numTokens, topK int) error {
	meta, v, model, err := IO.LoadArtifacts(artifactsDir)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %s model (vocab size %d, run %s)\n", meta.ModelKind, v.Size(), meta.RunID)

	// Deterministic fallback: the smallest token ID present.
	if startToken == "" {
		startToken, err = v.TokenByID(0)
		if err != nil {
			return err
		}
	}
	startID, err := v.TokenID(startToken)
	if err != nil {
		return err
	}
	fmt.Printf("Start token: %s\n", startToken)
	fmt.Printf("Context-2 bootstrap: (%s, %s)\n", startToken, startToken)

	probs, err := model.Forward(startID, startID)
	if err != nil {
		return err
	}
	fmt.Printf("Top next-token predictions after %s|%s:\n", startToken, startToken)
	for _, p := range context2.TopK(probs, topK) {
		tok, err := v.TokenByID(p.ID)
		if err != nil {
			return err
		}
		fmt.Printf("  %s (ID %d): %.4f\n", tok, p.ID, p.Prob)
	}

	if numTokens < 0 {
		numTokens = 0
	}
	generated, err := context2.Generate(model, v, startToken, numTokens)
	if err != nil {
		return err
	}
	fmt.Println("Generated sequence:")
	fmt.Printf("  %s\n", strings.Join(generated, " "))
	return nil
}
