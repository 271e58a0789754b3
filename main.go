package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "toygpt",
		Short: "Train and run a tiny context-2 next-token model",
		Long: "toygpt walks the smallest possible language-model pipeline: whitespace\n" +
			"tokens, a counted vocabulary, a flattened prev x curr x next score table\n" +
			"trained by online gradient descent, and greedy decoding from the saved\n" +
			"artifacts. Every intermediate file stays human-inspectable.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newVocabCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
