package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/manningwu07/toyGPT/IO"
	"github.com/manningwu07/toyGPT/context2"
	"github.com/manningwu07/toyGPT/params"
	"github.com/manningwu07/toyGPT/utils"
	"github.com/manningwu07/toyGPT/vocab"
)

func newTrainCmd() *cobra.Command {
	cfg := params.Config
	var (
		corpusPath   string
		artifactsDir string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the context-2 model on a corpus and write artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cfg, corpusPath, artifactsDir)
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", params.DefaultCorpusPath, "Path to the training corpus")
	cmd.Flags().StringVar(&artifactsDir, "artifacts", params.DefaultArtifactsDir, "Directory to write training artifacts to")
	cmd.Flags().Float64Var(&cfg.LearningRate, "lr", cfg.LearningRate, "Gradient-descent learning rate")
	cmd.Flags().IntVar(&cfg.Epochs, "epochs", cfg.Epochs, "Number of passes over the training pairs")
	cmd.Flags().StringVar(&cfg.TokenizerMode, "tokenizer", cfg.TokenizerMode, "Tokenizer: \"words\" (whitespace) or \"bpe\" (subword pieces)")
	cmd.Flags().IntVar(&cfg.BPEVocabSize, "bpe-vocab-size", cfg.BPEVocabSize, "Target vocab size when --tokenizer=bpe")

	return cmd
}

func runTrain(cfg params.TrainingConfig, corpusPath, artifactsDir string) error {
	t1 := time.Now()

	// 1. Load and tokenize the corpus.
	tokens, err := tokenizeCorpus(cfg, corpusPath, artifactsDir)
	if err != nil {
		return err
	}
	fmt.Printf("Tokenized %s tokens from %s\n", humanize.Comma(int64(len(tokens))), corpusPath)
	if len(tokens) < 3 {
		return errors.Errorf("need at least 3 tokens for context-2 training (t-1, t -> next), got %d", len(tokens))
	}

	// 2. Build the vocabulary and convert tokens to IDs.
	v := vocab.Build(tokens)
	fmt.Printf("Vocabulary size: %d\n", v.Size())
	ids, err := v.IDs(tokens)
	if err != nil {
		return err
	}

	// 3. Create training pairs (context-2 -> next).
	pairs := context2.MakeTrainingPairs(ids)
	fmt.Printf("Created %s training pairs.\n", humanize.Comma(int64(len(pairs))))

	// 4. Initialize the model with zero weights and train.
	model, err := context2.New(v.Size())
	if err != nil {
		return err
	}
	history, err := context2.Train(model, pairs, cfg.LearningRate, cfg.Epochs)
	if err != nil {
		return err
	}
	for _, st := range history {
		fmt.Printf("Epoch %d - Accuracy: %.4f, Loss: %.4f\n", st.Epoch, st.Accuracy, st.Loss)
	}
	fmt.Printf("\nTime taken to train: %s\n", time.Since(t1))

	// 5. Persist artifacts and the training log.
	meta := IO.Meta{
		RepoName:     "toyGPT",
		ModelKind:    "context2",
		RunID:        uuid.NewString(),
		CorpusPath:   corpusPath,
		Tokenizer:    cfg.TokenizerMode,
		VocabSize:    v.Size(),
		LearningRate: cfg.LearningRate,
		Epochs:       cfg.Epochs,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := IO.WriteArtifacts(artifactsDir, meta, v, model); err != nil {
		return err
	}
	if err := IO.WriteTrainingLog(filepath.Join(artifactsDir, params.TrainingLogFile), history); err != nil {
		return err
	}
	fmt.Printf("Wrote artifacts to %s (run %s)\n", artifactsDir, meta.RunID)

	// 6. Qualitative check: what comes after the first two corpus tokens?
	probs, err := model.Forward(ids[0], ids[1])
	if err != nil {
		return err
	}
	bestID := utils.Argmax(probs)
	bestTok, err := v.TokenByID(bestID)
	if err != nil {
		return err
	}
	fmt.Printf("Most likely next token after %q|%q is %q (ID %d).\n",
		tokens[0], tokens[1], bestTok, bestID)
	return nil
}

// tokenizeCorpus picks the tokenizer the config asked for. BPE keeps its
// trained tokenizer.json next to the other artifacts so reruns reuse it.
func tokenizeCorpus(cfg params.TrainingConfig, corpusPath, artifactsDir string) ([]string, error) {
	switch cfg.TokenizerMode {
	case "words":
		return IO.TokenizeFile(corpusPath)
	case "bpe":
		tokPath := filepath.Join(artifactsDir, params.BPETokenizerFile)
		bpe, err := IO.TrainOrLoadBPE(corpusPath, tokPath, cfg.BPEVocabSize)
		if err != nil {
			return nil, err
		}
		return bpe.SegmentFile(corpusPath)
	default:
		return nil, errors.Errorf("unknown tokenizer %q (want \"words\" or \"bpe\")", cfg.TokenizerMode)
	}
}
