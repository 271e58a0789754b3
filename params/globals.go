package params

// TrainingConfig holds the hyperparameters for a context-2 training run.
// CLI flags override these defaults; the config is passed explicitly into
// the training command so tests can run with their own copies.
type TrainingConfig struct {
	LearningRate float64 // SGD step size for the score-row updates
	Epochs       int     // full passes over all training pairs

	TokenizerMode string // "words" (whitespace split) or "bpe" (subword pieces)
	BPEVocabSize  int    // target vocab size when TokenizerMode is "bpe"
}

// Reasonable defaults for the small demo corpora
var Config = TrainingConfig{
	LearningRate: 0.1,
	Epochs:       50,

	TokenizerMode: "words",
	BPEVocabSize:  512,
}

// Artifact file names inside the artifacts directory. The numeric prefixes
// keep the files listed in pipeline order.
const (
	MetaFile       = "00_meta.json"
	VocabFile      = "01_vocabulary.csv"
	WeightsFile    = "02_model_weights.csv"
	EmbeddingsFile = "03_token_embeddings.csv"

	TrainingLogFile  = "training_log.csv"
	BPETokenizerFile = "tokenizer.json"
)

// Default paths used by the CLI commands.
const (
	DefaultArtifactsDir = "artifacts"
	DefaultCorpusPath   = "corpus/001_animals.txt"
)
