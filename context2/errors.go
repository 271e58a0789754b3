package context2

import "github.com/pkg/errors"

// Error kinds surfaced by the core. Callers match them with errors.Is; the
// core never catches and ignores them.
var (
	// ErrInvalidContext means a context or target ID is outside [0, vocabSize).
	ErrInvalidContext = errors.New("context id out of range")
	// ErrInvalidConfig means a non-positive learning rate, epoch count or vocab size.
	ErrInvalidConfig = errors.New("invalid training config")
	// ErrNoTrainingPairs means the corpus was too short to form any pair.
	ErrNoTrainingPairs = errors.New("no training pairs")
	// ErrShapeMismatch means a weight table does not have vocabSize² rows of
	// vocabSize columns.
	ErrShapeMismatch = errors.New("weight table shape mismatch")
)
