package context2

import (
	"math"

	"github.com/pkg/errors"

	"github.com/manningwu07/toyGPT/utils"
)

// TrainingPair is one supervised example: predict Target from the context
// (Prev, Curr). Pairs come from consecutive token triples in the corpus.
type TrainingPair struct {
	Prev   int
	Curr   int
	Target int
}

// EpochStats records the mean loss and accuracy of one full pass over the
// training pairs. Epoch numbering starts at 1.
type EpochStats struct {
	Epoch    int
	Loss     float64
	Accuracy float64
}

// MakeTrainingPairs slides a width-3 window over the ID sequence and emits
// one pair per window, in corpus order. A sequence of length N yields
// max(0, N-2) pairs.
func MakeTrainingPairs(ids []int) []TrainingPair {
	if len(ids) < 3 {
		return nil
	}
	pairs := make([]TrainingPair, 0, len(ids)-2)
	for i := 0; i+2 < len(ids); i++ {
		pairs = append(pairs, TrainingPair{Prev: ids[i], Curr: ids[i+1], Target: ids[i+2]})
	}
	return pairs
}

// Train fits the model's score table to the pairs by online gradient
// descent on cross-entropy loss. Updates apply one pair at a time, in the
// given order, with no shuffling, so two runs over the same inputs produce
// identical weights and history.
//
// The gradient of cross-entropy w.r.t. a row's raw scores is simply
// p[i] - 1{i==target}, so each step is:
//
//	score[i] -= learningRate * (p[i] - 1{i==target})
//
// Train mutates the model in place and returns the per-epoch history.
func Train(m *Model, pairs []TrainingPair, learningRate float64, epochs int) ([]EpochStats, error) {
	if learningRate <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "learning rate %g must be positive", learningRate)
	}
	if epochs <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "epoch count %d must be positive", epochs)
	}
	if len(pairs) == 0 {
		return nil, errors.Wrap(ErrNoTrainingPairs, "need a corpus of at least 3 tokens")
	}
	for _, p := range pairs {
		if p.Target < 0 || p.Target >= m.vocabSize {
			return nil, errors.Wrapf(ErrInvalidContext, "target id %d with vocab size %d",
				p.Target, m.vocabSize)
		}
	}

	history := make([]EpochStats, 0, epochs)
	for e := 1; e <= epochs; e++ {
		var totalLoss float64
		var correct int
		for _, p := range pairs {
			probs, err := m.Forward(p.Prev, p.Curr)
			if err != nil {
				return history, err
			}

			totalLoss += -math.Log(probs[p.Target] + 1e-12)
			if utils.Argmax(probs) == p.Target {
				correct++
			}

			row := m.scoreRow(p.Prev, p.Curr)
			for i, pi := range probs {
				grad := pi
				if i == p.Target {
					grad -= 1.0
				}
				row[i] -= learningRate * grad
			}
		}
		history = append(history, EpochStats{
			Epoch:    e,
			Loss:     totalLoss / float64(len(pairs)),
			Accuracy: float64(correct) / float64(len(pairs)),
		})
	}
	return history, nil
}
