// Package context2 implements the core of the pipeline: a next-token model
// conditioned on a two-token context, its gradient-descent trainer, and the
// greedy decoder.
//
// The model is a single weight table conceptually shaped prev x curr x next,
// stored flattened as vocabSize² rows of vocabSize raw scores each
// (row index = prev*vocabSize + curr). Forward looks up one row and applies
// softmax over it. There is nothing else: no embeddings, no attention. The
// same structure as a trigram count model, reframed as a sliding context
// window so later extensions (context-3, embeddings) slot in naturally.
package context2

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/toyGPT/utils"
)

// Model maps a (previous, current) token ID pair to a probability
// distribution over the next token. Weights start at zero, so an untrained
// model predicts the uniform distribution for every context.
type Model struct {
	vocabSize int
	weights   *mat.Dense // (vocabSize² x vocabSize)
}

// New creates a zero-initialized model for the given vocabulary size.
func New(vocabSize int) (*Model, error) {
	if vocabSize < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "vocab size %d must be >= 1", vocabSize)
	}
	return &Model{
		vocabSize: vocabSize,
		weights:   mat.NewDense(vocabSize*vocabSize, vocabSize, nil),
	}, nil
}

// VocabSize returns the vocabulary size the table was shaped for.
func (m *Model) VocabSize() int {
	return m.vocabSize
}

// Weights exposes the raw score table, mainly for persistence. Only the
// trainer mutates it during a run.
func (m *Model) Weights() *mat.Dense {
	return m.weights
}

// SetWeights replaces the score table, used when reloading persisted
// artifacts. The table must be vocabSize² rows by vocabSize columns.
func (m *Model) SetWeights(w *mat.Dense) error {
	r, c := w.Dims()
	if r != m.vocabSize*m.vocabSize || c != m.vocabSize {
		return errors.Wrapf(ErrShapeMismatch, "got %dx%d, want %dx%d",
			r, c, m.vocabSize*m.vocabSize, m.vocabSize)
	}
	m.weights = w
	return nil
}

// scoreRow returns the mutable raw score row for a context. The row is a
// view into the dense backing array, so trainer updates land in place.
func (m *Model) scoreRow(prevID, currID int) []float64 {
	return m.weights.RawRowView(prevID*m.vocabSize + currID)
}

// Forward computes the next-token distribution for the context
// (prevID, currID). The result has vocabSize non-negative entries summing
// to 1. No side effects.
func (m *Model) Forward(prevID, currID int) ([]float64, error) {
	if prevID < 0 || prevID >= m.vocabSize || currID < 0 || currID >= m.vocabSize {
		return nil, errors.Wrapf(ErrInvalidContext, "context (%d, %d) with vocab size %d",
			prevID, currID, m.vocabSize)
	}
	return utils.Softmax(m.scoreRow(prevID, currID)), nil
}
