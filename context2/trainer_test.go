package context2

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manningwu07/toyGPT/utils"
	"github.com/manningwu07/toyGPT/vocab"
)

func TestMakeTrainingPairs(t *testing.T) {
	pairs := MakeTrainingPairs([]int{0, 1, 2, 3, 4})
	require.Len(t, pairs, 3)
	assert.Equal(t, TrainingPair{Prev: 0, Curr: 1, Target: 2}, pairs[0])
	assert.Equal(t, TrainingPair{Prev: 1, Curr: 2, Target: 3}, pairs[1])
	assert.Equal(t, TrainingPair{Prev: 2, Curr: 3, Target: 4}, pairs[2])
}

func TestMakeTrainingPairsShortSequences(t *testing.T) {
	assert.Empty(t, MakeTrainingPairs(nil))
	assert.Empty(t, MakeTrainingPairs([]int{7}))
	assert.Empty(t, MakeTrainingPairs([]int{7, 8}))
	assert.Len(t, MakeTrainingPairs([]int{7, 8, 9}), 1)
}

func TestTrainRejectsBadConfig(t *testing.T) {
	m, err := New(3)
	require.NoError(t, err)
	pairs := MakeTrainingPairs([]int{0, 1, 2})

	_, err = Train(m, pairs, 0, 10)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Train(m, pairs, -0.1, 10)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Train(m, pairs, 0.1, 0)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Train(m, nil, 0.1, 10)
	assert.True(t, errors.Is(err, ErrNoTrainingPairs))
}

func TestTrainRejectsOutOfRangeTarget(t *testing.T) {
	m, err := New(2)
	require.NoError(t, err)

	_, err = Train(m, []TrainingPair{{Prev: 0, Curr: 1, Target: 2}}, 0.1, 1)
	assert.True(t, errors.Is(err, ErrInvalidContext))
}

// The repeating corpus "cat sat mat cat sat mat" makes every context
// deterministic, so training must drive accuracy to 1 and loss towards 0.
func TestTrainConvergesOnCycledCorpus(t *testing.T) {
	tokens := []string{"cat", "sat", "mat", "cat", "sat", "mat"}
	v := vocab.Build(tokens)
	require.Equal(t, 3, v.Size())

	ids, err := v.IDs(tokens)
	require.NoError(t, err)
	pairs := MakeTrainingPairs(ids)
	require.Len(t, pairs, 4)

	m, err := New(v.Size())
	require.NoError(t, err)

	history, err := Train(m, pairs, 0.1, 50)
	require.NoError(t, err)
	require.Len(t, history, 50)

	first, last := history[0], history[49]
	assert.Equal(t, 1, first.Epoch)
	assert.Equal(t, 50, last.Epoch)
	assert.Equal(t, 1.0, last.Accuracy)
	assert.Less(t, last.Loss, first.Loss)
	assert.Less(t, last.Loss, 0.7)

	// forward(id(cat), id(sat)) must predict id(mat).
	catID, err := v.TokenID("cat")
	require.NoError(t, err)
	satID, err := v.TokenID("sat")
	require.NoError(t, err)
	matID, err := v.TokenID("mat")
	require.NoError(t, err)

	probs, err := m.Forward(catID, satID)
	require.NoError(t, err)
	assert.Equal(t, matID, utils.Argmax(probs))
}

func TestTrainIsDeterministic(t *testing.T) {
	pairs := MakeTrainingPairs([]int{0, 1, 2, 0, 1, 2, 1, 0})

	m1, err := New(3)
	require.NoError(t, err)
	h1, err := Train(m1, pairs, 0.05, 20)
	require.NoError(t, err)

	m2, err := New(3)
	require.NoError(t, err)
	h2, err := Train(m2, pairs, 0.05, 20)
	require.NoError(t, err)

	require.Equal(t, h1, h2)
	for prev := 0; prev < 3; prev++ {
		for curr := 0; curr < 3; curr++ {
			p1, err := m1.Forward(prev, curr)
			require.NoError(t, err)
			p2, err := m2.Forward(prev, curr)
			require.NoError(t, err)
			assert.Equal(t, p1, p2)
		}
	}
}

func TestTrainLeavesUnseenContextsUntouched(t *testing.T) {
	m, err := New(3)
	require.NoError(t, err)

	_, err = Train(m, []TrainingPair{{Prev: 0, Curr: 1, Target: 2}}, 0.1, 5)
	require.NoError(t, err)

	// Context (2,2) never appeared: still uniform.
	probs, err := m.Forward(2, 2)
	require.NoError(t, err)
	for i, p := range probs {
		assert.InDelta(t, 1.0/3, p, 1e-12, "probs[%d]", i)
	}
}

// Finite-difference check that the analytic gradient p[i] - 1{i==target}
// matches the numeric gradient of the cross-entropy loss w.r.t. the raw
// score row.
func TestGradientMatchesFiniteDifference(t *testing.T) {
	const V = 4
	m, err := New(V)
	require.NoError(t, err)

	// Non-trivial starting scores for the checked context row.
	prev, curr, target := 1, 2, 3
	row := prev*V + curr
	w := m.Weights()
	for j := 0; j < V; j++ {
		w.Set(row, j, 0.3*float64(j)-0.2)
	}

	loss := func() float64 {
		probs, err := m.Forward(prev, curr)
		require.NoError(t, err)
		return -math.Log(probs[target] + 1e-12)
	}

	probs, err := m.Forward(prev, curr)
	require.NoError(t, err)

	eps := 1e-5
	for j := 0; j < V; j++ {
		anaGrad := probs[j]
		if j == target {
			anaGrad -= 1.0
		}

		w0 := w.At(row, j)
		w.Set(row, j, w0+eps)
		lp := loss()
		w.Set(row, j, w0-eps)
		lm := loss()
		w.Set(row, j, w0)

		numGrad := (lp - lm) / (2.0 * eps)
		if math.Abs(numGrad-anaGrad) > 1e-6 {
			t.Fatalf("score[%d] grad mismatch: num=%.6g ana=%.6g", j, numGrad, anaGrad)
		}
	}
}
