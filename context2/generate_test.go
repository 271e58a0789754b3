package context2

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manningwu07/toyGPT/utils"
	"github.com/manningwu07/toyGPT/vocab"
)

func trainedCatSatMat(t *testing.T) (*Model, *vocab.Vocabulary) {
	t.Helper()
	tokens := []string{"cat", "sat", "mat", "cat", "sat", "mat"}
	v := vocab.Build(tokens)
	ids, err := v.IDs(tokens)
	require.NoError(t, err)

	m, err := New(v.Size())
	require.NoError(t, err)
	_, err = Train(m, MakeTrainingPairs(ids), 0.1, 50)
	require.NoError(t, err)
	return m, v
}

func TestGenerateUnknownStartToken(t *testing.T) {
	m, v := trainedCatSatMat(t)

	_, err := Generate(m, v, "dog", 4)
	assert.True(t, errors.Is(err, vocab.ErrTokenNotFound))
}

func TestGenerateLength(t *testing.T) {
	m, v := trainedCatSatMat(t)

	out, err := Generate(m, v, "cat", 7)
	require.NoError(t, err)
	assert.Len(t, out, 7)

	out, err = Generate(m, v, "cat", 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateIsDeterministic(t *testing.T) {
	m, v := trainedCatSatMat(t)

	out1, err := Generate(m, v, "cat", 10)
	require.NoError(t, err)
	out2, err := Generate(m, v, "cat", 10)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}

// Every generated token must be the argmax of Forward on the sliding
// context, starting from the duplicated (start, start) bootstrap.
func TestGenerateMatchesForwardStepwise(t *testing.T) {
	m, v := trainedCatSatMat(t)

	startID, err := v.TokenID("cat")
	require.NoError(t, err)

	out, err := Generate(m, v, "cat", 6)
	require.NoError(t, err)

	prev, curr := startID, startID
	for i, tok := range out {
		probs, err := m.Forward(prev, curr)
		require.NoError(t, err)
		wantID := utils.Argmax(probs)
		wantTok, err := v.TokenByID(wantID)
		require.NoError(t, err)
		assert.Equal(t, wantTok, tok, "step %d", i)
		prev, curr = curr, wantID
	}
}

// Once the context has fallen into the trained cycle, generation must
// follow it: after context (cat, sat) the next tokens cycle mat, cat, sat.
func TestGenerateFollowsTrainedCycle(t *testing.T) {
	m, v := trainedCatSatMat(t)

	// Seed the context with (cat, sat) by hand and greedily decode.
	catID, err := v.TokenID("cat")
	require.NoError(t, err)
	satID, err := v.TokenID("sat")
	require.NoError(t, err)

	prev, curr := catID, satID
	var got []string
	for i := 0; i < 6; i++ {
		probs, err := m.Forward(prev, curr)
		require.NoError(t, err)
		next := utils.Argmax(probs)
		tok, err := v.TokenByID(next)
		require.NoError(t, err)
		got = append(got, tok)
		prev, curr = curr, next
	}
	assert.Equal(t, []string{"mat", "cat", "sat", "mat", "cat", "sat"}, got)
}

func TestTopKSpecOrdering(t *testing.T) {
	got := TopK([]float64{0.1, 0.5, 0.4}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, Prediction{ID: 1, Prob: 0.5}, got[0])
	assert.Equal(t, Prediction{ID: 2, Prob: 0.4}, got[1])
	assert.Equal(t, Prediction{ID: 0, Prob: 0.1}, got[2])
}

func TestTopKTiesBreakByAscendingID(t *testing.T) {
	got := TopK([]float64{0.4, 0.2, 0.4}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

func TestTopKClampsK(t *testing.T) {
	probs := []float64{0.2, 0.5, 0.3}

	got := TopK(probs, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	got = TopK(probs, 10)
	assert.Len(t, got, 3)
}
