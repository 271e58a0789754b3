package context2

import (
	"sort"

	"github.com/manningwu07/toyGPT/utils"
	"github.com/manningwu07/toyGPT/vocab"
)

// Prediction is one (token id, probability) entry of a distribution.
type Prediction struct {
	ID   int
	Prob float64
}

// Generate decodes numTokens tokens greedily, starting from a single start
// token. The initial two-token context duplicates the start token,
// (startID, startID); there is no dedicated beginning-of-sequence marker.
// Each step takes the argmax of Forward (ties resolve to the smallest ID)
// and slides the context, so the output is fully deterministic. The start
// token itself is not part of the returned sequence.
func Generate(m *Model, v *vocab.Vocabulary, startToken string, numTokens int) ([]string, error) {
	startID, err := v.TokenID(startToken)
	if err != nil {
		return nil, err
	}

	prev, curr := startID, startID
	out := make([]string, 0, numTokens)
	for n := 0; n < numTokens; n++ {
		probs, err := m.Forward(prev, curr)
		if err != nil {
			return nil, err
		}
		next := utils.Argmax(probs)
		tok, err := v.TokenByID(next)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		prev, curr = curr, next
	}
	return out, nil
}

// TopK returns the k highest-probability entries, descending by
// probability with ties broken by ascending ID. k is clamped to
// [1, len(probs)].
func TopK(probs []float64, k int) []Prediction {
	if k < 1 {
		k = 1
	}
	if k > len(probs) {
		k = len(probs)
	}
	preds := make([]Prediction, len(probs))
	for i, p := range probs {
		preds[i] = Prediction{ID: i, Prob: p}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Prob == preds[j].Prob {
			return preds[i].ID < preds[j].ID
		}
		return preds[i].Prob > preds[j].Prob
	})
	return preds[:k]
}
