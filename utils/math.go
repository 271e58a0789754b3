package utils

import "math"

// Numeric helpers shared by the model core and the CLI commands.

// Softmax turns raw scores into a probability distribution.
// Subtracts the max score before exponentiating for numerical stability.
func Softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	mx := scores[0]
	for _, v := range scores {
		if v > mx {
			mx = v
		}
	}
	sum := 0.0
	for i, v := range scores {
		e := math.Exp(v - mx)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the index of the largest value. Ties resolve to the
// smallest index, which is what greedy decoding relies on.
func Argmax(v []float64) int {
	bestI := 0
	best := math.Inf(-1)
	for i, x := range v {
		if x > best {
			best = x
			bestI = i
		}
	}
	return bestI
}

// Mean of a float slice; 0 for an empty slice.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
