package scoring

import (
	"fmt"
	"math"
)

// epsilon keeps degenerate (all-zero) embeddings from dividing by zero.
const epsilon = 1e-8

// CosineSimilarity returns dot(a,b) / (|a|*|b| + 1e-8).
// Accumulation is done in float64.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon), nil
}
