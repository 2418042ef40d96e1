package domain

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the angular closeness of two vectors in [-1, 1].
// Vectors of different lengths indicate mixed embedding models and fail with
// ErrVectorDimMismatch. A zero-norm vector carries no direction and scores 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrVectorDimMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
