package reid

import (
	"gonum.org/v1/gonum/floats"
)

// ReconcileDimension adjusts a feature vector to the target dimension:
// shorter vectors are zero-padded at the end, longer ones truncated. The
// input is never modified. Returns nil for a nil input.
func ReconcileDimension(vec []float64, dim int) []float64 {
	if vec == nil || dim <= 0 {
		return nil
	}
	out := make([]float64, dim)
	copy(out, vec)
	return out
}

// CosineSimilarity computes 1 - cosine distance between two vectors of
// equal length. Zero-norm vectors have no direction, so similarity against
// them is defined as 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
