// Package vector provides the similarity arithmetic used by the ranker.
package vector

import "math"

// Cosine returns the cosine similarity of a and b: dot(a,b)/(|a|*|b|),
// range [-1, 1]. A zero-norm operand or a length mismatch yields 0,
// never NaN. Callers that care about mismatched dimensions must check
// lengths before scoring.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
