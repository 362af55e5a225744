package fuzzy

import "fmt"

// Triangle is a triangular membership function with feet at A and C and
// peak at B. Degree is 0 outside (A, C), 1 at B, and linear in between.
type Triangle struct {
	A float64
	B float64
	C float64
}

// Degree returns the membership degree of x in [0, 1].
func (t Triangle) Degree(x float64) float64 {
	if x <= t.A || x >= t.C {
		return 0
	}
	if x == t.B {
		return 1
	}
	if x < t.B {
		return (x - t.A) / (t.B - t.A)
	}
	return (t.C - x) / (t.C - t.B)
}

// Validate checks the strict ordering A < B < C. A violation is a
// configuration error and must be caught when the engine is built,
// not per evaluation.
func (t Triangle) Validate() error {
	if !(t.A < t.B && t.B < t.C) {
		return fmt.Errorf("invalid triangle (%.2f, %.2f, %.2f): parameters must satisfy a < b < c", t.A, t.B, t.C)
	}
	return nil
}
