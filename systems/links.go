package systems

import "gonum.org/v1/gonum/spatial/r2"

// Link is a connection line between particles A and B (A < B).
type Link struct {
	A, B  int
	Alpha float64
}

// LinkDistance is the distance below which two particles are connected.
func LinkDistance(width float64, prm Params) float64 {
	if prm.LinkDivisor <= 0 {
		return 0
	}
	return width / prm.LinkDivisor
}

// Connect appends a Link for every unordered pair closer than
// LinkDistance(width). Opacity falls linearly from LinkAlpha at zero distance
// to 0 at the threshold. Self pairs are never emitted.
// Returns the updated slice. Reuse dst across frames to avoid allocations.
func Connect(dst []Link, pos []r2.Vec, width float64, prm Params) []Link {
	limit := LinkDistance(width, prm)
	if limit <= 0 {
		return dst
	}
	for a := 0; a < len(pos); a++ {
		for b := a + 1; b < len(pos); b++ {
			dist := r2.Norm(r2.Sub(pos[a], pos[b]))
			if dist < limit {
				dst = append(dst, Link{A: a, B: b, Alpha: (1 - dist/limit) * prm.LinkAlpha})
			}
		}
	}
	return dst
}

// PairChecks is the number of distance tests Connect performs for n particles.
func PairChecks(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
