package boltzgen

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//Shared fixtures: a small octane-like chain with a generic, non-degenerate
//geometry. The first three atoms are the anchors and sit in the canonical
//frame (first at the origin, second on the x axis, third in the xy plane
//with positive y), so the mixed transform round-trips exactly.

func chainCoords() []float64 {
	return []float64{
		0.00, 0.00, 0.00,
		1.54, 0.00, 0.00,
		2.90, 1.15, 0.00,
		4.30, 0.60, 0.20,
		5.70, -0.10, 0.70,
		7.05, 0.65, 0.45,
		8.40, -0.05, 0.95,
		9.80, 0.75, 0.60,
	}
}

func chainZMatrix() ZMatrix {
	//deliberately out of placement order, to exercise the sorting
	return ZMatrix{
		{Atom: 5, Refs: [3]int{4, 3, 2}},
		{Atom: 3, Refs: [3]int{2, 1, 0}},
		{Atom: 4, Refs: [3]int{3, 2, 1}},
		{Atom: 6, Refs: [3]int{5, 4, 3}},
		{Atom: 7, Refs: [3]int{2, 0, 1}},
	}
}

var chainAnchors = []int{0, 1, 2}

//chainData perturbs the base geometry deterministically into n samples,
//leaving the anchor-frame components untouched so the canonical alignment
//of the anchors is preserved in every sample.
func chainData(n int) *mat.Dense {
	base := chainCoords()
	fixed := map[int]bool{0: true, 1: true, 2: true, 4: true, 5: true, 8: true}
	d := mat.NewDense(n, len(base), nil)
	for s := 0; s < n; s++ {
		row := d.RawRowView(s)
		copy(row, base)
		for j := range row {
			if fixed[j] {
				continue
			}
			row[j] += 0.07 * math.Sin(float64(2*j+3*s+1))
		}
	}
	return d
}

func maxAbsDiff(a, b *mat.Dense) float64 {
	ar, ac := a.Dims()
	var m float64
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			d := math.Abs(a.At(i, j) - b.At(i, j))
			if d > m {
				m = d
			}
		}
	}
	return m
}
