package boltzgen

import (
	"math"
	"testing"
)

func TestBondAngle(Te *testing.T) {
	if b := Bond([]float64{0, 0, 0}, []float64{3, 4, 0}); math.Abs(b-5) > 1e-12 {
		Te.Errorf("Bond: got %f, want 5", b)
	}
	a := Angle([]float64{1, 0, 0}, []float64{0, 0, 0}, []float64{0, 1, 0})
	if math.Abs(a-math.Pi/2) > 1e-12 {
		Te.Errorf("Angle: got %f, want pi/2", a)
	}
	//colinear points, with the cosine pushed past 1 by rounding
	a = Angle([]float64{1, 1, 1}, []float64{0, 0, 0}, []float64{2, 2, 2})
	if a != 0 {
		Te.Errorf("Angle of colinear points: got %f, want 0", a)
	}
}

// placeAtom must be the exact inverse of the (Bond, Angle, Dihedral)
// measurement, for any branch of the dihedral.
func TestPlacementRoundTrip(Te *testing.T) {
	p1 := []float64{2.9, 1.15, 0}
	p2 := []float64{1.54, 0, 0}
	p3 := []float64{0, 0, 0}
	bonds := []float64{1.1, 1.54}
	angles := []float64{0.5, 2.0}
	dihs := []float64{0.3, -0.3, 2.9, -2.9, math.Pi / 2}
	pos := make([]float64, 3)
	for _, b := range bonds {
		for _, a := range angles {
			for _, d := range dihs {
				jac := placeAtom(pos, p1, p2, p3, b, a, d)
				wantJac := 2*math.Log(b) + math.Log(math.Sin(a))
				if math.Abs(jac-wantJac) > 1e-12 {
					Te.Errorf("placement Jacobian: got %f, want %f", jac, wantJac)
				}
				if got := Bond(p1, pos); math.Abs(got-b) > 1e-10 {
					Te.Errorf("bond not recovered: got %f, want %f", got, b)
				}
				if got := Angle(p2, p1, pos); math.Abs(got-a) > 1e-10 {
					Te.Errorf("angle not recovered: got %f, want %f", got, a)
				}
				if got := Dihedral(p3, p2, p1, pos); math.Abs(got-d) > 1e-10 {
					Te.Errorf("dihedral not recovered: got %f, want %f", got, d)
				}
			}
		}
	}
}

func TestWrapPi(Te *testing.T) {
	cases := [][2]float64{
		{0.3, 0.3},
		{math.Pi + 0.1, -math.Pi + 0.1},
		{-math.Pi - 0.1, math.Pi - 0.1},
		{2 * math.Pi, 0},
		{-3 * math.Pi, math.Pi},
	}
	for _, c := range cases {
		if got := wrapPi(c[0]); math.Abs(got-c[1]) > 1e-12 {
			Te.Errorf("wrapPi(%f): got %f, want %f", c[0], got, c[1])
		}
	}
}

func TestPeriodicLoss(Te *testing.T) {
	if l := periodicLoss(3.0); l != 0 {
		Te.Errorf("loss inside the branch: got %f, want 0", l)
	}
	if l := periodicLoss(math.Pi); l != 0 {
		Te.Errorf("loss at the boundary: got %f, want 0", l)
	}
	if l := periodicLoss(math.Pi + 0.5); math.Abs(l-0.25) > 1e-12 {
		Te.Errorf("loss above the branch: got %f, want 0.25", l)
	}
	if l := periodicLoss(-math.Pi - 0.5); math.Abs(l-0.25) > 1e-12 {
		Te.Errorf("loss below the branch: got %f, want 0.25", l)
	}
}

// A cluster straddling the branch cut must average near the cut, not near
// zero as the arithmetic mean does.
func TestCircularMean(Te *testing.T) {
	vals := []float64{math.Pi - 0.2, math.Pi - 0.1, -math.Pi + 0.1}
	got := circularMean(vals)
	if math.Abs(got-3.0748) > 1e-3 {
		Te.Errorf("circular mean: got %f, want about 3.0748", got)
	}
	arit := (vals[0] + vals[1] + vals[2]) / 3
	if math.Abs(got-arit) < 1 {
		Te.Errorf("circular mean %f suspiciously close to the arithmetic mean %f", got, arit)
	}
}
