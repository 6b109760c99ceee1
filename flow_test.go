package boltzgen

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

var (
	_ Flow = (*CoordinateTransform)(nil)
	_ Flow = (*Scaling)(nil)
	_ Flow = (*AddNoise)(nil)
)

func TestScaling(Te *testing.T) {
	S, err := NewScaling([]float64{1, 2, 3}, 2)
	if err != nil {
		Te.Fatal(err)
	}
	z := mat.NewDense(1, 3, []float64{2, 4, 6})
	out, jac, err := S.Forward(z)
	if err != nil {
		Te.Fatal(err)
	}
	want := []float64{3, 6, 9}
	for j, w := range want {
		if math.Abs(out.At(0, j)-w) > 1e-12 {
			Te.Errorf("scaled column %d is %f, want %f", j, out.At(0, j), w)
		}
	}
	if wantJac := 3 * math.Log(2); math.Abs(jac[0]-wantJac) > 1e-12 {
		Te.Errorf("scaling Jacobian %f, want %f", jac[0], wantJac)
	}
	back, ijac, err := S.Inverse(out)
	if err != nil {
		Te.Fatal(err)
	}
	if d := maxAbsDiff(z, back); d > 1e-12 {
		Te.Errorf("scaling round trip moved the batch by up to %g", d)
	}
	if math.Abs(jac[0]+ijac[0]) > 1e-12 {
		Te.Errorf("scaling Jacobians do not cancel: %f %f", jac[0], ijac[0])
	}
	if _, _, err := S.Forward(mat.NewDense(1, 2, nil)); err == nil {
		Te.Error("mis-shaped batch should fail")
	}
	//a non-positive scale is not invertible and must not construct
	for _, bad := range []float64{0, -2, math.NaN()} {
		if _, err := NewScaling([]float64{1}, bad); err == nil {
			Te.Errorf("scale %v should fail", bad)
		}
	}
}

func TestAddNoise(Te *testing.T) {
	A := NewAddNoise(0.01)
	z := mat.NewDense(4, 6, nil)
	out, jac, err := A.Forward(z)
	if err != nil {
		Te.Fatal(err)
	}
	r, c := out.Dims()
	if r != 4 || c != 6 {
		Te.Fatalf("noisy batch is %dx%d, want 4x6", r, c)
	}
	moved := false
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := out.At(i, j)
			if d != 0 {
				moved = true
			}
			if math.Abs(d) > 0.5 {
				Te.Errorf("noise of %f with std 0.01", d)
			}
		}
	}
	if !moved {
		Te.Error("no noise was added")
	}
	for s, j := range jac {
		if j != 0 {
			Te.Errorf("sample %d: noise Jacobian %f, want 0", s, j)
		}
	}
}
