package boltzgen

import (
	"math"
	"testing"
)

func TestKBT(Te *testing.T) {
	if got := KBT(300); math.Abs(got-2.4942) > 1e-9 {
		Te.Errorf("KBT(300) = %f, want 2.4942", got)
	}
}

func TestRegularizeEnergy(Te *testing.T) {
	cut, max := 10.0, 100.0
	in := []float64{5, 50, 1e9, math.NaN(), math.Inf(1), math.Inf(-1)}
	capped := math.Log(max-cut+1) + cut
	want := []float64{5, math.Log(50-cut+1) + cut, capped, capped, capped, capped}
	out := RegularizeEnergy(in, cut, max)
	if len(out) != len(in) {
		Te.Fatalf("%d energies out, want %d", len(out), len(in))
	}
	for i, w := range want {
		if math.Abs(out[i]-w) > 1e-12 {
			Te.Errorf("energy %d regularized to %f, want %f", i, out[i], w)
		}
	}
	//the input must not be modified
	if in[0] != 5 || in[1] != 50 {
		Te.Error("RegularizeEnergy modified its input")
	}
	//below the cut energies pass through linearly
	out = RegularizeEnergy([]float64{-30, 9.99}, cut, max)
	if out[0] != -30 || out[1] != 9.99 {
		Te.Errorf("sub-cut energies became %v", out)
	}
}
