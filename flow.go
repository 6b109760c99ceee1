package boltzgen

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Flow is the interface the enclosing normalizing-flow framework consumes:
// paired numeric transforms, each returning the transformed batch and the
// per-sample log-determinant of its Jacobian. By flow convention, Forward
// is the sampling direction (latent to data).
type Flow interface {
	Forward(z *mat.Dense) (*mat.Dense, []float64, error)
	Inverse(z *mat.Dense) (*mat.Dense, []float64, error)
}

// CoordinateTransform adapts a MixedTransform to the flow convention. The
// mixed transform names "forward" the Cartesian-to-internal direction,
// while a flow's forward pass is the sampling direction, so the two are
// swapped here: the flow's Forward runs the mixed transform's Inverse, and
// vice versa. Keeping the flip in one place avoids sign and direction bugs
// in the layers above.
type CoordinateTransform struct {
	mixed *MixedTransform
}

// NewCoordinateTransform builds the flow layer for a molecule with ndim
// flattened coordinates, given the Z-matrix, the backbone atoms to keep in
// Cartesian form (exactly three), and the reference dataset used to fit the
// normalization statistics.
func NewCoordinateTransform(data *mat.Dense, ndim int, zmat ZMatrix, backbone []int, opts *Options) (*CoordinateTransform, error) {
	m, err := NewMixedTransform(ndim, backbone, zmat, data, opts)
	if err != nil {
		return nil, err
	}
	return &CoordinateTransform{mixed: m}, nil
}

// Forward maps latent internal coordinates to Cartesian coordinates.
func (C *CoordinateTransform) Forward(z *mat.Dense) (*mat.Dense, []float64, error) {
	return C.mixed.Inverse(z)
}

// Inverse maps Cartesian coordinates to latent internal coordinates.
func (C *CoordinateTransform) Inverse(z *mat.Dense) (*mat.Dense, []float64, error) {
	return C.mixed.Forward(z)
}

// PeriodicLoss returns the periodic-angle penalty of the last Forward call
// (the reconstruction direction). See ICTransform.PeriodicLoss.
func (C *CoordinateTransform) PeriodicLoss() []float64 {
	return C.mixed.PeriodicLoss()
}

// Scaling is a flow layer that scales a batch around a fixed mean:
// z' = (z-mean)*scale + mean. Useful to widen or sharpen a distribution
// produced by earlier layers without moving its center.
type Scaling struct {
	mean  []float64
	scale float64
}

// NewScaling returns a Scaling layer. mean must have one entry per column
// of the batches it will see, and scale must be a positive number, or the
// layer would not be invertible.
func NewScaling(mean []float64, scale float64) (*Scaling, error) {
	if math.IsNaN(scale) || scale <= 0 {
		return nil, validationErr("NewScaling", "scale must be positive, got %v", scale)
	}
	return &Scaling{mean: append([]float64{}, mean...), scale: scale}, nil
}

func (S *Scaling) apply(z *mat.Dense, scale float64) (*mat.Dense, []float64, error) {
	nb, c := z.Dims()
	if c != len(S.mean) {
		return nil, nil, validationErr("Scaling", "batch has %d columns, want %d", c, len(S.mean))
	}
	out := mat.NewDense(nb, c, nil)
	logdet := float64(c) * math.Log(scale)
	jac := make([]float64, nb)
	for s := 0; s < nb; s++ {
		row := z.RawRowView(s)
		dst := out.RawRowView(s)
		for j := 0; j < c; j++ {
			dst[j] = (row[j]-S.mean[j])*scale + S.mean[j]
		}
		jac[s] = logdet
	}
	return out, jac, nil
}

func (S *Scaling) Forward(z *mat.Dense) (*mat.Dense, []float64, error) {
	return S.apply(z, S.scale)
}

func (S *Scaling) Inverse(z *mat.Dense) (*mat.Dense, []float64, error) {
	return S.apply(z, 1/S.scale)
}

// AddNoise is a flow layer that adds a small amount of Gaussian noise, as a
// dequantization step. It is not an exact bijection: both directions add
// noise and report a zero log-determinant.
type AddNoise struct {
	dist distuv.Normal
}

// NewAddNoise returns an AddNoise layer with the given noise standard
// deviation.
func NewAddNoise(std float64) *AddNoise {
	return &AddNoise{dist: distuv.Normal{Mu: 0, Sigma: std}}
}

func (A *AddNoise) Forward(z *mat.Dense) (*mat.Dense, []float64, error) {
	nb, c := z.Dims()
	out := mat.NewDense(nb, c, nil)
	for s := 0; s < nb; s++ {
		row := z.RawRowView(s)
		dst := out.RawRowView(s)
		for j := 0; j < c; j++ {
			dst[j] = row[j] + A.dist.Rand()
		}
	}
	return out, make([]float64, nb), nil
}

func (A *AddNoise) Inverse(z *mat.Dense) (*mat.Dense, []float64, error) {
	return A.Forward(z)
}
