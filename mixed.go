/*
 * mixed.go, part of goBoltzgen.
 *
 * Copyright 2025 Raul Mera <rmeraa{at}academicosDOTutaDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package boltzgen

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// anchorFrame reduces the nine Cartesian coordinates of the three anchor
// atoms to two bond lengths and one angle measured in a local frame: the
// first anchor sits at the origin, the second on the x axis and the third
// in the xy plane. This removes the six rigid-body degrees of freedom the
// anchors would otherwise carry; the global rotation and translation of the
// molecule are not modeled and must be removed upstream (e.g. by aligning
// the training data before fitting).
type anchorFrame struct {
	meanB1, meanB2, meanAngle float64
	stdB1, stdB2, stdAngle    float64
	scaleJac                  float64
}

// anchorInternals returns b1 = |p2-p1|, b2 = |p3-p1| and the angle between
// the two difference vectors, for a 9-element anchor coordinate slice.
func anchorInternals(c []float64) (b1, b2, angle float64) {
	p1 := c[0:3]
	p2 := c[3:6]
	p3 := c[6:9]
	b1 = Bond(p1, p2)
	b2 = Bond(p1, p3)
	angle = Angle(p2, p1, p3)
	return b1, b2, angle
}

func fitAnchorFrame(b1s, b2s, angles []float64, def DefaultStd) *anchorFrame {
	f := new(anchorFrame)
	f.meanB1, f.stdB1 = meanStd(b1s, def.Bond)
	f.meanB2, f.stdB2 = meanStd(b2s, def.Bond)
	f.meanAngle, f.stdAngle = meanStd(angles, def.Angle)
	f.scaleJac = -(math.Log(f.stdB1) + math.Log(f.stdB2) + math.Log(f.stdAngle))
	return f
}

// MixedTransform composes the internal-coordinate transform with the anchor
// frame reduction: Forward takes a batch of flattened Cartesian coordinates
// (dims columns) to a batch of dims-6 internal coordinates, with the anchor
// triple reduced to [b1, b2, angle] at the front, and Inverse is its exact
// inverse. It is the single entry point a flow layer consumes, modulo the
// direction convention handled by CoordinateTransform.
type MixedTransform struct {
	dims       int
	ic         *ICTransform
	frame      *anchorFrame
	permute    []int //permuted position -> original flattened index
	permuteInv []int //original flattened index -> permuted position
}

// NewMixedTransform builds the composed transform. anchors must have
// exactly three distinct atoms: a rigid frame needs three points to fix
// translation, rotation and chirality. The statistics of both stages are
// fit from the reference dataset.
func NewMixedTransform(dims int, anchors []int, zmat ZMatrix, data *mat.Dense, opts *Options) (*MixedTransform, error) {
	if len(anchors) != 3 {
		return nil, validationErr("NewMixedTransform", "exactly 3 anchor atoms are required, got %d", len(anchors))
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	ic, err := NewICTransform(dims, zmat, anchors, data, opts)
	if err != nil {
		return nil, err
	}
	M := &MixedTransform{
		dims: dims,
		ic:   ic,
	}
	//permute puts the anchor coordinates first, then the Z-matrix atoms in
	//their input order; permuteInv is its inverse
	all := append([]int{}, anchors...)
	all = append(all, zmat.Atoms()...)
	M.permute = make([]int, dims)
	M.permuteInv = make([]int, dims)
	for i, j := range all {
		for k := 0; k < 3; k++ {
			M.permute[3*i+k] = 3*j + k
			M.permuteInv[3*j+k] = 3*i + k
		}
	}
	nb, _ := data.Dims()
	b1s := make([]float64, nb)
	b2s := make([]float64, nb)
	angles := make([]float64, nb)
	var anchor [9]float64
	for s := 0; s < nb; s++ {
		row := data.RawRowView(s)
		for i := 0; i < 9; i++ {
			anchor[i] = row[M.permute[i]]
		}
		b1s[s], b2s[s], angles[s] = anchorInternals(anchor[:])
	}
	M.frame = fitAnchorFrame(b1s, b2s, angles, opts.DefaultStd)
	return M, nil
}

// Dim returns the Cartesian-side dimensionality of the transform.
func (M *MixedTransform) Dim() int {
	return M.dims
}

// TransformedDim returns the internal-side dimensionality, Dim()-6.
func (M *MixedTransform) TransformedDim() int {
	return M.dims - 6
}

// PeriodicLoss returns the periodic-angle penalty of the last Inverse call.
// See ICTransform.PeriodicLoss.
func (M *MixedTransform) PeriodicLoss() []float64 {
	return M.ic.PeriodicLoss()
}

// Forward maps Cartesian coordinates (dims columns) to internal coordinates
// (dims-6 columns): the internal-coordinate stage first, then the anchor
// reduction on the anchor block. The forward anchor Jacobian carries a
// -log(b2) term from the polar placement of the third anchor, undone
// exactly by Inverse.
func (M *MixedTransform) Forward(x *mat.Dense) (*mat.Dense, []float64, error) {
	trans, jac, err := M.ic.Forward(x)
	if err != nil {
		return nil, nil, err
	}
	f := M.frame
	nb, _ := trans.Dims()
	out := mat.NewDense(nb, M.dims-6, nil)
	var anchor [9]float64
	for s := 0; s < nb; s++ {
		src := trans.RawRowView(s)
		dst := out.RawRowView(s)
		for i := 0; i < 9; i++ {
			anchor[i] = src[M.permute[i]]
		}
		b1, b2, angle := anchorInternals(anchor[:])
		jac[s] -= math.Log(b2)
		dst[0] = (b1 - f.meanB1) / f.stdB1
		dst[1] = (b2 - f.meanB2) / f.stdB2
		dst[2] = (angle - f.meanAngle) / f.stdAngle
		for i := 9; i < M.dims; i++ {
			dst[i-6] = src[M.permute[i]]
		}
		jac[s] += f.scaleJac
	}
	return out, jac, nil
}

// Inverse maps internal coordinates (dims-6 columns) back to Cartesian
// coordinates (dims columns): it rebuilds the anchor triple in the local
// frame, reassembles the full vector and runs the internal-coordinate
// inverse.
func (M *MixedTransform) Inverse(z *mat.Dense) (*mat.Dense, []float64, error) {
	nb, c := z.Dims()
	if c != M.dims-6 {
		return nil, nil, validationErr("MixedTransform.Inverse", "batch has %d columns, want %d", c, M.dims-6)
	}
	f := M.frame
	full := mat.NewDense(nb, M.dims, nil)
	extra := make([]float64, nb)
	var cart [9]float64
	for s := 0; s < nb; s++ {
		src := z.RawRowView(s)
		b1 := src[0]*f.stdB1 + f.meanB1
		b2 := src[1]*f.stdB2 + f.meanB2
		angle := src[2]*f.stdAngle + f.meanAngle
		for i := range cart {
			cart[i] = 0 //first anchor at the origin
		}
		cart[3] = b1
		cart[6] = b2 * math.Cos(angle)
		cart[7] = b2 * math.Sin(angle)
		dst := full.RawRowView(s)
		for i := 0; i < 9; i++ {
			dst[M.permute[i]] = cart[i]
		}
		for i := 9; i < M.dims; i++ {
			dst[M.permute[i]] = src[i-6]
		}
		extra[s] = math.Log(b2) - f.scaleJac
	}
	out, jac, err := M.ic.Inverse(full)
	if err != nil {
		return nil, nil, err
	}
	for s := range jac {
		jac[s] += extra[s]
	}
	return out, jac, nil
}

// Mean and std accessors for the anchor reduction, mostly useful for
// diagnostics and tests.
func (M *MixedTransform) AnchorStats() (mean, std [3]float64) {
	f := M.frame
	return [3]float64{f.meanB1, f.meanB2, f.meanAngle}, [3]float64{f.stdB1, f.stdB2, f.stdAngle}
}
