/*
 * internal.go, part of goBoltzgen.
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
	"gonum.org/v1/gonum/stat"
)

// DefaultStd holds the fallback standard deviations used when the reference
// dataset has a single sample, so a sample standard deviation is undefined.
type DefaultStd struct {
	Bond  float64
	Angle float64
	Dih   float64
}

// Options contains construction options for the internal coordinate
// transforms.
type Options struct {
	CircDih      []int //atom indices whose dihedral is circular (periodic)
	ShiftDih     bool  //move each circular dihedral's mean to the least populated histogram bin
	ShiftDihBins int
	DefaultStd   DefaultStd
}

// DefaultOptions returns the options used when the caller passes nil: no
// circular dihedrals, no histogram shift, and the usual fallback widths.
func DefaultOptions() *Options {
	r := new(Options)
	r.ShiftDihBins = 100
	r.DefaultStd = DefaultStd{Bond: 0.005, Angle: 0.15, Dih: 0.2}
	return r
}

// ICTransform is the bijective map between the Cartesian coordinates of the
// Z-matrix atoms and their normalized internal coordinates. Anchor atoms
// pass through unchanged; MixedTransform takes care of them. All the
// fields below are set at construction and never mutated afterwards, except
// angleLoss, which belongs to the latest Inverse call.
type ICTransform struct {
	dims    int
	natoms  int
	zmat    ZMatrix //topologically sorted
	anchors []int
	sched   *scheduler

	//per-entry statistics, indexed like zmat
	meanBond, stdBond   []float64
	meanAngle, stdAngle []float64
	meanDih, stdDih     []float64
	circ                []bool
	statFor             []int //atom index -> row into the statistics
	scaleJac            float64

	angleLoss []float64
}

// NewICTransform builds the transform for a molecule of dims/3 atoms from a
// Z-matrix, the anchor atoms left in Cartesian form, and a reference
// dataset (one sample per row, dims columns) from which the normalization
// statistics are fit. opts can be nil for defaults. The reference dataset
// should be aligned (global rotation/translation removed) beforehand, since
// the statistics are fit on absolute internal coordinates.
func NewICTransform(dims int, zmat ZMatrix, anchors []int, data *mat.Dense, opts *Options) (*ICTransform, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if dims <= 0 || dims%3 != 0 {
		return nil, validationErr("NewICTransform", "dims must be a positive multiple of 3, got %d", dims)
	}
	if err := validateData(data, dims, "NewICTransform"); err != nil {
		return nil, err
	}
	if len(anchors) < 1 {
		return nil, validationErr("NewICTransform", "at least one anchor atom is required")
	}
	if err := zmat.Validate(); err != nil {
		return nil, err
	}
	sorted, err := zmat.Sorted()
	if err != nil {
		return nil, err
	}
	natoms := dims / 3
	sched, err := newScheduler(sorted, anchors, natoms)
	if err != nil {
		return nil, err
	}
	T := &ICTransform{
		dims:    dims,
		natoms:  natoms,
		zmat:    sorted,
		anchors: append([]int{}, anchors...),
		sched:   sched,
	}
	T.statFor = make([]int, natoms)
	for i := range T.statFor {
		T.statFor[i] = -1
	}
	for i, e := range sorted {
		T.statFor[e.Atom] = i
	}
	T.circ = make([]bool, len(sorted))
	for _, a := range opts.CircDih {
		if a < 0 || a >= natoms || T.statFor[a] < 0 {
			return nil, validationErr("NewICTransform", "circular dihedral atom %d is not a Z-matrix entry", a)
		}
		T.circ[T.statFor[a]] = true
	}
	trans, _ := T.fwdRaw(data)
	T.fitStats(trans, opts)
	return T, nil
}

func validateData(data *mat.Dense, dims int, caller string) error {
	if data == nil {
		return validationErr(caller, "a reference dataset is required")
	}
	r, c := data.Dims()
	if r < 1 || c != dims {
		return validationErr(caller, "reference dataset must be n_samples x %d, got %d x %d", dims, r, c)
	}
	return nil
}

// Dim returns the flattened dimensionality (3 times the atom count) of both
// sides of the transform.
func (T *ICTransform) Dim() int {
	return T.dims
}

// PeriodicLoss returns the periodic-angle penalty accumulated by the last
// Inverse call, one value per sample: the sum of periodicLoss over every
// reconstructed angle and dihedral. It is a diagnostic the caller may add
// to its training loss; it is not part of the Jacobian. The slice belongs
// to the transform and is overwritten by the next Inverse call, so it is
// only meaningful when Inverse calls on the same value do not interleave.
func (T *ICTransform) PeriodicLoss() []float64 {
	return T.angleLoss
}

// fwdRaw measures, for every Z-matrix atom, its raw bond, angle and
// dihedral, and overwrites the atom's three coordinate columns with them.
// All geometry is measured on the input frame before anything is written,
// so the whole pass is order-independent and needs no blocking. The second
// return value is the per-sample log-Jacobian of the raw map,
// -Sum(2*log(b) + log|sin(a)|).
func (T *ICTransform) fwdRaw(x *mat.Dense) (*mat.Dense, []float64) {
	nb, _ := x.Dims()
	out := mat.DenseCopyOf(x)
	jac := make([]float64, nb)
	nz := len(T.zmat)
	bonds := make([]float64, nz)
	angles := make([]float64, nz)
	dihs := make([]float64, nz)
	for s := 0; s < nb; s++ {
		src := x.RawRowView(s)
		for i, e := range T.zmat {
			p4 := src[3*e.Atom : 3*e.Atom+3]
			p1 := src[3*e.Refs[0] : 3*e.Refs[0]+3]
			p2 := src[3*e.Refs[1] : 3*e.Refs[1]+3]
			p3 := src[3*e.Refs[2] : 3*e.Refs[2]+3]
			bonds[i] = Bond(p1, p4)
			angles[i] = Angle(p2, p1, p4)
			dihs[i] = Dihedral(p3, p2, p1, p4)
		}
		var acc float64
		for i := range bonds {
			acc += 2*math.Log(bonds[i]) + math.Log(math.Abs(math.Sin(angles[i])))
		}
		jac[s] = -acc
		row := out.RawRowView(s)
		for i, e := range T.zmat {
			row[3*e.Atom] = bonds[i]
			row[3*e.Atom+1] = angles[i]
			row[3*e.Atom+2] = dihs[i]
		}
	}
	return out, jac
}

// fitStats fits the per-coordinate normalization statistics from the raw
// internal coordinates of the reference dataset. Dihedral means are always
// circular; dihedral deviations are taken on the wrapped residual so a
// cluster sitting on the branch cut gets a sensible width.
func (T *ICTransform) fitStats(trans *mat.Dense, opts *Options) {
	nb, _ := trans.Dims()
	nz := len(T.zmat)
	T.meanBond = make([]float64, nz)
	T.stdBond = make([]float64, nz)
	T.meanAngle = make([]float64, nz)
	T.stdAngle = make([]float64, nz)
	T.meanDih = make([]float64, nz)
	T.stdDih = make([]float64, nz)
	col := make([]float64, nb)
	res := make([]float64, nb)
	for i, e := range T.zmat {
		mat.Col(col, 3*e.Atom, trans)
		T.meanBond[i], T.stdBond[i] = meanStd(col, opts.DefaultStd.Bond)
		mat.Col(col, 3*e.Atom+1, trans)
		T.meanAngle[i], T.stdAngle[i] = meanStd(col, opts.DefaultStd.Angle)
		mat.Col(col, 3*e.Atom+2, trans)
		T.meanDih[i] = circularMean(col)
		for s, v := range col {
			res[s] = wrapPi(v - T.meanDih[i])
		}
		if nb > 1 {
			_, T.stdDih[i] = stat.MeanStdDev(res, nil)
		} else if T.circ[i] {
			T.stdDih[i] = 1
		} else {
			T.stdDih[i] = opts.DefaultStd.Dih
		}
	}
	if opts.ShiftDih {
		T.shiftDih(trans, opts)
	}
	var sum float64
	for i := 0; i < nz; i++ {
		sum += math.Log(T.stdBond[i]) + math.Log(T.stdAngle[i]) + math.Log(T.stdDih[i])
	}
	T.scaleJac = -sum
}

func meanStd(col []float64, fallback float64) (float64, float64) {
	if len(col) > 1 {
		return stat.MeanStdDev(col, nil)
	}
	return stat.Mean(col, nil), fallback
}

// shiftDih moves the mean of each circular dihedral so that the branch cut
// falls on the least populated histogram bin of the reference distribution,
// which keeps the normalized coordinate away from the wrap discontinuity
// where the data is dense. Only the means move; the widths and therefore
// the scale Jacobian are untouched.
func (T *ICTransform) shiftDih(trans *mat.Dense, opts *Options) {
	bins := opts.ShiftDihBins
	if bins <= 1 {
		bins = 100
	}
	nb, _ := trans.Dims()
	col := make([]float64, nb)
	counts := make([]int, bins)
	for i, e := range T.zmat {
		if !T.circ[i] {
			continue
		}
		mat.Col(col, 3*e.Atom+2, trans)
		for j := range counts {
			counts[j] = 0
		}
		for _, v := range col {
			d := wrapPi(v)
			b := int((d + math.Pi) / (2 * math.Pi) * float64(bins))
			if b >= bins {
				b = bins - 1
			}
			if b < 0 {
				b = 0
			}
			counts[b]++
		}
		least := 0
		for j, c := range counts {
			if c < counts[least] {
				least = j
			}
		}
		T.meanDih[i] = -math.Pi + 2*math.Pi*float64(least)/float64(bins-1) + math.Pi
	}
}

// Forward maps a batch of Cartesian coordinates to normalized internal
// coordinates. For every Z-matrix atom its three coordinate channels are
// replaced, at the same offsets, by the normalized bond, angle and
// dihedral; anchor columns pass through. The returned slice holds the
// per-sample log-determinant of the Jacobian. The input is not modified.
func (T *ICTransform) Forward(x *mat.Dense) (*mat.Dense, []float64, error) {
	if _, c := x.Dims(); c != T.dims {
		return nil, nil, validationErr("ICTransform.Forward", "batch has %d columns, want %d", c, T.dims)
	}
	out, jac := T.fwdRaw(x)
	nb, _ := out.Dims()
	for s := 0; s < nb; s++ {
		row := out.RawRowView(s)
		for i, e := range T.zmat {
			row[3*e.Atom] = (row[3*e.Atom] - T.meanBond[i]) / T.stdBond[i]
			row[3*e.Atom+1] = (row[3*e.Atom+1] - T.meanAngle[i]) / T.stdAngle[i]
			row[3*e.Atom+2] = wrapPi(row[3*e.Atom+2]-T.meanDih[i]) / T.stdDih[i]
		}
		jac[s] += T.scaleJac
	}
	return out, jac, nil
}

// Inverse maps a batch of normalized internal coordinates back to Cartesian
// coordinates. Atoms are reconstructed block by block: within a block every
// reference is already Cartesian, so the block is placed in one pass and
// appended to the growing buffer; the buffer is finally permuted back to
// the original atom order. Exactly inverts Forward up to floating point
// precision, and its log-Jacobian is the exact negative of Forward's at the
// corresponding point. It also accumulates the periodic-angle penalty, see
// PeriodicLoss.
func (T *ICTransform) Inverse(z *mat.Dense) (*mat.Dense, []float64, error) {
	nb, c := z.Dims()
	if c != T.dims {
		return nil, nil, validationErr("ICTransform.Inverse", "batch has %d columns, want %d", c, T.dims)
	}
	out := mat.NewDense(nb, T.dims, nil)
	jac := make([]float64, nb)
	T.angleLoss = make([]float64, nb)
	buf := make([]float64, T.dims)
	for s := 0; s < nb; s++ {
		row := z.RawRowView(s)
		for i, a := range T.anchors {
			copy(buf[3*i:3*i+3], row[3*a:3*a+3])
		}
		pos := len(T.anchors) //next free buffer slot, in atoms
		var acc, loss float64
		for _, bl := range T.sched.blocks {
			for k, a := range bl.atoms {
				i := T.statFor[a]
				b := row[3*a]*T.stdBond[i] + T.meanBond[i]
				ang := row[3*a+1]*T.stdAngle[i] + T.meanAngle[i]
				d := row[3*a+2]*T.stdDih[i] + T.meanDih[i]
				loss += periodicLoss(ang) + periodicLoss(d)
				d = wrapPi(d)
				r := bl.refs[k]
				p1 := buf[3*r[0] : 3*r[0]+3]
				p2 := buf[3*r[1] : 3*r[1]+3]
				p3 := buf[3*r[2] : 3*r[2]+3]
				at := pos + k
				acc += placeAtom(buf[3*at:3*at+3], p1, p2, p3, b, ang, d)
			}
			pos += len(bl.atoms)
		}
		outRow := out.RawRowView(s)
		for a := 0; a < T.natoms; a++ {
			p := T.sched.permInv[a]
			copy(outRow[3*a:3*a+3], buf[3*p:3*p+3])
		}
		jac[s] = acc - T.scaleJac
		T.angleLoss[s] = loss
	}
	return out, jac, nil
}
