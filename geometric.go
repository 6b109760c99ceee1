/*
 * geometric.go, part of goBoltzgen.
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

import "math"

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//Small helpers for coordinate triples inside a flattened frame. They don't
//check lengths; the caller always hands them 3-element slices.

func sub3(dst, a, b []float64) {
	dst[0] = a[0] - b[0]
	dst[1] = a[1] - b[1]
	dst[2] = a[2] - b[2]
}

func dot3(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(dst, a, b []float64) {
	dst[0] = a[1]*b[2] - a[2]*b[1]
	dst[1] = a[2]*b[0] - a[0]*b[2]
	dst[2] = a[0]*b[1] - a[1]*b[0]
}

func norm3(a []float64) float64 {
	return math.Sqrt(dot3(a, a))
}

func scale3(dst []float64, s float64) {
	dst[0] *= s
	dst[1] *= s
	dst[2] *= s
}

//unit3 normalizes dst in place. A zero vector produces NaNs, which is the
//intended behavior for degenerate geometry.
func unit3(dst []float64) {
	scale3(dst, 1/norm3(dst))
}

func addScaled3(dst []float64, s float64, a []float64) {
	dst[0] += s * a[0]
	dst[1] += s * a[1]
	dst[2] += s * a[2]
}

// Bond returns the distance between the points p1 and p2, each a 3-element
// x,y,z slice.
func Bond(p1, p2 []float64) float64 {
	var d [3]float64
	sub3(d[:], p2, p1)
	return norm3(d[:])
}

// Angle returns the angle at the vertex c between the points b and d, in
// radians. Floating point errors that push the cosine barely out of [-1,1]
// are corrected; a truly degenerate vertex still propagates NaN.
func Angle(b, c, d []float64) float64 {
	var cb, cd [3]float64
	sub3(cb[:], b, c)
	sub3(cd[:], d, c)
	argument := dot3(cb[:], cd[:]) / (norm3(cb[:]) * norm3(cd[:]))
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	return math.Acos(argument)
}

// Dihedral returns the signed dihedral angle over the points a, b, c, d, in
// (-pi, pi]. The sign convention is the one under which placeAtom is the
// exact inverse of the (Bond, Angle, Dihedral) measurement of a Z-matrix
// entry with references c, b, a and placed atom d.
func Dihedral(a, b, c, d []float64) float64 {
	var b0, b1, b2, v, w, b1xv [3]float64
	sub3(b0[:], a, b)
	sub3(b1[:], c, b)
	unit3(b1[:])
	sub3(b2[:], d, c)
	//v and w are the projections of b0 and b2 on the plane normal to b1
	copy(v[:], b0[:])
	addScaled3(v[:], -dot3(b0[:], b1[:]), b1[:])
	copy(w[:], b2[:])
	addScaled3(w[:], -dot3(b2[:], b1[:]), b1[:])
	x := dot3(v[:], w[:])
	cross3(b1xv[:], b1[:], v[:])
	y := dot3(b1xv[:], w[:])
	return -math.Atan2(y, x)
}

// placeAtom reconstructs the Cartesian position of one atom from the
// positions of its three references and its bond, angle and dihedral,
// writing the result to pos. It returns the log-Jacobian of the placement,
// 2*log|b| + log|sin(angle)|, the volume change of the
// (bond,angle,dihedral) -> (x,y,z) map.
func placeAtom(pos, p1, p2, p3 []float64, bond, angle, dih float64) float64 {
	var v1, v2, n, nn [3]float64
	sub3(v1[:], p1, p2)
	sub3(v2[:], p1, p3)
	//local orthonormal frame: n normal to the reference plane, nn in it
	cross3(n[:], v1[:], v2[:])
	unit3(n[:])
	cross3(nn[:], v1[:], n[:])
	unit3(nn[:])
	scale3(n[:], math.Sin(dih))
	scale3(nn[:], math.Cos(dih))
	var v3 [3]float64
	v3[0] = n[0] + nn[0]
	v3[1] = n[1] + nn[1]
	v3[2] = n[2] + nn[2]
	unit3(v3[:])
	scale3(v3[:], bond*math.Sin(angle))
	unit3(v1[:])
	scale3(v1[:], bond*math.Cos(angle))
	pos[0] = p1[0] + v3[0] - v1[0]
	pos[1] = p1[1] + v3[1] - v1[1]
	pos[2] = p1[2] + v3[2] - v1[2]
	return 2*math.Log(math.Abs(bond)) + math.Log(math.Abs(math.Sin(angle)))
}

// wrapPi wraps an angle into the (-pi, pi] branch.
func wrapPi(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// periodicLoss is the smooth penalty for an angle outside (-pi, pi]: zero
// inside the branch, (a-pi)^2 above it and (a+pi)^2 below it. It is the
// soft signal used to keep a flow from producing angles that would break
// invertibility; it never clamps anything.
func periodicLoss(a float64) float64 {
	if a > math.Pi {
		d := a - math.Pi
		return d * d
	}
	if a < -math.Pi {
		d := a + math.Pi
		return d * d
	}
	return 0
}

// circularMean returns the mean of a set of angles computed through the
// atan2 of the averaged sine and cosine, so clusters near the +-pi branch
// cut average correctly instead of being pulled toward zero.
func circularMean(a []float64) float64 {
	var s, c float64
	for _, v := range a {
		s += math.Sin(v)
		c += math.Cos(v)
	}
	n := float64(len(a))
	return math.Atan2(s/n, c/n)
}
