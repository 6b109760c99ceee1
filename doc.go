/*
 * doc.go, part of goBoltzgen.
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

/*Package boltzgen implements the coordinate transform at the heart of a
Boltzmann generator: a bijective, Jacobian-tracked map between the Cartesian
coordinates of a molecule and its internal coordinates (bond lengths, bond
angles and dihedral angles), for use inside a normalizing flow.


	**goBoltzgen capabilities**

    Builds and topologically sorts the atom-placement dependency graph from a
	Z-matrix specification, and partitions it into blocks of atoms that can be
	reconstructed together.

    Transforms batches of Cartesian coordinates to normalized internal
	coordinates and back, keeping the exact log-determinant of the Jacobian
	for the change of variables, with circular statistics for periodic
	dihedrals.

    Reduces the three "anchor" atoms kept in Cartesian form to a
	rotation/translation-invariant representation (two bonds and an angle),
	so the transformed vector has exactly 3N-6 entries.

    Exposes the whole pipeline as a single forward/inverse pair with the
	convention expected by normalizing-flow frameworks, plus small auxiliary
	flow layers (scaling, dequantization noise).

    Reads and writes reference datasets of molecular configurations
	(zstd-compressed, see the dataset subpackage) and plots internal
	coordinate distributions (icplot subpackage).

The library uses gonum matrices throughout. A batch is a *mat.Dense with one
sample per row and 3N columns, the flattened x,y,z coordinates of the N atoms
in a fixed order. All transforms are pure: construction-time buffers are
immutable and may be shared between goroutines, while each call owns its
input/output batch.

Degenerate geometry (zero bonds, colinear reference atoms) is deliberately
not checked in the hot path. It surfaces as NaN/Inf in the output, and the
caller is expected to filter or penalize such samples (see RegularizeEnergy).
*/
package boltzgen
