/*
 * zmat.go, part of goBoltzgen.
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
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ZEntry is one Z-matrix record: an atom to be placed by a bond length, a
// bond angle and a dihedral angle measured against three reference atoms.
// The bond is measured to Refs[0], the angle at Refs[0] between Refs[1] and
// the atom, and the dihedral over Refs[2], Refs[1], Refs[0] and the atom.
type ZEntry struct {
	Atom int
	Refs [3]int
}

// ZMatrix defines which atoms of a molecule are represented in internal
// coordinates, and from which references each is placed. Atoms that appear
// only as references (the anchors) stay in Cartesian form.
type ZMatrix []ZEntry

// Atoms returns the atom indices of the entries, in the order given.
func (Z ZMatrix) Atoms() []int {
	ret := make([]int, len(Z))
	for i, e := range Z {
		ret[i] = e.Atom
	}
	return ret
}

// Graph returns the placement dependency DAG as a gonum directed graph,
// with an edge from every entry's atom to each of its references that is
// itself a Z-matrix entry. References that are not entries are roots and
// carry no edges.
func (Z ZMatrix) Graph() *simple.DirectedGraph {
	inz := make(map[int]bool, len(Z))
	for _, e := range Z {
		inz[e.Atom] = true
	}
	g := simple.NewDirectedGraph()
	for _, e := range Z {
		if g.Node(int64(e.Atom)) == nil {
			g.AddNode(simple.Node(e.Atom))
		}
		for _, r := range e.Refs {
			if !inz[r] || r == e.Atom {
				continue //self-references are caught by Validate
			}
			g.SetEdge(g.NewEdge(simple.Node(e.Atom), simple.Node(r)))
		}
	}
	return g
}

// Validate checks that every atom appears at most once and that the
// placement dependencies are acyclic. It returns a CyclicDependencyError
// for a cyclic Z-matrix and a ValidationError for a repeated atom.
func (Z ZMatrix) Validate() error {
	seen := make(map[int]bool, len(Z))
	for _, e := range Z {
		if seen[e.Atom] {
			return validationErr("ZMatrix.Validate", "atom %d appears more than once in the Z-matrix", e.Atom)
		}
		seen[e.Atom] = true
		for _, r := range e.Refs {
			if r == e.Atom {
				return cyclicErr("ZMatrix.Validate", "atom %d references itself", e.Atom)
			}
		}
	}
	if _, err := topo.Sort(Z.Graph()); err != nil {
		return cyclicErr("ZMatrix.Validate", "cyclic placement dependency: %v", err)
	}
	return nil
}

// Sorted returns the entries reordered so that every atom appears after its
// three references (references that are not entries count as always
// resolved). The sort is stable: atoms that become resolvable in the same
// scan keep their relative input order, so repeated runs on the same input
// produce the same order. If no valid order exists, a
// CyclicDependencyError is returned and no partial result is produced.
func (Z ZMatrix) Sorted() (ZMatrix, error) {
	unsorted := make(map[int]bool, len(Z))
	for _, e := range Z {
		unsorted[e.Atom] = true
	}
	sorted := make(ZMatrix, 0, len(Z))
	pending := append(ZMatrix{}, Z...)
	for len(pending) > 0 {
		acyclic := false
		next := make(ZMatrix, 0, len(pending))
		for _, e := range pending {
			free := true
			for _, r := range e.Refs {
				if unsorted[r] {
					free = false
					break
				}
			}
			if free {
				acyclic = true
				delete(unsorted, e.Atom)
				sorted = append(sorted, e)
			} else {
				next = append(next, e)
			}
		}
		if !acyclic {
			return nil, cyclicErr("ZMatrix.Sorted", "no topological order exists for the %d remaining atoms", len(next))
		}
		pending = next
	}
	return sorted, nil
}
