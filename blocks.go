package boltzgen

// A block groups Z-matrix atoms whose three references are all available in
// Cartesian form by the time the block is reached, so every atom in it can
// be reconstructed in one pass. refs holds, for each atom, the positions of
// its references in the growing Cartesian buffer (anchors first, then atoms
// in placement order), not the original atom indices.
type block struct {
	atoms []int
	refs  [][3]int
}

// scheduler holds the block decomposition of a sorted Z-matrix, plus the
// mutually inverse permutations between the original atom order and the
// buffer order used during reconstruction.
type scheduler struct {
	blocks  []block
	perm    []int //buffer position -> original atom index
	permInv []int //original atom index -> buffer position
}

// newScheduler partitions the sorted entries into blocks. It scans the
// remaining atoms repeatedly; each full pass takes every atom whose three
// references are already Cartesian, then makes the taken atoms available
// for the next pass. Atoms placed in the same block therefore never
// reference each other. Fails if some reference never becomes Cartesian,
// which also covers anchors+entries not spanning all atoms.
func newScheduler(sorted ZMatrix, anchors []int, natoms int) (*scheduler, error) {
	S := &scheduler{
		perm:    make([]int, natoms),
		permInv: make([]int, natoms),
	}
	if len(anchors)+len(sorted) != natoms {
		return nil, validationErr("newScheduler", "%d anchors and %d Z-matrix entries do not cover %d atoms", len(anchors), len(sorted), natoms)
	}
	avail := make(map[int]bool, natoms)
	for i, a := range anchors {
		if a < 0 || a >= natoms || avail[a] {
			return nil, validationErr("newScheduler", "bad anchor atom %d", a)
		}
		avail[a] = true
		S.perm[i] = a
		S.permInv[a] = i
	}
	//an atom that is both an anchor and an entry would make the coverage
	//count above lie, and alias some other atom out of the buffer
	for _, e := range sorted {
		if e.Atom < 0 || e.Atom >= natoms {
			return nil, validationErr("newScheduler", "atom %d is out of range for %d atoms", e.Atom, natoms)
		}
		if avail[e.Atom] {
			return nil, validationErr("newScheduler", "atom %d is both an anchor and a Z-matrix entry", e.Atom)
		}
	}
	cur := len(anchors)
	pending := append(ZMatrix{}, sorted...)
	for len(pending) > 0 {
		var b block
		next := make(ZMatrix, 0, len(pending))
		for _, e := range pending {
			if !avail[e.Refs[0]] || !avail[e.Refs[1]] || !avail[e.Refs[2]] {
				next = append(next, e)
				continue
			}
			S.perm[cur] = e.Atom
			S.permInv[e.Atom] = cur
			cur++
			b.atoms = append(b.atoms, e.Atom)
			b.refs = append(b.refs, [3]int{S.permInv[e.Refs[0]], S.permInv[e.Refs[1]], S.permInv[e.Refs[2]]})
		}
		if len(b.atoms) == 0 {
			return nil, validationErr("newScheduler", "atom %d depends on a reference that never becomes Cartesian", next[0].Atom)
		}
		//atoms taken in this pass become available only for the next one
		for _, a := range b.atoms {
			avail[a] = true
		}
		S.blocks = append(S.blocks, b)
		pending = next
	}
	return S, nil
}
