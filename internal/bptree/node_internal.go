package bptree

import "github.com/tuannm99/bptreeidx/internal/page"

// internalOccupancy returns the smallest i in [0,Nf] with children[i+1]
// unoccupied; that many keys (and i+1 children) are in use.
func internalOccupancy(n page.InternalNode) int {
	for i := 0; i < n.Nf; i++ {
		if n.Child(i+1) == page.NoPage {
			return i
		}
	}
	return n.Nf
}

// internalChildPos returns the smallest i in [0,Nf] with key < keys[i], or
// the first unoccupied child slot. Equal keys descend right (the "<" rule),
// which combined with leafInsertPos's "<=" rule keeps duplicate routing
// stable.
func internalChildPos(n page.InternalNode, key int32) int {
	occ := internalOccupancy(n)
	for i := 0; i < occ; i++ {
		if key < n.Key(i) {
			return i
		}
	}
	return occ
}

// internalInsertShift right-shifts keys[pos,occ) and children[pos+1,occ+1)
// by one, then writes keys[pos]=key, children[pos+1]=childPid. Requires
// occ < Nf.
func internalInsertShift(n page.InternalNode, pos int, key int32, childPid uint32) {
	occ := internalOccupancy(n)
	for i := occ; i > pos; i-- {
		n.SetKey(i, n.Key(i-1))
	}
	for i := occ + 1; i > pos+1; i-- {
		n.SetChild(i, n.Child(i-1))
	}
	n.SetKey(pos, key)
	n.SetChild(pos+1, childPid)
}

// internalEntry pairs a separator key with the child to its right.
// internalSplit does not use it; it rebuilds separate key and child slices.
type internalEntry struct {
	key   int32
	child uint32
}

// internalSplit splits a full internal node n after conceptually inserting
// (childKey, childPid) at key-position pos (i.e. after children[pos]). The
// middle key is not retained in either half — it becomes pushedKey, the
// classic B+Tree internal-split rule.
func internalSplit(
	n page.InternalNode,
	pos int,
	childKey int32,
	childPid uint32,
	alloc func() (uint32, page.InternalNode, error),
) (newInternalPid uint32, pushedKey int32, err error) {
	// Reconstruct the full (Nf+2)-child, (Nf+1)-key sequence.
	children := make([]uint32, 0, n.Nf+2)
	keys := make([]int32, 0, n.Nf+1)

	for i := 0; i <= pos; i++ {
		children = append(children, n.Child(i))
	}
	children = append(children, childPid)
	for i := pos + 1; i <= n.Nf; i++ {
		children = append(children, n.Child(i))
	}

	for i := 0; i < pos; i++ {
		keys = append(keys, n.Key(i))
	}
	keys = append(keys, childKey)
	for i := pos; i < n.Nf; i++ {
		keys = append(keys, n.Key(i))
	}

	m := (n.Nf + 1) / 2
	level := n.Level()

	newPid, newNode, err := alloc()
	if err != nil {
		return 0, 0, err
	}

	n.Reset()
	n.SetLevel(level)
	for i := 0; i < m; i++ {
		n.SetKey(i, keys[i])
	}
	for i := 0; i <= m; i++ {
		n.SetChild(i, children[i])
	}

	newNode.SetLevel(level)
	for i := m + 1; i < len(keys); i++ {
		newNode.SetKey(i-(m+1), keys[i])
	}
	for i := m + 1; i < len(children); i++ {
		newNode.SetChild(i-(m+1), children[i])
	}

	return newPid, keys[m], nil
}
