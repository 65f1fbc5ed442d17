package bptree

import "github.com/tuannm99/bptreeidx/internal/page"

// leafOccupancy returns the smallest i in [0,Lf] with rids[i] unoccupied.
func leafOccupancy(l page.LeafNode) int {
	for i := 0; i < l.Lf; i++ {
		if l.RID(i).IsZero() {
			return i
		}
	}
	return l.Lf
}

// leafInsertPos returns the smallest i in [0,Lf] with key <= keys[i], or the
// first unoccupied slot. New equal keys are inserted to the left of existing
// equal keys (the "<=" rule), which combined with internalChildPos's "<"
// rule keeps duplicate routing stable.
func leafInsertPos(l page.LeafNode, key int32) int {
	occ := leafOccupancy(l)
	for i := 0; i < occ; i++ {
		if key <= l.Key(i) {
			return i
		}
	}
	return occ
}

// leafInsertShift right-shifts entries [pos,occ) by one slot and writes
// (key,rid) at pos. Requires occ < Lf.
func leafInsertShift(l page.LeafNode, pos int, key int32, rid page.RID) {
	occ := leafOccupancy(l)
	for i := occ; i > pos; i-- {
		l.SetKey(i, l.Key(i-1))
		l.SetRID(i, l.RID(i-1))
	}
	l.SetKey(pos, key)
	l.SetRID(pos, rid)
}

// leafEntry is the transient in-memory representation used while splitting.
type leafEntry struct {
	key int32
	rid page.RID
}

// leafSplit splits a full leaf l after conceptually inserting (key,rid) at
// pos. It keeps the first half in l, allocates a new leaf via alloc, moves
// the second half there, relinks the sibling chain, and returns the new
// leaf's page id and its first (pushed) key — which equals the smallest key
// now in the right leaf, so every key routed right of the separator by an
// internal node's "<" comparison actually lives in that right leaf.
func leafSplit(
	l page.LeafNode,
	pos int,
	key int32,
	rid page.RID,
	alloc func() (uint32, page.LeafNode, error),
) (newLeafPid uint32, pushedKey int32, err error) {
	entries := make([]leafEntry, 0, l.Lf+1)
	for i := 0; i < pos; i++ {
		entries = append(entries, leafEntry{key: l.Key(i), rid: l.RID(i)})
	}
	entries = append(entries, leafEntry{key: key, rid: rid})
	for i := pos; i < l.Lf; i++ {
		entries = append(entries, leafEntry{key: l.Key(i), rid: l.RID(i)})
	}

	m := (l.Lf + 1) / 2

	newPid, newLeaf, err := alloc()
	if err != nil {
		return 0, 0, err
	}

	oldRightSib := l.RightSib()

	for i := 0; i < m; i++ {
		l.SetKey(i, entries[i].key)
		l.SetRID(i, entries[i].rid)
	}
	for i := m; i < l.Lf; i++ {
		l.ClearSlot(i)
	}

	for i := m; i < len(entries); i++ {
		newLeaf.SetKey(i-m, entries[i].key)
		newLeaf.SetRID(i-m, entries[i].rid)
	}
	newLeaf.SetRightSib(oldRightSib)
	l.SetRightSib(newPid)

	return newPid, entries[m].key, nil
}
