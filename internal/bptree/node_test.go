package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/bptreeidx/internal/page"
)

func newLeaf(lf int) page.LeafNode {
	l := page.LeafNode{Buf: make([]byte, 4+lf*(page.KeySize+page.RIDSize)), Lf: lf}
	l.Reset()
	return l
}

func newInternal(nf int) page.InternalNode {
	n := page.InternalNode{Buf: make([]byte, 4+nf*page.KeySize+(nf+1)*4), Nf: nf}
	n.Reset()
	return n
}

func TestLeafOccupancyAndInsertPos(t *testing.T) {
	l := newLeaf(4)
	require.Equal(t, 0, leafOccupancy(l))

	leafInsertShift(l, 0, 10, page.RID{PageNumber: 1, SlotNumber: 0})
	require.Equal(t, 1, leafOccupancy(l))

	leafInsertShift(l, 1, 20, page.RID{PageNumber: 2, SlotNumber: 0})
	require.Equal(t, 2, leafOccupancy(l))

	// key <= keys[i]: inserting 10 again should land to the left of the
	// existing 10 (duplicate keys go left per the "<=" rule).
	require.Equal(t, 0, leafInsertPos(l, 10))
	require.Equal(t, 1, leafInsertPos(l, 15))
	require.Equal(t, 1, leafInsertPos(l, 20))
	require.Equal(t, 2, leafOccupancy(l))
}

func TestLeafInsertShiftOrdering(t *testing.T) {
	l := newLeaf(5)
	vals := []int32{30, 10, 20, 5, 25}
	for _, v := range vals {
		pos := leafInsertPos(l, v)
		leafInsertShift(l, pos, v, page.RID{PageNumber: uint32(v), SlotNumber: 0})
	}
	occ := leafOccupancy(l)
	require.Equal(t, 5, occ)
	for i := 0; i < occ-1; i++ {
		require.LessOrEqual(t, l.Key(i), l.Key(i+1))
	}
}

func TestLeafSplit(t *testing.T) {
	lf := 4
	l := newLeaf(lf)
	for i, v := range []int32{1, 2, 3, 4} {
		leafInsertShift(l, i, v, page.RID{PageNumber: uint32(v), SlotNumber: 0})
	}
	l.SetRightSib(999)

	alloc := func() (uint32, page.LeafNode, error) {
		return 42, newLeaf(lf), nil
	}

	pos := leafInsertPos(l, 5)
	newPid, pushed, err := leafSplit(l, pos, 5, page.RID{PageNumber: 5, SlotNumber: 0}, alloc)
	require.NoError(t, err)
	require.Equal(t, uint32(42), newPid)

	// m = (4+1)/2 = 2 -> left keeps {1,2}, right gets {3,4,5}
	require.Equal(t, 2, leafOccupancy(l))
	require.Equal(t, int32(1), l.Key(0))
	require.Equal(t, int32(2), l.Key(1))
	require.Equal(t, newPid, l.RightSib())
	require.Equal(t, int32(3), pushed)
}

func TestInternalOccupancyAndChildPos(t *testing.T) {
	n := newInternal(4)
	n.SetLevel(1)
	n.SetChild(0, 100)
	require.Equal(t, 0, internalOccupancy(n))

	internalInsertShift(n, 0, 10, 101)
	require.Equal(t, 1, internalOccupancy(n))
	internalInsertShift(n, 1, 20, 102)
	require.Equal(t, 2, internalOccupancy(n))

	require.Equal(t, 0, internalChildPos(n, 5))
	require.Equal(t, 1, internalChildPos(n, 10)) // equal key descends right-of-sep: "<" rule
	require.Equal(t, 1, internalChildPos(n, 15))
	require.Equal(t, 2, internalChildPos(n, 25))
}

func TestInternalSplit(t *testing.T) {
	nf := 4
	n := newInternal(nf)
	n.SetLevel(2)
	n.SetChild(0, 10)
	for i, k := range []int32{100, 200, 300, 400} {
		internalInsertShift(n, i, k, uint32(11+i))
	}
	// node full: keys {100,200,300,400}, children {10,11,12,13,14}

	alloc := func() (uint32, page.InternalNode, error) {
		return 77, newInternal(nf), nil
	}

	pos := internalChildPos(n, 250)
	newPid, pushed, err := internalSplit(n, pos, 250, 999, alloc)
	require.NoError(t, err)
	require.Equal(t, uint32(77), newPid)
	require.Equal(t, int32(2), n.Level())

	// Full key/child sequence after insert: keys {100,200,250,300,400},
	// children {10,11,12,999,13,14}. m = 5/2 = 2.
	require.Equal(t, int32(250), pushed)
	require.Equal(t, int32(100), n.Key(0))
	require.Equal(t, int32(200), n.Key(1))
	require.Equal(t, uint32(10), n.Child(0))
	require.Equal(t, uint32(11), n.Child(1))
	require.Equal(t, uint32(12), n.Child(2))
}
