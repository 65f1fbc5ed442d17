package bptree

import (
	"encoding/binary"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/bptreeidx/internal/page"
	"github.com/tuannm99/bptreeidx/internal/relation"
)

func newTestTree(t *testing.T, dir string) *Tree {
	t.Helper()
	tr, err := Open(Options{
		IndexDir:       dir,
		PageSize:       128,
		RelationName:   "widgets",
		AttrByteOffset: 0,
		AttrType:       page.DatatypeInteger,
	})
	require.NoError(t, err)
	return tr
}

func scanAll(t *testing.T, tr *Tree, low int32, lowOp page.Operator, high int32, highOp page.Operator) []page.RID {
	t.Helper()
	require.NoError(t, tr.StartScan(low, lowOp, high, highOp))
	var out []page.RID
	for {
		rid, err := tr.ScanNext()
		if err == ErrIndexScanCompleted {
			break
		}
		require.NoError(t, err)
		out = append(out, rid)
	}
	return out
}

func TestInsertAndRangeScanBasic(t *testing.T) {
	tr := newTestTree(t, t.TempDir())

	for k := int32(1); k <= 50; k++ {
		require.NoError(t, tr.Insert(k, page.RID{PageNumber: uint32(k), SlotNumber: 0}))
	}

	rids := scanAll(t, tr, 10, page.OpGTE, 20, page.OpLTE)
	require.Len(t, rids, 11)
	for i, rid := range rids {
		require.Equal(t, uint32(10+i), rid.PageNumber)
	}

	require.NoError(t, tr.Close())
}

func TestRangeScanOperatorBoundaries(t *testing.T) {
	tr := newTestTree(t, t.TempDir())
	for k := int32(1); k <= 20; k++ {
		require.NoError(t, tr.Insert(k, page.RID{PageNumber: uint32(k), SlotNumber: 0}))
	}

	rids := scanAll(t, tr, 5, page.OpGT, 10, page.OpLT)
	var keys []int32
	for _, r := range rids {
		keys = append(keys, int32(r.PageNumber))
	}
	require.Equal(t, []int32{6, 7, 8, 9}, keys)

	require.NoError(t, tr.Close())
}

func TestScanNextWithoutStartIsRejected(t *testing.T) {
	tr := newTestTree(t, t.TempDir())
	_, err := tr.ScanNext()
	require.ErrorIs(t, err, ErrScanNotInitialized)
	require.NoError(t, tr.Close())
}

func TestStartScanValidation(t *testing.T) {
	tr := newTestTree(t, t.TempDir())

	err := tr.StartScan(1, page.OpLT, 10, page.OpLTE)
	require.ErrorIs(t, err, ErrBadOpcodes)

	err = tr.StartScan(1, page.OpGTE, 10, page.OpGT)
	require.ErrorIs(t, err, ErrBadOpcodes)

	err = tr.StartScan(10, page.OpGTE, 1, page.OpLTE)
	require.ErrorIs(t, err, ErrBadScanrange)

	require.NoError(t, tr.Close())
}

func TestEndScanWithoutStartIsRejected(t *testing.T) {
	tr := newTestTree(t, t.TempDir())
	require.ErrorIs(t, tr.EndScan(), ErrScanNotInitialized)
	require.NoError(t, tr.Close())
}

func TestScanOnEmptyTreeCompletesImmediately(t *testing.T) {
	tr := newTestTree(t, t.TempDir())
	rids := scanAll(t, tr, 0, page.OpGTE, 100, page.OpLTE)
	require.Empty(t, rids)
	require.NoError(t, tr.Close())
}

func TestRestartingScanEndsThePriorOne(t *testing.T) {
	tr := newTestTree(t, t.TempDir())
	for k := int32(1); k <= 30; k++ {
		require.NoError(t, tr.Insert(k, page.RID{PageNumber: uint32(k)}))
	}

	require.NoError(t, tr.StartScan(1, page.OpGTE, 30, page.OpLTE))
	_, err := tr.ScanNext()
	require.NoError(t, err)

	// Starting a new scan while one is active ends the old one instead of
	// erroring, supporting reuse of one open index across scans.
	require.NoError(t, tr.StartScan(1, page.OpGTE, 5, page.OpLTE))
	rids := []page.RID{}
	for {
		rid, err := tr.ScanNext()
		if err == ErrIndexScanCompleted {
			break
		}
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	require.Len(t, rids, 5)

	require.NoError(t, tr.Close())
}

func TestReopenPersistsAndValidatesMetadata(t *testing.T) {
	dir := t.TempDir()
	tr := newTestTree(t, dir)
	for k := int32(1); k <= 50; k++ {
		require.NoError(t, tr.Insert(k, page.RID{PageNumber: uint32(k)}))
	}
	require.NoError(t, tr.Close())

	reopened, err := Open(Options{
		IndexDir:       dir,
		PageSize:       128,
		RelationName:   "widgets",
		AttrByteOffset: 0,
		AttrType:       page.DatatypeInteger,
	})
	require.NoError(t, err)

	rids := scanAll(t, reopened, 1, page.OpGTE, 50, page.OpLTE)
	require.Len(t, rids, 50)
	require.NoError(t, reopened.Close())

	// Same relation and offset (so the same index file), different datatype.
	_, err = Open(Options{
		IndexDir:       dir,
		PageSize:       128,
		RelationName:   "widgets",
		AttrByteOffset: 0,
		AttrType:       page.Datatype(1),
	})
	require.ErrorIs(t, err, ErrBadIndexInfo)
}

func TestBulkLoadFromRelation(t *testing.T) {
	dir := t.TempDir()

	rel, err := relation.Create(filepath.Join(dir, "widgets.rel"), 256, 8)
	require.NoError(t, err)

	want := map[int32]page.RID{}
	for k := int32(0); k < 40; k++ {
		raw := make([]byte, 8)
		binary.LittleEndian.PutUint32(raw[0:4], uint32(k))
		rid, err := rel.Insert(raw)
		require.NoError(t, err)
		want[k] = rid
	}

	tr, err := Open(Options{
		IndexDir:       dir,
		PageSize:       128,
		RelationName:   "widgets",
		AttrByteOffset: 0,
		AttrType:       page.DatatypeInteger,
		Rel:            rel,
	})
	require.NoError(t, err)

	require.NoError(t, tr.StartScan(0, page.OpGTE, 39, page.OpLTE))
	count := 0
	for {
		_, err := tr.ScanNext()
		if err == ErrIndexScanCompleted {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, len(want), count)

	require.NoError(t, tr.Close())
	require.NoError(t, rel.Close())
}

func TestInsertTriggersRootPromotion(t *testing.T) {
	// PageSize=40 => Lf=3, Nf=4: a handful of inserts is enough to split
	// leaves until the root itself (an internal node) fills and splits,
	// promoting a brand-new root one level higher.
	tr, err := Open(Options{
		IndexDir:       t.TempDir(),
		PageSize:       40,
		RelationName:   "widgets",
		AttrByteOffset: 0,
		AttrType:       page.DatatypeInteger,
	})
	require.NoError(t, err)
	require.Equal(t, 3, tr.Lf)
	require.Equal(t, 4, tr.Nf)

	originalRoot := tr.Root()
	const n = 40
	for k := int32(0); k < n; k++ {
		require.NoError(t, tr.Insert(k, page.RID{PageNumber: uint32(k) + 1}))
	}
	require.NotEqual(t, originalRoot, tr.Root())

	rids := scanAll(t, tr, 0, page.OpGTE, int32(n-1), page.OpLTE)
	require.Len(t, rids, n)
	for i, rid := range rids {
		require.Equal(t, uint32(i+1), rid.PageNumber)
	}

	require.NoError(t, tr.Close())
}

func TestCloseIsIdempotentAndEndsActiveScan(t *testing.T) {
	tr := newTestTree(t, t.TempDir())
	require.NoError(t, tr.Insert(1, page.RID{PageNumber: 1}))
	require.NoError(t, tr.StartScan(0, page.OpGTE, 10, page.OpLTE))

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	require.ErrorIs(t, tr.Insert(2, page.RID{PageNumber: 2}), ErrTreeClosed)
}

// TestDuplicateKeysAllScanInRange inserts the same key three times with
// distinct rids and checks a range scan straddling that key returns all
// three, in any order (duplicates keep arriving at the left of any existing
// equal key, so (4,6) GT/LT actually surfaces them newest-first).
func TestDuplicateKeysAllScanInRange(t *testing.T) {
	tr := newTestTree(t, t.TempDir())

	ridA := page.RID{PageNumber: 100, SlotNumber: 0}
	ridB := page.RID{PageNumber: 100, SlotNumber: 1}
	ridC := page.RID{PageNumber: 100, SlotNumber: 2}

	require.NoError(t, tr.Insert(5, ridA))
	require.NoError(t, tr.Insert(5, ridB))
	require.NoError(t, tr.Insert(5, ridC))

	rids := scanAll(t, tr, 4, page.OpGT, 6, page.OpLT)
	require.Len(t, rids, 3)
	require.ElementsMatch(t, []page.RID{ridA, ridB, ridC}, rids)

	require.NoError(t, tr.Close())
}

// leafDepth counts internal-node hops from the root to the leaf that would
// hold key, mirroring findLeafForKey's descent but returning the hop count
// instead of the leaf id, so tests can compare depth across distinct keys.
func leafDepth(t *testing.T, tr *Tree, key int32) int {
	t.Helper()
	depth := 0
	pid := tr.root
	for {
		pp, buf, err := pin(tr.BP, pid)
		require.NoError(t, err)
		n := tr.internalView(buf)
		level := n.Level()
		pos := internalChildPos(n, key)
		child := n.Child(pos)
		pp.Release()
		depth++
		if level == 1 {
			return depth
		}
		pid = child
	}
}

// leftmostLeaf walks child(0) from the root down to the leaf level.
func leftmostLeaf(t *testing.T, tr *Tree) uint32 {
	t.Helper()
	pid := tr.root
	for {
		pp, buf, err := pin(tr.BP, pid)
		require.NoError(t, err)
		n := tr.internalView(buf)
		level := n.Level()
		child := n.Child(0)
		pp.Release()
		if level == 1 {
			return child
		}
		pid = child
	}
}

// TestReverseInsertKeepsLeavesOrderedAndBalanced inserts 3*Lf keys in
// descending order and checks that every leaf still ends up at the same
// depth (no lopsided splitting from the reverse insertion order), that
// walking the leaf chain left-to-right yields ascending keys, and that a
// full-range scan returns every key in ascending order.
func TestReverseInsertKeepsLeavesOrderedAndBalanced(t *testing.T) {
	tr := newTestTree(t, t.TempDir())
	n := 3 * tr.Lf

	for k := n - 1; k >= 0; k-- {
		require.NoError(t, tr.Insert(int32(k), page.RID{PageNumber: uint32(k) + 1}))
	}

	depth0 := leafDepth(t, tr, 0)
	for k := 1; k < n; k++ {
		require.Equal(t, depth0, leafDepth(t, tr, int32(k)), "uneven tree depth at key %d", k)
	}

	var chained []int32
	leafPid := leftmostLeaf(t, tr)
	for leafPid != page.NoPage {
		pp, buf, err := pin(tr.BP, leafPid)
		require.NoError(t, err)
		l := tr.leafView(buf)
		occ := leafOccupancy(l)
		for i := 0; i < occ; i++ {
			chained = append(chained, l.Key(i))
		}
		next := l.RightSib()
		pp.Release()
		leafPid = next
	}
	require.Len(t, chained, n)
	require.True(t, sort.SliceIsSorted(chained, func(i, j int) bool { return chained[i] < chained[j] }))

	rids := scanAll(t, tr, 0, page.OpGTE, int32(n-1), page.OpLTE)
	require.Len(t, rids, n)
	for i, rid := range rids {
		require.Equal(t, uint32(i+1), rid.PageNumber)
	}

	require.NoError(t, tr.Close())
}
