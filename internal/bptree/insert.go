package bptree

import (
	"fmt"

	"github.com/tuannm99/bptreeidx/internal/page"
)

// Insert adds one (key,rid) pair to the tree, descending from the cached
// root, splitting full nodes along the way, and promoting the root exactly
// once per split that reaches the top.
func (t *Tree) Insert(key int32, rid page.RID) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}

	pushedKey, newRightPid, split, err := t.insertAt(t.root, key, rid)
	if err != nil {
		return err
	}
	if !split {
		return nil
	}
	return t.promoteRoot(pushedKey, newRightPid)
}

// insertAt pins pageId (always an internal node — the root is never a bare
// leaf), reads its level, and either recurses into another
// internal node (level>1) or inserts into a leaf child (level==1). It
// returns (0,0,false,nil) when no split propagates past this node, or the
// separator key and new right-sibling page id to install in the parent.
func (t *Tree) insertAt(pageID uint32, key int32, rid page.RID) (pushedKey int32, newRightPid uint32, split bool, err error) {
	pp, buf, err := pin(t.BP, pageID)
	if err != nil {
		return 0, 0, false, err
	}
	defer pp.Release()

	n := t.internalView(buf)
	level := n.Level()
	pos := internalChildPos(n, key)
	childPid := n.Child(pos)

	if level == 1 {
		if childPid == page.NoPage {
			if pos != 0 {
				return 0, 0, false, fmt.Errorf("bptree: missing leaf child at non-zero position %d", pos)
			}
			newLeafPid, ierr := t.initFirstLeaf(key, rid)
			if ierr != nil {
				return 0, 0, false, ierr
			}
			n.SetChild(0, newLeafPid)
			pp.MarkDirty()
			return 0, 0, false, nil
		}

		pushed, newRight, didSplit, ierr := t.insertIntoLeaf(childPid, key, rid)
		if ierr != nil {
			return 0, 0, false, ierr
		}
		if !didSplit {
			return 0, 0, false, nil
		}
		return t.installChild(n, pp, pos, pushed, newRight)
	}

	pushed, newRight, didSplit, ierr := t.insertAt(childPid, key, rid)
	if ierr != nil {
		return 0, 0, false, ierr
	}
	if !didSplit {
		return 0, 0, false, nil
	}
	return t.installChild(n, pp, pos, pushed, newRight)
}

// insertIntoLeaf pins leafPid, inserts (key,rid) in order, and splits it if
// full. On split, the new right leaf is allocated, written, and unpinned
// here before returning — every function that pins a page unpins it before
// returning.
func (t *Tree) insertIntoLeaf(leafPid uint32, key int32, rid page.RID) (pushedKey int32, newRightPid uint32, split bool, err error) {
	pp, buf, err := pin(t.BP, leafPid)
	if err != nil {
		return 0, 0, false, err
	}
	defer pp.Release()

	l := t.leafView(buf)
	pos := leafInsertPos(l, key)

	if leafOccupancy(l) < l.Lf {
		leafInsertShift(l, pos, key, rid)
		pp.MarkDirty()
		return 0, 0, false, nil
	}

	newPid, pushed, serr := leafSplit(l, pos, key, rid, t.allocLeaf)
	if serr != nil {
		return 0, 0, false, serr
	}
	pp.MarkDirty()
	if uerr := t.BP.Unpin(newPid, true); uerr != nil {
		return 0, 0, false, uerr
	}
	return pushed, newPid, true, nil
}

// installChild inserts (key,childPid) into the already-pinned internal node
// n, splitting it (and unpinning the newly allocated right node) if full.
func (t *Tree) installChild(n page.InternalNode, pp *pinnedPage, pos int, key int32, childPid uint32) (pushedKey int32, newRightPid uint32, split bool, err error) {
	if internalOccupancy(n) < n.Nf {
		internalInsertShift(n, pos, key, childPid)
		pp.MarkDirty()
		return 0, 0, false, nil
	}

	newPid, pushed, serr := internalSplit(n, pos, key, childPid, t.allocInternal)
	if serr != nil {
		return 0, 0, false, serr
	}
	pp.MarkDirty()
	if uerr := t.BP.Unpin(newPid, true); uerr != nil {
		return 0, 0, false, uerr
	}
	return pushed, newPid, true, nil
}

// initFirstLeaf allocates the tree's very first leaf page and installs
// (key,rid) as its sole entry. Called only when the root's slot 0 child is
// still unset, i.e. the tree has never held a key.
func (t *Tree) initFirstLeaf(key int32, rid page.RID) (uint32, error) {
	pid, leaf, err := t.allocLeaf()
	if err != nil {
		return 0, err
	}
	leaf.SetKey(0, key)
	leaf.SetRID(0, rid)
	if err := t.BP.Unpin(pid, true); err != nil {
		return 0, err
	}
	return pid, nil
}

// promoteRoot wraps the current root under a new internal node one level
// higher, with the split-off separator and right child installed, and
// write-throughs the new root to the meta page.
func (t *Tree) promoteRoot(pushedKey int32, newRightPid uint32) error {
	pp, buf, err := pin(t.BP, t.root)
	if err != nil {
		return err
	}
	oldLevel := t.internalView(buf).Level()
	pp.Release()

	newPid, newRoot, err := t.allocInternal()
	if err != nil {
		return err
	}
	newRoot.SetLevel(oldLevel + 1)
	newRoot.SetChild(0, t.root)
	internalInsertShift(newRoot, 0, pushedKey, newRightPid)
	if err := t.BP.Unpin(newPid, true); err != nil {
		return err
	}

	return t.writeThroughRoot(newPid)
}
