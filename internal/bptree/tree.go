// Package bptree implements the persistent B+Tree secondary index: page
// codec interpretation via internal/page, node operations, the recursive
// insert path with splitting and root promotion, and the leaf-chained
// range-scan cursor, all against an external buffer manager
// (internal/bufferpool).
package bptree

import (
	"log/slog"
	"sync/atomic"

	"github.com/tuannm99/bptreeidx/internal/bufferpool"
	"github.com/tuannm99/bptreeidx/internal/page"
)

// Tree is an open B+Tree secondary index bound to one buffer manager.
type Tree struct {
	BP       bufferpool.Manager
	PageSize int
	Lf, Nf   int

	// RelationName, AttrByteOffset, AttrType mirror the meta page and are
	// validated (never mutated after Open) except by the caller never.
	RelationName   string
	AttrByteOffset int32
	AttrType       page.Datatype

	// root is the cached root page id, kept in lock-step with the meta
	// page's rootPageNo via write-through on every promotion.
	root uint32

	// scan holds the single active cursor, if any. The tree is
	// single-threaded and allows at most one scan in flight.
	scan *cursorState

	closed atomic.Bool
}

func (t *Tree) leafView(buf []byte) page.LeafNode         { return page.LeafNode{Buf: buf, Lf: t.Lf} }
func (t *Tree) internalView(buf []byte) page.InternalNode { return page.InternalNode{Buf: buf, Nf: t.Nf} }

func (t *Tree) allocLeaf() (uint32, page.LeafNode, error) {
	pid, buf, err := t.BP.AllocatePage()
	if err != nil {
		return 0, page.LeafNode{}, err
	}
	return pid, t.leafView(buf), nil
}

func (t *Tree) allocInternal() (uint32, page.InternalNode, error) {
	pid, buf, err := t.BP.AllocatePage()
	if err != nil {
		return 0, page.InternalNode{}, err
	}
	return pid, t.internalView(buf), nil
}

func (t *Tree) ensureOpen() error {
	if t.closed.Load() {
		return ErrTreeClosed
	}
	return nil
}

// writeThroughRoot updates the cached root and persists it to the meta page
// in the same logical step, so the in-memory root id and the on-disk meta
// page never disagree about which page is the root.
func (t *Tree) writeThroughRoot(newRoot uint32) error {
	pp, buf, err := pin(t.BP, page.MetaPageNo)
	if err != nil {
		return err
	}
	defer pp.Release()

	m := page.MetaPage{Buf: buf}
	m.SetRootPageNo(newRoot)
	pp.MarkDirty()

	t.root = newRoot
	slog.Debug("bptree.writeThroughRoot", "root", newRoot)
	return nil
}

// Root returns the current root page id.
func (t *Tree) Root() uint32 { return t.root }
