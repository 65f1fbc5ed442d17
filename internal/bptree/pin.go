package bptree

import "github.com/tuannm99/bptreeidx/internal/bufferpool"

// pinnedPage is a scoped borrow of one buffer-manager page: it carries the
// dirty flag the body mutates and guarantees a single Unpin on every exit
// path via Release, eliminating the pervasive "forgot to unpin on error"
// class of bug.
type pinnedPage struct {
	bp    bufferpool.Manager
	pid   uint32
	dirty bool
}

// pin fetches pageID from bp and wraps it in a pinnedPage guard.
func pin(bp bufferpool.Manager, pageID uint32) (*pinnedPage, []byte, error) {
	buf, err := bp.GetPage(pageID)
	if err != nil {
		return nil, nil, err
	}
	return &pinnedPage{bp: bp, pid: pageID}, buf, nil
}

// MarkDirty records that the page was mutated; Release will unpin dirty.
func (p *pinnedPage) MarkDirty() {
	if p != nil {
		p.dirty = true
	}
}

// Release unpins the page exactly once, propagating the accumulated dirty
// flag. Safe to call on a nil receiver (no-op), so deferring Release after a
// pin that itself failed is always safe.
func (p *pinnedPage) Release() {
	if p == nil {
		return
	}
	_ = p.bp.Unpin(p.pid, p.dirty)
}
