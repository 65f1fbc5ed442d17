package bptree

import "github.com/tuannm99/bptreeidx/internal/page"

// cursorState holds the single in-flight range scan, if any. Exactly one
// page stays pinned for the lifetime of a leaf reference: the pin taken for
// a leaf on first visit is held across repeated ScanNext calls and released
// only when the cursor advances past that leaf (or the scan ends), never
// re-acquired per call.
type cursorState struct {
	active bool

	lowVal, highVal int32
	lowOp, highOp   page.Operator

	leafPid uint32
	buf     []byte
	pp      *pinnedPage
	pos     int
}

func (cs *cursorState) release() {
	if cs.pp != nil {
		cs.pp.Release()
		cs.pp = nil
	}
	cs.active = false
}

func satisfiesLow(k, low int32, op page.Operator) bool {
	if op == page.OpGTE {
		return k >= low
	}
	return k > low
}

func satisfiesHigh(k, high int32, op page.Operator) bool {
	if op == page.OpLTE {
		return k <= high
	}
	return k < high
}

// findLeafForKey descends from the root to the leaf that would hold key,
// without mutating anything and without holding any pin past each level —
// a read-only companion to insertAt's descent.
func (t *Tree) findLeafForKey(key int32) (uint32, error) {
	pid := t.root
	for {
		pp, buf, err := pin(t.BP, pid)
		if err != nil {
			return 0, err
		}
		n := t.internalView(buf)
		level := n.Level()
		pos := internalChildPos(n, key)
		child := n.Child(pos)
		pp.Release()

		if level == 1 {
			return child, nil
		}
		pid = child
	}
}

// StartScan opens a range scan for low ⊗ key ⊗ high, where lowOp selects the
// low-bound comparison (GT or GTE) and highOp the high-bound comparison (LT
// or LTE). A previously active scan, if any, is ended first — reusing an
// open index across scans is allowed.
func (t *Tree) StartScan(lowVal int32, lowOp page.Operator, highVal int32, highOp page.Operator) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if (lowOp != page.OpGT && lowOp != page.OpGTE) || (highOp != page.OpLT && highOp != page.OpLTE) {
		return ErrBadOpcodes
	}
	if lowVal > highVal {
		return ErrBadScanrange
	}

	if t.scan != nil {
		t.scan.release()
		t.scan = nil
	}

	leafPid, err := t.findLeafForKey(lowVal)
	if err != nil {
		return err
	}

	t.scan = &cursorState{
		active:  true,
		lowVal:  lowVal,
		lowOp:   lowOp,
		highVal: highVal,
		highOp:  highOp,
		leafPid: leafPid,
	}
	return nil
}

// ScanNext returns the next rid in range, in ascending key order. It returns
// ErrIndexScanCompleted (not a failure) once the range is exhausted, and
// ends the scan as a side effect of that termination.
func (t *Tree) ScanNext() (page.RID, error) {
	if err := t.ensureOpen(); err != nil {
		return page.RID{}, err
	}
	cs := t.scan
	if cs == nil || !cs.active {
		return page.RID{}, ErrScanNotInitialized
	}

	for {
		if cs.leafPid == page.NoPage {
			t.endScanLocked()
			return page.RID{}, ErrIndexScanCompleted
		}

		if cs.pp == nil {
			pp, buf, err := pin(t.BP, cs.leafPid)
			if err != nil {
				return page.RID{}, err
			}
			cs.pp = pp
			cs.buf = buf
			cs.pos = 0
		}

		l := t.leafView(cs.buf)
		occ := leafOccupancy(l)

		for cs.pos < occ && !satisfiesLow(l.Key(cs.pos), cs.lowVal, cs.lowOp) {
			cs.pos++
		}

		if cs.pos >= occ {
			next := l.RightSib()
			cs.pp.Release()
			cs.pp = nil
			cs.leafPid = next
			cs.pos = 0
			continue
		}

		k := l.Key(cs.pos)
		if !satisfiesHigh(k, cs.highVal, cs.highOp) {
			t.endScanLocked()
			return page.RID{}, ErrIndexScanCompleted
		}

		rid := l.RID(cs.pos)
		cs.pos++
		return rid, nil
	}
}

// EndScan closes the active scan, releasing its held pin. Calling EndScan
// without an active scan is a validation error.
func (t *Tree) EndScan() error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if t.scan == nil || !t.scan.active {
		return ErrScanNotInitialized
	}
	t.endScanLocked()
	return nil
}

func (t *Tree) endScanLocked() {
	if t.scan != nil {
		t.scan.release()
	}
	t.scan = nil
}
