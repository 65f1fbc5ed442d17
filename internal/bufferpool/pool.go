package bufferpool

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tuannm99/bptreeidx/internal/blobfile"
	"github.com/tuannm99/bptreeidx/pkg/clockx"
)

// ErrNoFreeFrame is returned when no unpinned frame is available for
// replacement (every resident page is pinned).
var ErrNoFreeFrame = errors.New("bufferpool: no free frame available (all pinned)")

// DefaultCapacity is the frame count used when a caller does not specify one.
const DefaultCapacity = 64

// frame holds one resident page and its bookkeeping. Second-chance state
// (ref bit, evictability) lives in the pool's clockx.Clock, keyed by frame
// index, rather than on the frame itself.
type frame struct {
	pageID uint32
	buf    []byte
	dirty  bool
	pin    int32
}

var _ Manager = (*Pool)(nil)

// Pool is a fixed-size buffer pool bound to a single blobfile.File, using
// CLOCK (second-chance) replacement to choose victim frames once the pool
// is full.
type Pool struct {
	bf *blobfile.File

	mu        sync.Mutex
	frames    []*frame
	pageTable map[uint32]int
	capacity  int
	clock     *clockx.Clock
}

// NewPool creates a buffer pool of the given frame capacity over bf. A
// capacity <= 0 falls back to DefaultCapacity.
func NewPool(bf *blobfile.File, capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool{
		bf:        bf,
		frames:    make([]*frame, capacity),
		pageTable: make(map[uint32]int),
		capacity:  capacity,
		clock:     clockx.New(capacity),
	}
}

// GetPage implements Manager.
func (p *Pool) GetPage(pageID uint32) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable[pageID]; ok {
		f := p.frames[idx]
		f.pin++
		p.clock.Touch(idx)
		p.clock.SetEvictable(idx, false)
		slog.Debug("bufferpool.GetPage.hit", "pageID", pageID, "pin", f.pin)
		return f.buf, nil
	}

	if idx := p.freeSlotLocked(); idx != -1 {
		buf, err := p.bf.ReadPage(pageID)
		if err != nil {
			return nil, err
		}
		p.frames[idx] = &frame{pageID: pageID, buf: buf, pin: 1}
		p.pageTable[pageID] = idx
		p.clock.Touch(idx)
		p.clock.SetEvictable(idx, false)
		slog.Debug("bufferpool.GetPage.loaded", "pageID", pageID, "frame", idx)
		return buf, nil
	}

	victimIdx, ok := p.clock.Evict()
	if !ok {
		return nil, ErrNoFreeFrame
	}
	victim := p.frames[victimIdx]
	if victim.dirty {
		if err := p.bf.WritePage(victim.pageID, victim.buf); err != nil {
			return nil, err
		}
	}
	delete(p.pageTable, victim.pageID)

	buf, err := p.bf.ReadPage(pageID)
	if err != nil {
		return nil, err
	}
	victim.pageID = pageID
	victim.buf = buf
	victim.dirty = false
	victim.pin = 1
	p.pageTable[pageID] = victimIdx
	p.clock.Touch(victimIdx)
	p.clock.SetEvictable(victimIdx, false)

	slog.Debug("bufferpool.GetPage.evicted", "pageID", pageID, "frame", victimIdx)
	return buf, nil
}

// AllocatePage implements Manager.
func (p *Pool) AllocatePage() (uint32, []byte, error) {
	pid, err := p.bf.AllocatePage()
	if err != nil {
		return 0, nil, err
	}
	buf, err := p.GetPage(pid)
	if err != nil {
		return 0, nil, err
	}
	slog.Debug("bufferpool.AllocatePage", "pageID", pid)
	return pid, buf, nil
}

func (p *Pool) freeSlotLocked() int {
	for i, f := range p.frames {
		if f == nil {
			return i
		}
	}
	return -1
}

// Unpin implements Manager.
func (p *Pool) Unpin(pageID uint32, dirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		// Absorbed per the resource model's idempotent-unpin contract: a
		// page not resident in this pool has nothing to release.
		slog.Debug("bufferpool.Unpin.absorbed", "pageID", pageID)
		return nil
	}
	f := p.frames[idx]
	if dirty {
		f.dirty = true
	}
	if f.pin > 0 {
		f.pin--
	}
	if f.pin == 0 {
		p.clock.SetEvictable(idx, true)
	}
	return nil
}

// FlushAll implements Manager.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		if f == nil || !f.dirty {
			continue
		}
		if err := p.bf.WritePage(f.pageID, f.buf); err != nil {
			return err
		}
		f.dirty = false
	}
	return p.bf.Sync()
}

// Close implements Manager.
func (p *Pool) Close() error {
	if err := p.FlushAll(); err != nil {
		return err
	}
	return p.bf.Close()
}
