// Package relation is the index's out-of-scope collaborator: a fixed-width
// record file and a forward scanner over it, standing in for the relational
// file the index is built against. It is deliberately minimal — no schema
// catalog, no variable-length rows, no overflow pages (heap.Table's job in
// the host system) — because the index treats it only as a source of
// (rid, raw record bytes) pairs during bulk load.
package relation

import (
	"errors"
	"fmt"

	"github.com/tuannm99/bptreeidx/internal/blobfile"
	"github.com/tuannm99/bptreeidx/internal/page"
)

// ErrRecordTooLarge is returned by Insert when raw does not fit RecordSize.
var ErrRecordTooLarge = errors.New("relation: record exceeds configured record size")

// liveFlagSize is the one-byte liveness tag prefixed to every stored slot
// (0 = empty, 1 = live), the cheapest possible tombstone scheme given the
// index never deletes relation rows itself.
const liveFlagSize = 1

// File is a fixed-width slotted record file: every page holds the same
// number of fixed-size slots, computed from the page size and record size.
// Row identity is a page.RID (page number, slot number), the same type the
// index stores at its leaves.
type File struct {
	bf           *blobfile.File
	recordSize   int
	slotsPerPage int

	// nextPage/nextSlot track the bulk-append cursor used by Insert.
	nextPage uint32
	nextSlot uint16
}

// Create makes a new, empty relation file of pageSize pages holding
// fixed-width records of recordSize bytes each.
func Create(path string, pageSize, recordSize int) (*File, error) {
	bf, err := blobfile.Create(path, pageSize)
	if err != nil {
		return nil, err
	}
	return newFile(bf, pageSize, recordSize), nil
}

// Open opens an existing relation file.
func Open(path string, pageSize, recordSize int) (*File, error) {
	bf, err := blobfile.Open(path, pageSize)
	if err != nil {
		return nil, err
	}
	f := newFile(bf, pageSize, recordSize)

	count, err := bf.PageCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		buf, err := bf.ReadPage(count)
		if err != nil {
			return nil, err
		}
		slot := uint16(0)
		for int(slot) < f.slotsPerPage {
			if buf[f.slotOffset(slot)] == 0 {
				break
			}
			slot++
		}
		f.nextPage = count
		f.nextSlot = slot
	}
	return f, nil
}

func newFile(bf *blobfile.File, pageSize, recordSize int) *File {
	slots := pageSize / (liveFlagSize + recordSize)
	if slots < 1 {
		slots = 1
	}
	return &File{bf: bf, recordSize: recordSize, slotsPerPage: slots}
}

func (f *File) slotOffset(slot uint16) int {
	return int(slot) * (liveFlagSize + f.recordSize)
}

// Insert appends raw at the next free slot, allocating a new page once the
// current one fills, and returns the assigned rid.
func (f *File) Insert(raw []byte) (page.RID, error) {
	if len(raw) > f.recordSize {
		return page.RID{}, fmt.Errorf("%w: got %d, max %d", ErrRecordTooLarge, len(raw), f.recordSize)
	}

	if f.nextPage == page.NoPage || int(f.nextSlot) >= f.slotsPerPage {
		pid, err := f.bf.AllocatePage()
		if err != nil {
			return page.RID{}, err
		}
		f.nextPage = pid
		f.nextSlot = 0
	}

	buf, err := f.bf.ReadPage(f.nextPage)
	if err != nil {
		return page.RID{}, err
	}

	off := f.slotOffset(f.nextSlot)
	buf[off] = 1
	copy(buf[off+liveFlagSize:off+liveFlagSize+len(raw)], raw)

	if err := f.bf.WritePage(f.nextPage, buf); err != nil {
		return page.RID{}, err
	}

	rid := page.RID{PageNumber: f.nextPage, SlotNumber: f.nextSlot}
	f.nextSlot++
	return rid, nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.bf.Close() }

// Scanner performs one forward pass over every live record in a relation
// file, in (page, slot) order — the access pattern the index's bulk-load
// path drives during Open-on-create.
type Scanner struct {
	f       *File
	pageNo  uint32
	slot    uint16
	pageCnt uint32
	buf     []byte
}

// NewScanner opens a scanner positioned before the first record.
func (f *File) NewScanner() (*Scanner, error) {
	count, err := f.bf.PageCount()
	if err != nil {
		return nil, err
	}
	return &Scanner{f: f, pageNo: 1, slot: 0, pageCnt: count}, nil
}

// Next returns the next live (rid, raw) pair, or ok=false once the file is
// exhausted.
func (s *Scanner) Next() (rid page.RID, raw []byte, ok bool, err error) {
	for s.pageNo <= s.pageCnt {
		if s.buf == nil {
			s.buf, err = s.f.bf.ReadPage(s.pageNo)
			if err != nil {
				return page.RID{}, nil, false, err
			}
		}

		for int(s.slot) < s.f.slotsPerPage {
			off := s.f.slotOffset(s.slot)
			live := s.buf[off] == 1
			cur := s.slot
			s.slot++
			if live {
				raw := make([]byte, s.f.recordSize)
				copy(raw, s.buf[off+liveFlagSize:off+liveFlagSize+s.f.recordSize])
				return page.RID{PageNumber: s.pageNo, SlotNumber: cur}, raw, true, nil
			}
		}

		s.pageNo++
		s.slot = 0
		s.buf = nil
	}
	return page.RID{}, nil, false, nil
}

// Close is a no-op; Scanner holds no resources beyond its parent File.
func (s *Scanner) Close() error { return nil }
