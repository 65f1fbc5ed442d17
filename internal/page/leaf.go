package page

import "github.com/tuannm99/bptreeidx/internal/alias/bx"

// LeafNode is a typed view over a leaf page buffer.
//
// Layout: keys[Lf] (4 bytes each), rids[Lf] (6 bytes each), rightSibPageNo
// (4 bytes). Occupancy is the length of the ascending occupied prefix,
// determined by rids[i].PageNumber == NoPage rather than a stored count.
type LeafNode struct {
	Buf []byte
	Lf  int
}

func (l LeafNode) keysOff() int     { return 0 }
func (l LeafNode) ridsOff() int     { return l.Lf * KeySize }
func (l LeafNode) rightSibOff() int { return l.ridsOff() + l.Lf*RIDSize }

// Key returns the key stored at slot i.
func (l LeafNode) Key(i int) int32 {
	off := l.keysOff() + i*KeySize
	return int32(bx.U32(l.Buf[off : off+KeySize]))
}

// SetKey writes the key stored at slot i.
func (l LeafNode) SetKey(i int, key int32) {
	off := l.keysOff() + i*KeySize
	bx.PutU32(l.Buf[off:off+KeySize], uint32(key))
}

// RID returns the record identifier stored at slot i.
func (l LeafNode) RID(i int) RID {
	off := l.ridsOff() + i*RIDSize
	return decodeRID(l.Buf[off : off+RIDSize])
}

// SetRID writes the record identifier stored at slot i.
func (l LeafNode) SetRID(i int, r RID) {
	off := l.ridsOff() + i*RIDSize
	encodeRID(l.Buf[off:off+RIDSize], r)
}

// ClearSlot zeros out slot i (both key and rid), marking it unoccupied.
func (l LeafNode) ClearSlot(i int) {
	l.SetKey(i, 0)
	l.SetRID(i, RID{})
}

// RightSib returns the right-sibling page id, or NoPage if none.
func (l LeafNode) RightSib() uint32 {
	off := l.rightSibOff()
	return bx.U32(l.Buf[off : off+4])
}

// SetRightSib sets the right-sibling page id.
func (l LeafNode) SetRightSib(pid uint32) {
	off := l.rightSibOff()
	bx.PutU32(l.Buf[off:off+4], pid)
}

// Reset zeroes every slot and the sibling pointer (fresh/empty leaf).
func (l LeafNode) Reset() {
	for i := range l.Buf {
		l.Buf[i] = 0
	}
}
