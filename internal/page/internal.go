package page

import "github.com/tuannm99/bptreeidx/internal/alias/bx"

// InternalNode is a typed view over an internal-node page buffer.
//
// Layout: level (4 bytes), keys[Nf] (4 bytes each), children[Nf+1] (4 bytes
// each). Occupancy: if k keys are occupied, children[0..k] are nonzero and
// all remaining slots are zero (NoPage).
type InternalNode struct {
	Buf []byte
	Nf  int
}

func (n InternalNode) levelOff() int    { return 0 }
func (n InternalNode) keysOff() int     { return levelFieldSize }
func (n InternalNode) childrenOff() int { return n.keysOff() + n.Nf*KeySize }

// Level returns the node's level (1 = children are leaves).
func (n InternalNode) Level() int32 {
	return int32(bx.U32(n.Buf[n.levelOff() : n.levelOff()+4]))
}

// SetLevel sets the node's level.
func (n InternalNode) SetLevel(level int32) {
	bx.PutU32(n.Buf[n.levelOff():n.levelOff()+4], uint32(level))
}

// Key returns the separator key at index i.
func (n InternalNode) Key(i int) int32 {
	off := n.keysOff() + i*KeySize
	return int32(bx.U32(n.Buf[off : off+KeySize]))
}

// SetKey sets the separator key at index i.
func (n InternalNode) SetKey(i int, key int32) {
	off := n.keysOff() + i*KeySize
	bx.PutU32(n.Buf[off:off+KeySize], uint32(key))
}

// Child returns the child page id at index i (0..Nf).
func (n InternalNode) Child(i int) uint32 {
	off := n.childrenOff() + i*pageIDSize
	return bx.U32(n.Buf[off : off+pageIDSize])
}

// SetChild sets the child page id at index i (0..Nf).
func (n InternalNode) SetChild(i int, pid uint32) {
	off := n.childrenOff() + i*pageIDSize
	bx.PutU32(n.Buf[off:off+pageIDSize], pid)
}

// Reset zeroes the whole node (level, keys, children all become 0).
func (n InternalNode) Reset() {
	for i := range n.Buf {
		n.Buf[i] = 0
	}
}
