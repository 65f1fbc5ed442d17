// Package page interprets raw, fixed-size page buffers as one of the three
// B+Tree node layouts (meta, internal, leaf) described by the on-disk format.
// No serialization cost: every accessor reads or writes directly against the
// backing []byte at a fixed byte offset, fixed width, little-endian.
package page

import "github.com/tuannm99/bptreeidx/internal/alias/bx"

// Datatype enumerates the attribute types an index can be built over.
// Only Integer is implemented.
type Datatype int32

const (
	DatatypeInteger Datatype = iota
)

// Operator enumerates the comparison operators usable at scan boundaries.
type Operator int32

const (
	OpLT Operator = iota
	OpLTE
	OpGT
	OpGTE
)

const (
	// KeySize is the fixed width of an index key (a 32-bit integer).
	KeySize = 4

	// RIDSize is the fixed width of an encoded record identifier:
	// 4-byte page number + 2-byte slot number.
	RIDSize = 4 + 2

	// LeafEntrySize is the width of one (key, rid) leaf slot.
	LeafEntrySize = KeySize + RIDSize

	// InternalEntrySize is the width of one (key, childPageID) internal slot.
	InternalEntrySize = KeySize + 4

	// levelFieldSize is the width of InternalNode.level.
	levelFieldSize = 4
	// pageIDSize is the width of a page ID / child pointer.
	pageIDSize = 4
	// rightSibFieldSize is the width of LeafNode.rightSibPageNo.
	rightSibFieldSize = 4

	// RelationNameSize is the fixed, NUL-padded width of the meta page's
	// relation name field.
	RelationNameSize = 20
	// MetaPageNo is the fixed page number of the meta page.
	MetaPageNo uint32 = 1
	// NoPage is the sentinel meaning "absent" for a page ID / RID page
	// number field.
	NoPage uint32 = 0
)

// RID (record identifier) addresses a tuple within the relation's heap file.
type RID struct {
	PageNumber uint32
	SlotNumber uint16
}

// IsZero reports whether r is the "unoccupied slot" sentinel.
func (r RID) IsZero() bool { return r.PageNumber == NoPage }

func encodeRID(b []byte, r RID) {
	bx.PutU32(b[0:4], r.PageNumber)
	bx.PutU16(b[4:6], r.SlotNumber)
}

func decodeRID(b []byte) RID {
	return RID{
		PageNumber: bx.U32(b[0:4]),
		SlotNumber: bx.U16(b[4:6]),
	}
}

// Fanout derives the maximum leaf entry count (Lf) and maximum internal key
// count (Nf) from a page size, per the data model's fixed-width layout.
func Fanout(pageSize int) (lf, nf int) {
	lf = (pageSize - rightSibFieldSize) / (KeySize + RIDSize)
	nf = (pageSize - levelFieldSize - pageIDSize) / (KeySize + pageIDSize)
	return lf, nf
}
