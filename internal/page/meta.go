package page

import (
	"bytes"

	"github.com/tuannm99/bptreeidx/internal/alias/bx"
)

// Meta offsets within the meta page (always page MetaPageNo).
const (
	metaRelationNameOff = 0
	metaAttrByteOffOff  = metaRelationNameOff + RelationNameSize
	metaAttrTypeOff     = metaAttrByteOffOff + 4
	metaRootPageNoOff   = metaAttrTypeOff + 4
	// MetaSize is the number of bytes the meta page actually uses; the
	// remainder of the page is left zeroed.
	MetaSize = metaRootPageNoOff + 4
)

// MetaPage is a typed view over the meta page buffer.
type MetaPage struct {
	Buf []byte
}

// Init writes a brand-new meta page. Called once, at index creation.
func (m MetaPage) Init(relationName string, attrByteOffset int32, attrType Datatype, rootPageNo uint32) {
	var nameBuf [RelationNameSize]byte
	copy(nameBuf[:], relationName)
	copy(m.Buf[metaRelationNameOff:metaRelationNameOff+RelationNameSize], nameBuf[:])
	bx.PutU32(m.Buf[metaAttrByteOffOff:metaAttrByteOffOff+4], uint32(attrByteOffset))
	bx.PutU32(m.Buf[metaAttrTypeOff:metaAttrTypeOff+4], uint32(attrType))
	bx.PutU32(m.Buf[metaRootPageNoOff:metaRootPageNoOff+4], rootPageNo)
}

// RelationName returns the NUL-padded relation name with padding stripped.
func (m MetaPage) RelationName() string {
	raw := m.Buf[metaRelationNameOff : metaRelationNameOff+RelationNameSize]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// AttrByteOffset returns the byte offset of the indexed attribute within a
// raw record.
func (m MetaPage) AttrByteOffset() int32 {
	return int32(bx.U32(m.Buf[metaAttrByteOffOff : metaAttrByteOffOff+4]))
}

// AttrType returns the indexed attribute's declared datatype.
func (m MetaPage) AttrType() Datatype {
	return Datatype(bx.U32(m.Buf[metaAttrTypeOff : metaAttrTypeOff+4]))
}

// RootPageNo returns the current root page id.
func (m MetaPage) RootPageNo() uint32 {
	return bx.U32(m.Buf[metaRootPageNoOff : metaRootPageNoOff+4])
}

// SetRootPageNo updates the root page id in place (root promotion).
func (m MetaPage) SetRootPageNo(pid uint32) {
	bx.PutU32(m.Buf[metaRootPageNoOff:metaRootPageNoOff+4], pid)
}
