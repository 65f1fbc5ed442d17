package bptree

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tuannm99/bptreeidx/internal/alias/bx"
	"github.com/tuannm99/bptreeidx/internal/blobfile"
	"github.com/tuannm99/bptreeidx/internal/bufferpool"
	"github.com/tuannm99/bptreeidx/internal/page"
	"github.com/tuannm99/bptreeidx/internal/relation"
)

// Options configures Open.
type Options struct {
	// IndexDir is the directory the index file lives in.
	IndexDir string
	// PageSize is the fixed page size used for a newly created index file.
	// It is also the page size used to read an existing one, so it must match
	// the size the file was created with; the meta page does not record it.
	PageSize int
	// PoolCapacity is the buffer pool frame count; DefaultCapacity if zero.
	PoolCapacity int

	RelationName   string
	AttrByteOffset int32
	AttrType       page.Datatype

	// Rel, when non-nil, is scanned once to bulk-load a newly created index.
	// Ignored when opening an existing index file.
	Rel *relation.File
}

// indexFileName derives the on-disk file name for one attribute index, as
// "<relationName>.<attrByteOffset>".
func indexFileName(relationName string, attrByteOffset int32) string {
	return fmt.Sprintf("%s.%d", relationName, attrByteOffset)
}

// Open opens the index file for (RelationName, AttrByteOffset) under
// IndexDir, creating and bulk-loading it from Rel if it does not exist yet,
// or validating it against the requested relation/attribute if it does.
func Open(opts Options) (*Tree, error) {
	path := filepath.Join(opts.IndexDir, indexFileName(opts.RelationName, opts.AttrByteOffset))

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		return openExisting(path, opts)
	case errors.Is(statErr, os.ErrNotExist):
		return createAndLoad(path, opts)
	default:
		return nil, statErr
	}
}

func openExisting(path string, opts Options) (*Tree, error) {
	bf, err := blobfile.Open(path, opts.PageSize)
	if err != nil {
		return nil, err
	}
	pageSize := bf.PageSize()
	bp := bufferpool.NewPool(bf, opts.PoolCapacity)

	pp, buf, err := pin(bp, page.MetaPageNo)
	if err != nil {
		return nil, err
	}
	m := page.MetaPage{Buf: buf}
	relationName := m.RelationName()
	attrByteOffset := m.AttrByteOffset()
	attrType := m.AttrType()
	rootPageNo := m.RootPageNo()
	pp.Release()

	if relationName != opts.RelationName || attrByteOffset != opts.AttrByteOffset || attrType != opts.AttrType {
		_ = bp.Close()
		return nil, ErrBadIndexInfo
	}

	lf, nf := page.Fanout(pageSize)
	slog.Debug("bptree.Open.existing", "path", path, "root", rootPageNo)

	return &Tree{
		BP:             bp,
		PageSize:       pageSize,
		Lf:             lf,
		Nf:             nf,
		RelationName:   relationName,
		AttrByteOffset: attrByteOffset,
		AttrType:       attrType,
		root:           rootPageNo,
	}, nil
}

func createAndLoad(path string, opts Options) (*Tree, error) {
	if opts.PageSize <= 0 {
		return nil, fmt.Errorf("bptree: PageSize must be positive to create %s", path)
	}

	bf, err := blobfile.Create(path, opts.PageSize)
	if err != nil {
		return nil, err
	}
	bp := bufferpool.NewPool(bf, opts.PoolCapacity)
	lf, nf := page.Fanout(opts.PageSize)

	// Page 1: meta. Page 2: the initial root, an internal node at level 1
	// with an empty (unset) leaf child — the shape of a completely empty
	// tree.
	metaPid, metaBuf, err := bp.AllocatePage()
	if err != nil {
		return nil, err
	}
	if metaPid != page.MetaPageNo {
		return nil, fmt.Errorf("bptree: expected meta page at %d, got %d", page.MetaPageNo, metaPid)
	}

	rootPid, rootBuf, err := bp.AllocatePage()
	if err != nil {
		return nil, err
	}
	root := page.InternalNode{Buf: rootBuf, Nf: nf}
	root.Reset()
	root.SetLevel(1)
	if err := bp.Unpin(rootPid, true); err != nil {
		return nil, err
	}

	m := page.MetaPage{Buf: metaBuf}
	m.Init(opts.RelationName, opts.AttrByteOffset, opts.AttrType, rootPid)
	if err := bp.Unpin(metaPid, true); err != nil {
		return nil, err
	}

	t := &Tree{
		BP:             bp,
		PageSize:       opts.PageSize,
		Lf:             lf,
		Nf:             nf,
		RelationName:   opts.RelationName,
		AttrByteOffset: opts.AttrByteOffset,
		AttrType:       opts.AttrType,
		root:           rootPid,
	}

	if opts.Rel != nil {
		if err := t.bulkLoad(opts.Rel); err != nil {
			return nil, err
		}
	}

	slog.Info("bptree.Open.created", "path", path, "root", rootPid)
	return t, nil
}

// bulkLoad scans rel once, inserting one (key,rid) pair per live record,
// logging progress every 1000 rows under a run-scoped correlation id so a
// single build's log lines can be grepped together.
func (t *Tree) bulkLoad(rel *relation.File) error {
	runID := uuid.NewString()
	log := slog.With("run", runID, "relation", t.RelationName)

	sc, err := rel.NewScanner()
	if err != nil {
		return err
	}
	defer sc.Close()

	var n int
	for {
		rid, raw, ok, err := sc.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		key, err := t.extractKey(raw)
		if err != nil {
			return err
		}
		if err := t.Insert(key, rid); err != nil {
			return err
		}

		n++
		if n%1000 == 0 {
			log.Info("bptree.bulkLoad.progress", "rows", n)
		}
	}

	log.Info("bptree.bulkLoad.done", "rows", n)
	return nil
}

// extractKey reads a fixed-width int32 key out of raw at AttrByteOffset.
func (t *Tree) extractKey(raw []byte) (int32, error) {
	off := int(t.AttrByteOffset)
	if off < 0 || off+page.KeySize > len(raw) {
		return 0, fmt.Errorf("bptree: attrByteOffset %d out of range for a %d-byte record", off, len(raw))
	}
	return bx.I32(raw[off : off+page.KeySize]), nil
}
