package bptree

import "log/slog"

// Close ends any active scan and flushes every dirty page to disk before
// releasing the buffer manager. Calling Close twice is safe; the second call
// is a no-op.
func (t *Tree) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	if t.scan != nil {
		t.scan.release()
		t.scan = nil
	}

	if err := t.BP.Close(); err != nil {
		return err
	}
	slog.Debug("bptree.Close", "relation", t.RelationName, "attrByteOffset", t.AttrByteOffset)
	return nil
}
