// Package bufferpool implements the paged buffer manager that the B+Tree
// index's core logic treats as an external collaborator: it allocates,
// reads, pins/unpins, and flushes fixed-size pages backed by a
// blobfile.File. It has no operation that frees or destroys a page.
package bufferpool

// Manager is the buffer-manager contract the B+Tree core (internal/bptree)
// depends on. Every GetPage/AllocatePage call increments a page's pin count;
// the caller must release it with exactly one Unpin on every exit path,
// including error paths.
type Manager interface {
	// GetPage returns the page's bytes, pinning it. If not resident, it is
	// loaded from the backing blob file (replacing a victim frame if the
	// pool is full).
	GetPage(pageID uint32) ([]byte, error)

	// AllocatePage grows the backing file by one page, loads it pinned
	// (zero-filled), and returns its new page id and buffer.
	AllocatePage() (pageID uint32, buf []byte, err error)

	// Unpin decrements the page's pin count and marks it dirty if dirty is
	// true. Unpinning a page that is not resident (already released, or
	// never pinned by this manager) is silently ignored — this absorbs the
	// buffer manager's PageNotPinned/HashNotFound failures at the call
	// site, per the resource model's idempotent-unpin contract.
	Unpin(pageID uint32, dirty bool) error

	// FlushAll writes every dirty resident page back to the blob file.
	FlushAll() error

	// Close flushes and closes the backing blob file.
	Close() error
}
