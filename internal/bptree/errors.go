package bptree

import "errors"

// Validation errors: caller contract violations, reported immediately with
// no state change.
var (
	ErrBadIndexInfo       = errors.New("bptree: index metadata does not match requested relation/attribute")
	ErrBadOpcodes         = errors.New("bptree: scan operators must be low in {GT,GTE}, high in {LT,LTE}")
	ErrBadScanrange       = errors.New("bptree: low bound is greater than high bound")
	ErrScanNotInitialized = errors.New("bptree: scan is not active")
)

// IndexScanCompleted signals normal termination of a scan: the cursor
// transitions to idle and releases its pinned page. Not a failure.
var ErrIndexScanCompleted = errors.New("bptree: scan completed")

// NoSuchKeyFound is reserved for a future point-lookup API; the range-scan
// cursor never returns it.
var ErrNoSuchKeyFound = errors.New("bptree: no such key found")

// ErrTreeClosed is returned by any operation attempted after Close.
var ErrTreeClosed = errors.New("bptree: index is closed")
