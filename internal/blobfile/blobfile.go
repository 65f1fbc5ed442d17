// Package blobfile implements the random-access, file-of-pages backing
// store the buffer manager reads and writes through. It knows nothing about
// node layout; it only moves fixed-size byte pages to and from disk.
package blobfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrFileNotFound is returned by Open when the caller asked for an existing
// file and none was present.
var ErrFileNotFound = errors.New("blobfile: file not found")

// ErrAlreadyExists is returned by Create when a file already exists at path.
var ErrAlreadyExists = errors.New("blobfile: file already exists")

// File is a single random-access file of fixed-size pages.
type File struct {
	f        *os.File
	pageSize int
}

// Create creates a brand-new blob file. Fails with ErrAlreadyExists if the
// path is already present, mirroring the tree opener's create-or-open
// contract.
func Create(path string, pageSize int) (*File, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, ErrAlreadyExists
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blobfile: create %s: %w", path, err)
	}
	return &File{f: f, pageSize: pageSize}, nil
}

// Open opens an existing blob file. Fails with ErrFileNotFound if absent.
func Open(path string, pageSize int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("blobfile: open %s: %w", path, err)
	}
	return &File{f: f, pageSize: pageSize}, nil
}

// PageSize returns the fixed page size this file was opened with.
func (bf *File) PageSize() int { return bf.pageSize }

// PageCount returns the number of whole pages currently in the file.
func (bf *File) PageCount() (uint32, error) {
	info, err := bf.f.Stat()
	if err != nil {
		return 0, err
	}
	return uint32(info.Size() / int64(bf.pageSize)), nil
}

// AllocatePage extends the file by one page (zero-filled) and returns its
// page number. Page numbers start at 1; page 0 is never handed out (it is
// the NoPage sentinel).
func (bf *File) AllocatePage() (uint32, error) {
	count, err := bf.PageCount()
	if err != nil {
		return 0, err
	}
	pid := count + 1
	buf := make([]byte, bf.pageSize)
	if err := bf.WritePage(pid, buf); err != nil {
		return 0, err
	}
	return pid, nil
}

// ReadPage reads page pid (1-based) into a freshly allocated buffer.
func (bf *File) ReadPage(pid uint32) ([]byte, error) {
	if pid == 0 {
		return nil, fmt.Errorf("blobfile: page 0 is the no-page sentinel")
	}
	buf := make([]byte, bf.pageSize)
	off := int64(pid-1) * int64(bf.pageSize)
	if _, err := bf.f.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, fmt.Errorf("blobfile: read page %d: %w", pid, err)
	}
	return buf, nil
}

// WritePage writes buf (must be exactly PageSize bytes) as page pid.
func (bf *File) WritePage(pid uint32, buf []byte) error {
	if pid == 0 {
		return fmt.Errorf("blobfile: page 0 is the no-page sentinel")
	}
	if len(buf) != bf.pageSize {
		return fmt.Errorf("blobfile: page buffer must be %d bytes, got %d", bf.pageSize, len(buf))
	}
	off := int64(pid-1) * int64(bf.pageSize)
	if _, err := bf.f.WriteAt(buf, off); err != nil {
		return fmt.Errorf("blobfile: write page %d: %w", pid, err)
	}
	return nil
}

// Sync flushes OS buffers to durable storage.
func (bf *File) Sync() error {
	return bf.f.Sync()
}

// Close closes the underlying OS file handle.
func (bf *File) Close() error {
	return bf.f.Close()
}

// Destroy removes the backing file entirely.
func Destroy(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
