// Package platform abstracts the OS memory facilities the secure types are
// built on: page-size query, page-aligned allocation, page locking to keep
// ranges out of swap, page-protection changes, and instruction-cache
// invalidation. Build-tagged implementation files select the native calls
// per target OS; the API is identical everywhere.
//
// Every operation returns an error value carrying the OS diagnostic. There
// is no hidden last-error state and no global state beyond the cached page
// size.
package platform

import (
	"os"
	"sync"
)

// Protection names a page-protection mode for Protect.
type Protection int

const (
	// ProtNone makes the range inaccessible.
	ProtNone Protection = iota
	// ProtRead makes the range read-only.
	ProtRead
	// ProtWrite makes the range writable. Platforms without write-only
	// pages (Windows) grant read-write.
	ProtWrite
	// ProtReadWrite makes the range readable and writable.
	ProtReadWrite
)

func (p Protection) String() string {
	switch p {
	case ProtNone:
		return "none"
	case ProtRead:
		return "read"
	case ProtWrite:
		return "write"
	case ProtReadWrite:
		return "read-write"
	}
	return "invalid"
}

var (
	pageOnce sync.Once
	pageSize int
)

// PageSize reports the OS page granularity. The value is queried once and
// cached for the life of the process.
func PageSize() int {
	pageOnce.Do(func() {
		pageSize = os.Getpagesize()
	})
	return pageSize
}

// RoundToPage rounds n up to the next multiple of the OS page size.
func RoundToPage(n int) int {
	ps := PageSize()
	return (n + ps - 1) &^ (ps - 1)
}

// Block is a page-aligned allocation. The usable capacity is always a whole
// number of pages; Free releases the underlying mapping exactly once.
type Block struct {
	data    []byte
	release func() error
}

// Alloc requests size bytes aligned to alignment. Size is rounded up to a
// page multiple and the full rounded capacity is exposed through Bytes.
// Alignment must be a power of two; alignments above the page size are
// honored where the OS allows it.
func Alloc(size, alignment int) (*Block, error) {
	if size <= 0 {
		return nil, &AllocError{Size: size, Alignment: alignment, Err: errZeroSize}
	}
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		return nil, &AllocError{Size: size, Alignment: alignment, Err: errBadAlignment}
	}
	data, release, err := osAlloc(RoundToPage(size), alignment)
	if err != nil {
		return nil, &AllocError{Size: size, Alignment: alignment, Err: err}
	}
	return &Block{data: data, release: release}, nil
}

// Bytes exposes the full rounded capacity. Nil after Free.
func (b *Block) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Size reports the usable capacity in bytes; zero after Free.
func (b *Block) Size() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Free releases the mapping. It is a no-op on a nil or already-freed block,
// so a single matching Free can never double-free.
func (b *Block) Free() error {
	if b == nil || b.data == nil {
		return nil
	}
	release := b.release
	b.data = nil
	b.release = nil
	return release()
}

// Lock pins the range against swapping and, where the OS supports it,
// excludes it from core dumps. A zero-length range is an error: silently
// "locking" nothing would let a caller believe a secret is pinned when it
// is not.
func Lock(b []byte) error {
	if len(b) == 0 {
		return &LockError{Reason: ReasonInvalidRange, Err: errEmptyRange}
	}
	return osLock(b)
}

// Unlock reverses Lock. Callers doing best-effort cleanup can treat a
// not-locked result as recoverable; see IsNotLocked.
func Unlock(b []byte) error {
	if len(b) == 0 {
		return &UnlockError{Reason: ReasonInvalidRange, Err: errEmptyRange}
	}
	return osUnlock(b)
}

// Protect changes the page protection of the range, which must be
// page-aligned and a whole number of pages (every Block qualifies).
func Protect(b []byte, mode Protection) error {
	if len(b) == 0 {
		return &ProtectError{Mode: mode, Err: errEmptyRange}
	}
	if mode < ProtNone || mode > ProtReadWrite {
		return &ProtectError{Mode: mode, Err: errBadProtection}
	}
	return osProtect(b, mode)
}

// FlushInstructionCache invalidates the CPU instruction cache for the
// range. Secret pages never hold code, so this is a parity operation; it
// matters only if secret-adjacent code pages are ever touched.
func FlushInstructionCache(b []byte) error {
	if len(b) == 0 {
		return &ProtectError{Mode: ProtNone, Err: errEmptyRange}
	}
	return osFlushICache(b)
}
