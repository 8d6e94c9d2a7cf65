//go:build linux || darwin || freebsd

package platform

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

func osAlloc(size, alignment int) ([]byte, func() error, error) {
	if alignment <= PageSize() {
		// mmap already returns page-aligned memory.
		raw, err := unix.Mmap(-1, 0, size,
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
		if err != nil {
			return nil, nil, err
		}
		return raw, func() error { return unix.Munmap(raw) }, nil
	}

	// Over-map and hand out the aligned window; the whole mapping is
	// released on free.
	raw, err := unix.Mmap(-1, 0, size+alignment,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, err
	}
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := int((uintptr(alignment) - addr%uintptr(alignment)) % uintptr(alignment))
	data := raw[off : off+size : off+size]
	return data, func() error { return unix.Munmap(raw) }, nil
}

func osLock(b []byte) error {
	if err := unix.Mlock(b); err != nil {
		return &LockError{Reason: lockReason(err), Err: err}
	}
	// Keep the pinned range out of core dumps as well; best effort.
	excludeFromDumps(b)
	return nil
}

func osUnlock(b []byte) error {
	if err := unix.Munlock(b); err != nil {
		return &UnlockError{Reason: unlockReason(err), Err: err}
	}
	return nil
}

func osProtect(b []byte, mode Protection) error {
	if err := unix.Mprotect(b, protNative(mode)); err != nil {
		return &ProtectError{Mode: mode, Err: err}
	}
	return nil
}

// Instruction and data caches are coherent on the unix targets this module
// supports, and secret pages never hold code, so there is nothing to
// invalidate from user space.
func osFlushICache(b []byte) error {
	return nil
}

func protNative(mode Protection) int {
	switch mode {
	case ProtRead:
		return unix.PROT_READ
	case ProtWrite:
		return unix.PROT_WRITE
	case ProtReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	default:
		return unix.PROT_NONE
	}
}

func lockReason(err error) Reason {
	switch {
	case errors.Is(err, unix.ENOMEM), errors.Is(err, unix.EAGAIN):
		return ReasonLimitExceeded
	case errors.Is(err, unix.EPERM):
		return ReasonNoPrivilege
	case errors.Is(err, unix.EINVAL):
		return ReasonInvalidRange
	}
	return ReasonUnknown
}

func unlockReason(err error) Reason {
	switch {
	// munlock reports ENOMEM for ranges that are not mapped or were
	// never locked.
	case errors.Is(err, unix.ENOMEM):
		return ReasonNotLocked
	case errors.Is(err, unix.EINVAL):
		return ReasonInvalidRange
	}
	return ReasonUnknown
}
