//go:build windows

package platform

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// VirtualAlloc regions start on an allocation-granularity boundary.
const allocationGranularity = 64 * 1024

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procFlushInstructionCache = kernel32.NewProc("FlushInstructionCache")
)

func osAlloc(size, alignment int) ([]byte, func() error, error) {
	if alignment > allocationGranularity {
		return nil, nil, fmt.Errorf("alignment %d exceeds the allocation granularity (%d)", alignment, allocationGranularity)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return data, func() error {
		return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
	}, nil
}

func osLock(b []byte) error {
	err := windows.VirtualLock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
	if err != nil {
		return &LockError{Reason: lockReason(err), Err: err}
	}
	return nil
}

func osUnlock(b []byte) error {
	err := windows.VirtualUnlock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
	if err != nil {
		return &UnlockError{Reason: unlockReason(err), Err: err}
	}
	return nil
}

func osProtect(b []byte, mode Protection) error {
	var old uint32
	err := windows.VirtualProtect(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)),
		protNative(mode), &old)
	if err != nil {
		return &ProtectError{Mode: mode, Err: err}
	}
	return nil
}

func osFlushICache(b []byte) error {
	r1, _, err := procFlushInstructionCache.Call(
		uintptr(windows.CurrentProcess()),
		uintptr(unsafe.Pointer(&b[0])),
		uintptr(len(b)))
	if r1 == 0 {
		return err
	}
	return nil
}

func protNative(mode Protection) uint32 {
	switch mode {
	case ProtRead:
		return windows.PAGE_READONLY
	case ProtWrite, ProtReadWrite:
		// No write-only pages on Windows.
		return windows.PAGE_READWRITE
	default:
		return windows.PAGE_NOACCESS
	}
}

func lockReason(err error) Reason {
	switch {
	case errors.Is(err, windows.ERROR_WORKING_SET_QUOTA),
		errors.Is(err, windows.ERROR_NOT_ENOUGH_MEMORY):
		return ReasonLimitExceeded
	case errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD):
		return ReasonNoPrivilege
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER),
		errors.Is(err, windows.ERROR_INVALID_ADDRESS):
		return ReasonInvalidRange
	}
	return ReasonUnknown
}

func unlockReason(err error) Reason {
	switch {
	case errors.Is(err, windows.ERROR_NOT_LOCKED):
		return ReasonNotLocked
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER),
		errors.Is(err, windows.ERROR_INVALID_ADDRESS):
		return ReasonInvalidRange
	}
	return ReasonUnknown
}
