package secure

import (
	"errors"
	"fmt"

	"github.com/systmms/vaultkey/internal/platform"
)

// ErrReadOnly is returned when contents of a read-only Region would be
// modified.
var ErrReadOnly = errors.New("secure: region is read-only")

// Region is a locked allocation whose pages can be flipped between
// read-write and read-only. Long-lived derived keys are parked read-only
// so a stray write through a dangling pointer faults instead of
// corrupting or exfiltrating the key.
type Region struct {
	_        noCopy
	buf      *buffer
	n        int
	readOnly bool
}

// NewRegion copies data into a fresh locked allocation, writable until
// MakeReadOnly is called.
func NewRegion(data []byte) (*Region, error) {
	buf, err := newBuffer(platform.RoundToPage(len(data)))
	if err != nil {
		return nil, err
	}
	copy(buf.bytes(), data)
	return &Region{buf: buf, n: len(data)}, nil
}

// Bytes returns the live contents. Reading is always allowed; writing
// through the returned slice while the region is read-only faults.
func (r *Region) Bytes() []byte {
	if r.buf == nil || r.buf.block == nil {
		return nil
	}
	return r.buf.bytes()[:r.n]
}

// Len reports the region length in bytes.
func (r *Region) Len() int {
	if r.buf == nil || r.buf.block == nil {
		return 0
	}
	return r.n
}

// ReadOnly reports whether the pages are currently write-protected.
func (r *Region) ReadOnly() bool {
	return r.readOnly
}

// Destroyed reports whether Destroy has run.
func (r *Region) Destroyed() bool {
	return r == nil || r.buf == nil || r.buf.block == nil
}

// MakeReadOnly write-protects the pages. No-op when already read-only.
func (r *Region) MakeReadOnly() error {
	if r.Destroyed() {
		return ErrDestroyed
	}
	if r.readOnly {
		return nil
	}
	if err := platform.Protect(r.buf.bytes(), platform.ProtRead); err != nil {
		return err
	}
	r.readOnly = true
	return nil
}

// MakeReadWrite restores write access. No-op when already writable.
func (r *Region) MakeReadWrite() error {
	if r.Destroyed() {
		return ErrDestroyed
	}
	if !r.readOnly {
		return nil
	}
	if err := platform.Protect(r.buf.bytes(), platform.ProtReadWrite); err != nil {
		return err
	}
	r.readOnly = false
	return nil
}

// Set overwrites the bytes at off. It refuses to touch a read-only region
// rather than flipping protection behind the caller's back.
func (r *Region) Set(off int, data []byte) error {
	if r.Destroyed() {
		return ErrDestroyed
	}
	if r.readOnly {
		return ErrReadOnly
	}
	if off < 0 || off+len(data) > r.n {
		return fmt.Errorf("secure: write [%d:%d) outside region of %d bytes", off, off+len(data), r.n)
	}
	copy(r.buf.bytes()[off:], data)
	return nil
}

// Destroy restores write access if needed, then wipes, unlocks, and frees.
// If the pages cannot be made writable again the wipe is impossible; the
// region is released unwiped and the failure logged, since mprotect
// refusing RW on our own anonymous mapping means the address space is
// already in a broken state.
func (r *Region) Destroy() {
	if r == nil || r.buf == nil || r.buf.block == nil {
		return
	}
	if r.readOnly {
		if err := platform.Protect(r.buf.bytes(), platform.ProtReadWrite); err != nil {
			logger.Error("secure: cannot restore write access to wipe region: %v", err)
			r.buf.release()
			r.n = 0
			return
		}
		r.readOnly = false
	}
	r.buf.destroy()
	r.n = 0
}

func (r *Region) String() string   { return "[REDACTED]" }
func (r *Region) GoString() string { return "[REDACTED]" }
