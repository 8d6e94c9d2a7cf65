package platform

import (
	"errors"
	"fmt"
)

// Reason classifies why the OS refused a lock, unlock, or protection call.
type Reason int

const (
	// ReasonUnknown is any failure the platform layer cannot classify.
	ReasonUnknown Reason = iota
	// ReasonLimitExceeded means the locked-memory resource limit is
	// exhausted (RLIMIT_MEMLOCK, working-set quota).
	ReasonLimitExceeded
	// ReasonNoPrivilege means the process lacks the privilege to pin
	// memory.
	ReasonNoPrivilege
	// ReasonInvalidRange means the address range was rejected.
	ReasonInvalidRange
	// ReasonNotLocked means an unlock was attempted on a range that was
	// not locked. Recoverable for best-effort cleanup.
	ReasonNotLocked
)

func (r Reason) String() string {
	switch r {
	case ReasonLimitExceeded:
		return "resource limit exceeded"
	case ReasonNoPrivilege:
		return "insufficient privilege"
	case ReasonInvalidRange:
		return "invalid range"
	case ReasonNotLocked:
		return "was not locked"
	}
	return "unknown"
}

var (
	errZeroSize      = errors.New("size must be positive")
	errBadAlignment  = errors.New("alignment must be a power of two")
	errEmptyRange    = errors.New("zero-length range")
	errBadProtection = errors.New("invalid protection mode")
)

// AllocError reports a refused aligned allocation.
type AllocError struct {
	Size      int
	Alignment int
	Err       error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("allocate %d bytes (alignment %d): %v", e.Size, e.Alignment, e.Err)
}

func (e *AllocError) Unwrap() error { return e.Err }

// LockError reports a refused page lock.
type LockError struct {
	Reason Reason
	Err    error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("lock memory: %s: %v", e.Reason, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }

// UnlockError reports a refused page unlock.
type UnlockError struct {
	Reason Reason
	Err    error
}

func (e *UnlockError) Error() string {
	return fmt.Sprintf("unlock memory: %s: %v", e.Reason, e.Err)
}

func (e *UnlockError) Unwrap() error { return e.Err }

// ProtectError reports a refused page-protection change.
type ProtectError struct {
	Mode Protection
	Err  error
}

func (e *ProtectError) Error() string {
	return fmt.Sprintf("protect memory (%s): %v", e.Mode, e.Err)
}

func (e *ProtectError) Unwrap() error { return e.Err }

// IsNotLocked reports whether err is an unlock failure on a range that was
// not locked, which best-effort cleanup callers may ignore.
func IsNotLocked(err error) bool {
	var ue *UnlockError
	return errors.As(err, &ue) && ue.Reason == ReasonNotLocked
}
