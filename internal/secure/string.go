package secure

import (
	"errors"

	"github.com/systmms/vaultkey/internal/platform"
)

// ErrDestroyed is returned when a secret holder is used after Destroy.
var ErrDestroyed = errors.New("secure: use after destroy")

// ErrCapacity is returned when new contents would not fit in the locked
// allocation made for the original value.
var ErrCapacity = errors.New("secure: value exceeds locked capacity")

// String holds a passphrase or other textual secret in locked,
// dump-excluded memory. It must not be copied by value; pass the pointer
// and call Destroy exactly once when done (extra calls are harmless).
type String struct {
	_   noCopy
	buf *buffer
	n   int
}

// NewString copies s into freshly locked memory. The capacity is the page
// rounding of len(s)+1, so short edits via Set never need a reallocation.
func NewString(s string) (*String, error) {
	return NewStringBytes([]byte(s))
}

// NewStringBytes is NewString for callers that already hold the secret as
// bytes (for example a terminal reader). The input slice is not wiped;
// that remains the caller's responsibility.
func NewStringBytes(b []byte) (*String, error) {
	buf, err := newBuffer(platform.RoundToPage(len(b) + 1))
	if err != nil {
		return nil, err
	}
	copy(buf.bytes(), b)
	return &String{buf: buf, n: len(b)}, nil
}

// Bytes returns the live secret. The slice aliases the locked pages: do
// not retain it past Destroy, and do not copy it into unprotected memory.
func (s *String) Bytes() []byte {
	if s.buf == nil || s.buf.block == nil {
		return nil
	}
	return s.buf.bytes()[:s.n]
}

// Len reports the secret length in bytes.
func (s *String) Len() int {
	if s.buf == nil || s.buf.block == nil {
		return 0
	}
	return s.n
}

// Destroyed reports whether Destroy has run.
func (s *String) Destroyed() bool {
	return s == nil || s.buf == nil || s.buf.block == nil
}

// Set replaces the contents in place. The old value is wiped first, even
// when the new one is rejected for exceeding the locked capacity.
func (s *String) Set(b []byte) error {
	if s.Destroyed() {
		return ErrDestroyed
	}
	mem := s.buf.bytes()
	Wipe(mem)
	if len(b) > len(mem) {
		s.n = 0
		return ErrCapacity
	}
	copy(mem, b)
	s.n = len(b)
	return nil
}

// Destroy wipes, unlocks, and frees the backing pages. Safe to call more
// than once and on a nil receiver.
func (s *String) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.destroy()
	s.n = 0
}

// String implements fmt.Stringer and never reveals the secret, so an
// accidental %v or %s in a log line stays harmless.
func (s *String) String() string {
	return "[REDACTED]"
}

// GoString keeps %#v redacted too.
func (s *String) GoString() string {
	return "[REDACTED]"
}
