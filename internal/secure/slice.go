package secure

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/systmms/vaultkey/internal/platform"
)

// Slice is a typed view over a locked allocation, for scratch values that
// must never reach the garbage-collected heap: derived keys in flight,
// decrypted headers, nonce counters. Free wipes before releasing.
type Slice[T any] struct {
	_   noCopy
	buf *buffer
	n   int
}

// AllocSlice allocates locked, zeroed storage for n values of T.
func AllocSlice[T any](n int) (*Slice[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("secure: invalid element count %d", n)
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if elem != 0 && n > math.MaxInt/elem {
		return nil, fmt.Errorf("secure: %d elements of %d bytes overflow", n, elem)
	}
	buf, err := newBuffer(platform.RoundToPage(n * elem))
	if err != nil {
		return nil, err
	}
	return &Slice[T]{buf: buf, n: n}, nil
}

// Elems returns the live elements. The slice aliases the locked pages: do
// not retain it past Free.
func (s *Slice[T]) Elems() []T {
	if s.buf == nil || s.buf.block == nil {
		return nil
	}
	mem := s.buf.bytes()
	return unsafe.Slice((*T)(unsafe.Pointer(&mem[0])), s.n)
}

// Bytes returns the elements reinterpreted as raw bytes.
func (s *Slice[T]) Bytes() []byte {
	if s.buf == nil || s.buf.block == nil {
		return nil
	}
	var zero T
	return s.buf.bytes()[:s.n*int(unsafe.Sizeof(zero))]
}

// Len reports the element count.
func (s *Slice[T]) Len() int {
	if s.buf == nil || s.buf.block == nil {
		return 0
	}
	return s.n
}

// Free wipes, unlocks, and releases the storage. Idempotent.
func (s *Slice[T]) Free() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.destroy()
	s.n = 0
}
