package secure

import (
	"testing"
)

func TestAllocSlice(t *testing.T) {
	t.Parallel()

	s, err := AllocSlice[byte](32)
	if err != nil {
		skipIfLockUnavailable(t, err)
		t.Fatalf("AllocSlice[byte](32): %v", err)
	}
	defer s.Free()

	if s.Len() != 32 {
		t.Errorf("Len() = %d, want 32", s.Len())
	}
	elems := s.Elems()
	if len(elems) != 32 {
		t.Fatalf("len(Elems()) = %d, want 32", len(elems))
	}
	for i := range elems {
		if elems[i] != 0 {
			t.Fatalf("element %d = %#x, want zero-initialized", i, elems[i])
		}
	}

	elems[0] = 0xaa
	elems[31] = 0x55
	raw := s.Bytes()
	if raw[0] != 0xaa || raw[31] != 0x55 {
		t.Error("Bytes() does not alias Elems()")
	}
}

func TestAllocSliceTyped(t *testing.T) {
	t.Parallel()

	s, err := AllocSlice[uint64](4)
	if err != nil {
		skipIfLockUnavailable(t, err)
		t.Fatalf("AllocSlice[uint64](4): %v", err)
	}
	defer s.Free()

	if got := len(s.Bytes()); got != 32 {
		t.Errorf("len(Bytes()) = %d for 4 uint64s, want 32", got)
	}
	counters := s.Elems()
	counters[3] = 1<<63 - 1
	if s.Elems()[3] != 1<<63-1 {
		t.Error("typed write not visible through a second Elems() view")
	}
}

func TestAllocSliceInvalidCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1, -100} {
		if _, err := AllocSlice[byte](n); err == nil {
			t.Errorf("AllocSlice[byte](%d) succeeded, want error", n)
		}
	}

	// Element size times count must not overflow int.
	if _, err := AllocSlice[[4096]byte](1 << 60); err == nil {
		t.Error("overflowing allocation succeeded, want error")
	}
}

func TestSliceFreeIdempotent(t *testing.T) {
	t.Parallel()

	s, err := AllocSlice[byte](16)
	if err != nil {
		skipIfLockUnavailable(t, err)
		t.Fatalf("AllocSlice[byte](16): %v", err)
	}
	s.Free()
	s.Free()

	if s.Len() != 0 {
		t.Errorf("Len() = %d after Free, want 0", s.Len())
	}
	if s.Elems() != nil {
		t.Error("Elems() != nil after Free")
	}
	if s.Bytes() != nil {
		t.Error("Bytes() != nil after Free")
	}

	var nilSlice *Slice[byte]
	nilSlice.Free()
}
