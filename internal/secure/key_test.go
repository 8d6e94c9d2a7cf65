package secure

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"testing"
)

func mustNewKey(t *testing.T, raw []byte) *Key {
	t.Helper()
	k, err := NewKey(raw)
	if err != nil {
		skipIfLockUnavailable(t, err)
		t.Fatalf("NewKey(%d bytes): %v", len(raw), err)
	}
	return k
}

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	k := mustNewKey(t, raw)
	defer k.Destroy()

	if !bytes.Equal(k.Bytes(), raw) {
		t.Error("Bytes() does not match input key material")
	}
	if k.Len() != 32 {
		t.Errorf("Len() = %d, want 32", k.Len())
	}

	// The key holds its own copy: wiping the source must not affect it.
	Wipe(raw)
	if k.Bytes()[0] == 0 && k.Bytes()[1] == 0 && k.Bytes()[2] == 0 {
		// Three leading zero bytes from rand is possible but at 2^-24
		// far likelier to mean the copy aliased the source.
		t.Error("key material changed when the source slice was wiped")
	}
}

func TestKeyDestroy(t *testing.T) {
	t.Parallel()

	k := mustNewKey(t, []byte{0xde, 0xad, 0xbe, 0xef})
	k.Destroy()
	k.Destroy()

	if !k.Destroyed() {
		t.Error("Destroyed() = false after Destroy")
	}
	if k.Bytes() != nil {
		t.Error("Bytes() != nil after Destroy")
	}
	if k.Len() != 0 {
		t.Errorf("Len() = %d after Destroy, want 0", k.Len())
	}

	var nilKey *Key
	nilKey.Destroy()
	if !nilKey.Destroyed() {
		t.Error("nil key should report destroyed")
	}
}

func TestKeyRedactedFormatting(t *testing.T) {
	t.Parallel()

	k := mustNewKey(t, []byte("0123456789abcdef0123456789abcdef"))
	defer k.Destroy()

	if out := fmt.Sprintf("key=%v", k); out != "key=[REDACTED]" {
		t.Errorf("Sprintf = %q, want key=[REDACTED]", out)
	}
}
