package secure

import "github.com/systmms/vaultkey/internal/platform"

// Key holds binary key material in locked, dump-excluded memory. It is the
// fixed-size sibling of String: the length never changes after creation.
type Key struct {
	_   noCopy
	buf *buffer
	n   int
}

// NewKey copies raw into freshly locked memory. The caller keeps ownership
// of raw and should wipe it once the Key exists.
func NewKey(raw []byte) (*Key, error) {
	buf, err := newBuffer(platform.RoundToPage(len(raw)))
	if err != nil {
		return nil, err
	}
	copy(buf.bytes(), raw)
	return &Key{buf: buf, n: len(raw)}, nil
}

// Bytes returns the live key material. The slice aliases the locked pages:
// do not retain it past Destroy.
func (k *Key) Bytes() []byte {
	if k.buf == nil || k.buf.block == nil {
		return nil
	}
	return k.buf.bytes()[:k.n]
}

// Len reports the key length in bytes.
func (k *Key) Len() int {
	if k.buf == nil || k.buf.block == nil {
		return 0
	}
	return k.n
}

// Destroyed reports whether Destroy has run.
func (k *Key) Destroyed() bool {
	return k == nil || k.buf == nil || k.buf.block == nil
}

// Destroy wipes, unlocks, and frees the backing pages. Idempotent.
func (k *Key) Destroy() {
	if k == nil || k.buf == nil {
		return
	}
	k.buf.destroy()
	k.n = 0
}

func (k *Key) String() string   { return "[REDACTED]" }
func (k *Key) GoString() string { return "[REDACTED]" }
