package secure

import (
	"github.com/systmms/vaultkey/internal/platform"
)

// noCopy makes `go vet -copylocks` reject value copies of the secret types.
// A copied holder would be a second unprotected owner of the same pages.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// afterWipe, when set, observes the wiped capacity between the wipe and the
// unlock/free steps. The pages are unmapped immediately afterwards, so this
// is the only window in which tests can verify that no secret byte
// survives destruction.
var afterWipe func([]byte)

// buffer is the common core of the secret holders: a page-aligned, locked
// allocation with the wipe -> unlock -> free destruction sequence.
type buffer struct {
	block *platform.Block
}

// newBuffer allocates capacity bytes (rounded up to whole pages) and locks
// them before any caller can write a secret in. If the lock is refused the
// allocation is released and the error returned: there is no fallback to
// unprotected memory.
func newBuffer(capacity int) (*buffer, error) {
	block, err := platform.Alloc(capacity, platform.PageSize())
	if err != nil {
		return nil, err
	}
	if err := platform.Lock(block.Bytes()); err != nil {
		_ = block.Free()
		return nil, err
	}
	Wipe(block.Bytes())
	return &buffer{block: block}, nil
}

func (b *buffer) bytes() []byte {
	if b == nil || b.block == nil {
		return nil
	}
	return b.block.Bytes()
}

func (b *buffer) capacity() int {
	if b == nil {
		return 0
	}
	return b.block.Size()
}

// destroy wipes the full capacity, unlocks, and frees, in that fixed
// order. Idempotent. Unlock and free failures are logged and swallowed:
// the wipe has already removed the secret, and destruction paths cannot
// propagate errors.
func (b *buffer) destroy() {
	if b == nil || b.block == nil {
		return
	}
	mem := b.block.Bytes()
	Wipe(mem)
	if afterWipe != nil {
		afterWipe(mem)
	}
	b.release()
}

// release unlocks and frees without wiping. Only the Region destructor
// uses it directly, for the pathological case where read-only pages cannot
// be made writable again; everything else goes through destroy.
func (b *buffer) release() {
	if b == nil || b.block == nil {
		return
	}
	if err := platform.Unlock(b.block.Bytes()); err != nil && !platform.IsNotLocked(err) {
		logger.Warn("secure: unlock during destroy: %v", err)
	}
	if err := b.block.Free(); err != nil {
		logger.Warn("secure: free during destroy: %v", err)
	}
	b.block = nil
}
