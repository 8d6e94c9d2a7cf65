package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Sealed keeps a long-lived secret encrypted at rest in memory. Where
// String, Key, and Region hold plaintext in locked pages for the duration
// of their life, Sealed wraps memguard.Enclave so the plaintext exists
// only inside an Open/Destroy window. It is the right holder for secrets
// that outlive a single operation, such as a cached vault key between
// unlock and lock.
//
// Note: memguard.Enclave has no direct destruction method; the ciphertext
// is safe to leave for the garbage collector. Callers that want every
// memguard allocation gone at exit should defer memguard.Purge() in main.
type Sealed struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy calls and blocks reuse after one.
	destroyed bool
}

// Seal encrypts data into a new sealed holder. The input is copied; the
// caller should wipe its own copy afterwards. An empty input yields a
// holder whose Open returns an empty buffer (memguard has no enclave for
// zero bytes, and empty passphrases are legal).
func Seal(data []byte) *Sealed {
	// memguard.NewEnclave encrypts with XSalsa20Poly1305, mlocks the
	// working buffers, and places guard pages around them. It returns nil
	// for empty input.
	return &Sealed{enclave: memguard.NewEnclave(data)}
}

// Open decrypts the secret into a locked buffer. The caller MUST call
// Destroy on the returned LockedBuffer when done:
//
//	locked, err := sealed.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	use(locked.Bytes())
func (s *Sealed) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return memguard.NewBufferFromBytes(nil), nil
	}
	return s.enclave.Open()
}

// Destroyed reports whether Destroy has run.
func (s *Sealed) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// Destroy drops the enclave and blocks further use. Idempotent. The
// encrypted bytes are left to the garbage collector; they are useless
// without the memguard session key.
func (s *Sealed) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.enclave = nil
	s.destroyed = true
}

func (s *Sealed) String() string   { return "[REDACTED]" }
func (s *Sealed) GoString() string { return "[REDACTED]" }
