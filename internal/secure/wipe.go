package secure

import (
	"runtime"

	"github.com/systmms/vaultkey/internal/logging"
)

// Wipe overwrites b with zeros.
//
// SECURITY INVARIANT: the stores must not be optimized away. The
// runtime.KeepAlive keeps the slice live past the loop so the compiler
// cannot treat the zeroing as a dead store.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

var logger = logging.New(false, false)

// SetLogger replaces the logger used for best-effort cleanup diagnostics.
// Destruction never returns errors; unlock/free failures surface here.
func SetLogger(l *logging.Logger) {
	if l != nil {
		logger = l
	}
}
