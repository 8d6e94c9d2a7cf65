//go:build linux || darwin || freebsd

package commands

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/systmms/vaultkey/internal/kdf"
	"github.com/systmms/vaultkey/internal/platform"
)

// checkMemlockLimit compares RLIMIT_MEMLOCK against what a session needs:
// the passphrase page plus the derived key pages. The Argon2 working
// memory is deliberately excluded; it is never locked.
func checkMemlockLimit(p kdf.Params) CheckResult {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &limit); err != nil {
		return CheckResult{
			Name:    "memlock limit",
			Status:  "warning",
			Message: fmt.Sprintf("cannot read RLIMIT_MEMLOCK: %v", err),
		}
	}

	if limit.Cur == unix.RLIM_INFINITY {
		return CheckResult{Name: "memlock limit", Status: "healthy", Message: "unlimited"}
	}

	page := uint64(platform.PageSize())
	// Passphrase page, derived key pages, and scratch copy.
	needed := page + 2*uint64(platform.RoundToPage(int(p.KeyLen)))
	if limit.Cur < needed {
		return CheckResult{
			Name:       "memlock limit",
			Status:     "error",
			Message:    fmt.Sprintf("limit %d bytes, need at least %d", limit.Cur, needed),
			Suggestion: "Raise memlock in /etc/security/limits.conf or with 'ulimit -l'",
		}
	}
	return CheckResult{
		Name:    "memlock limit",
		Status:  "healthy",
		Message: fmt.Sprintf("%d bytes available", limit.Cur),
	}
}
