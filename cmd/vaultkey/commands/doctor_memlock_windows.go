//go:build windows

package commands

import (
	"github.com/systmms/vaultkey/internal/kdf"
)

// checkMemlockLimit reports the working-set situation on Windows. There is
// no rlimit equivalent; VirtualLock failures surface through the memory
// locking check instead.
func checkMemlockLimit(_ kdf.Params) CheckResult {
	return CheckResult{
		Name:    "memlock limit",
		Status:  "healthy",
		Message: "governed by the process working set",
	}
}
