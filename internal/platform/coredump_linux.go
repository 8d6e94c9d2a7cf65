//go:build linux

package platform

import "golang.org/x/sys/unix"

// excludeFromDumps marks the range MADV_DONTDUMP so locked secrets do not
// land in core files. Failures are ignored: the lock itself succeeded and
// dump exclusion is an extra hardening layer.
func excludeFromDumps(b []byte) {
	_ = unix.Madvise(b, unix.MADV_DONTDUMP)
}
