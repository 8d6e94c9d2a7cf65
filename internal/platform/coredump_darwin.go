//go:build darwin

package platform

// macOS has no per-range core dump exclusion; locked pages stay out of swap
// but dump hygiene is left to the system-wide core dump policy.
func excludeFromDumps(b []byte) {
}
