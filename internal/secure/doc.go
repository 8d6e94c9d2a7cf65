// Package secure provides memory-safe holders for sensitive data: the vault
// passphrase, the derived vault key, and any intermediate secret bytes.
//
// Every holder is backed by page-aligned memory allocated and locked through
// the platform layer before the first secret byte is written into it. There
// is no fallback: if the pages cannot be locked, construction fails
// ("protected or not at all"). Destruction always runs the same fixed
// sequence over the full backing capacity, never just the logical length:
//
//	wipe -> unlock -> free
//
// Destruction is idempotent, and failures after the wipe are logged rather
// than returned — by that point the secret is already gone, which is the
// property that matters.
//
// The holders are single-owner. Their fields are unexported and each type
// carries a vet-detectable no-copy marker, so value copies are flagged by
// `go vet` and the only way to share a secret is to pass the pointer.
//
// Holders for one derivation cycle (String, Key, Region, Slice) keep their
// plaintext in locked pages. Secrets that must live longer than one cycle
// go into a Sealed, which keeps them encrypted at rest in memory via
// memguard and decrypts them only for the duration of an Open window.
//
// This package provides defense-in-depth against swap files, core dumps,
// and stray in-process copies. It does NOT protect against attackers with
// root access to the running process or hardware-level attacks (cold boot,
// DMA).
package secure
