// Package kdf derives vault keys from passphrases with Argon2id
// (RFC 9106). Derived keys land directly in locked memory; the
// passphrase never leaves its secure holder.
package kdf

import (
	"fmt"
	"runtime"
)

// Parameter floors. Argon2 requires at least 8 KiB of memory per lane and
// rejects degenerate time costs; we enforce both before calling into the
// primitive so misconfiguration surfaces as a friendly error instead of a
// panic deep in x/crypto.
const (
	minTimeCost    = 1
	minMemoryKiB   = 8
	minParallelism = 1
	minSaltLen     = 8
	minKeyLen      = 16
	maxKeyLen      = 512
)

// Params are the Argon2id cost and output settings for one derivation.
// They are stable on disk: changing any field changes every derived key.
type Params struct {
	// TimeCost is the number of passes over the memory.
	TimeCost uint32 `yaml:"time_cost"`
	// MemoryKiB is the memory usage in KiB.
	MemoryKiB uint32 `yaml:"memory_kib"`
	// Parallelism is the number of lanes (threads).
	Parallelism uint8 `yaml:"parallelism"`
	// KeyLen is the derived key length in bytes.
	KeyLen uint32 `yaml:"key_len"`
}

// DefaultParams returns the settings existing vaults were created with:
// 2 passes over 64 MiB, single lane, 32-byte key. Changing these breaks
// every key derived under them, so they stay fixed; `vaultkey doctor`
// flags the gap to current guidance instead.
func DefaultParams() Params {
	return Params{
		TimeCost:    2,
		MemoryKiB:   64 * 1024,
		Parallelism: 1,
		KeyLen:      32,
	}
}

// RecommendedParams returns the RFC 9106 second recommended option
// (t=3, 64 MiB, 4 lanes), capped to the machine's CPU count. New vaults
// should use these.
func RecommendedParams() Params {
	lanes := 4
	if n := runtime.NumCPU(); n < lanes {
		lanes = n
	}
	if lanes < minParallelism {
		lanes = minParallelism
	}
	return Params{
		TimeCost:    3,
		MemoryKiB:   64 * 1024,
		Parallelism: uint8(lanes),
		KeyLen:      32,
	}
}

// Validate rejects settings the Argon2id primitive cannot honor.
func (p Params) Validate() error {
	if p.TimeCost < minTimeCost {
		return fmt.Errorf("time cost %d below minimum %d", p.TimeCost, minTimeCost)
	}
	if p.Parallelism < minParallelism {
		return fmt.Errorf("parallelism %d below minimum %d", p.Parallelism, minParallelism)
	}
	if p.MemoryKiB < minMemoryKiB*uint32(p.Parallelism) {
		return fmt.Errorf("memory %d KiB below minimum %d KiB for %d lanes",
			p.MemoryKiB, minMemoryKiB*uint32(p.Parallelism), p.Parallelism)
	}
	if p.KeyLen < minKeyLen {
		return fmt.Errorf("key length %d below minimum %d bytes", p.KeyLen, minKeyLen)
	}
	if p.KeyLen > maxKeyLen {
		return fmt.Errorf("key length %d above maximum %d bytes", p.KeyLen, maxKeyLen)
	}
	return nil
}

// String renders the cost settings for logs and doctor output. It carries
// no secret material.
func (p Params) String() string {
	return fmt.Sprintf("argon2id(t=%d, m=%dKiB, p=%d, len=%d)",
		p.TimeCost, p.MemoryKiB, p.Parallelism, p.KeyLen)
}
