package kdf

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/systmms/vaultkey/internal/secure"
)

// DerivationError wraps any failure to turn a passphrase into a key. The
// message never includes the passphrase or derived bytes.
type DerivationError struct {
	Err error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("key derivation failed: %v", e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

var (
	errDestroyedPassword = errors.New("password has been destroyed")
	errEmptySalt         = errors.New("salt is empty")
	errShortSalt         = fmt.Errorf("salt shorter than %d bytes", minSaltLen)
)

// DeriveKey runs Argon2id over the passphrase and salt and returns the key
// in locked scratch memory. The caller owns the result and must Free it.
// Empty passwords are accepted (some vaults allow them); destroyed ones
// are not.
func DeriveKey(password *secure.String, salt []byte, params Params) (*secure.Slice[byte], error) {
	start := time.Now()
	out, err := deriveLocked(password, salt, params)
	observeDerive(err == nil, time.Since(start))
	return out, err
}

// DeriveAndProtectKey derives and hands back a secure.Key, wiping the
// scratch copy. Callers that keep a key around for the life of a vault
// session want this form.
func DeriveAndProtectKey(password *secure.String, salt []byte, params Params) (*secure.Key, error) {
	scratch, err := DeriveKey(password, salt, params)
	if err != nil {
		return nil, err
	}
	defer scratch.Free()

	key, err := secure.NewKey(scratch.Bytes())
	if err != nil {
		return nil, &DerivationError{Err: err}
	}
	return key, nil
}

func deriveLocked(password *secure.String, salt []byte, params Params) (out *secure.Slice[byte], err error) {
	if password == nil || password.Destroyed() {
		return nil, &DerivationError{Err: errDestroyedPassword}
	}
	if len(salt) == 0 {
		return nil, &DerivationError{Err: errEmptySalt}
	}
	if len(salt) < minSaltLen {
		return nil, &DerivationError{Err: errShortSalt}
	}
	if verr := params.Validate(); verr != nil {
		return nil, &DerivationError{Err: verr}
	}

	// argon2.IDKey panics instead of returning errors. Validate above
	// rules out the panic conditions we know about; recover converts
	// anything left (allocation failure on huge memory costs, mostly)
	// into an error.
	defer func() {
		if r := recover(); r != nil {
			if out != nil {
				out.Free()
				out = nil
			}
			err = &DerivationError{Err: fmt.Errorf("argon2: %v", r)}
		}
	}()

	raw := argon2.IDKey(password.Bytes(), salt, params.TimeCost, params.MemoryKiB, params.Parallelism, params.KeyLen)
	defer secure.Wipe(raw)

	// The m KiB of Argon2 working memory live on the regular heap for the
	// duration of the call; only the output gets moved under lock.
	out, err = secure.AllocSlice[byte](int(params.KeyLen))
	if err != nil {
		return nil, &DerivationError{Err: err}
	}
	copy(out.Elems(), raw)
	return out, nil
}
