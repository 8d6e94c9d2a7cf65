package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/systmms/vaultkey/internal/config"
	vkerrors "github.com/systmms/vaultkey/internal/errors"
	"github.com/systmms/vaultkey/internal/logging"
	"github.com/systmms/vaultkey/internal/secure"
)

// passwordEnvVar overrides every other passphrase source when set.
const passwordEnvVar = "VAULTKEY_PASSWORD"

// readPassphrase obtains the passphrase and seals it, encrypted at rest in
// memory, until derivation needs the plaintext. Source order:
// VAULTKEY_PASSWORD, the profile's keyring entry, then an interactive
// terminal prompt. In non-interactive mode the prompt is skipped and the
// lookup fails instead of hanging.
func readPassphrase(cfg *config.Config) (*secure.Sealed, error) {
	if env := os.Getenv(passwordEnvVar); env != "" {
		cfg.Logger.Debug("passphrase %s read from %s", logging.Secret(env), passwordEnvVar)
		return secure.Seal([]byte(env)), nil
	}

	if cfg.Profile != nil && cfg.Profile.Keyring != nil {
		kr := cfg.Profile.Keyring
		value, err := keyring.Get(kr.Service, kr.Account)
		if err == nil {
			cfg.Logger.Debug("passphrase %s read from keyring %s/%s", logging.Secret(value), kr.Service, kr.Account)
			return secure.Seal([]byte(value)), nil
		}
		if !errors.Is(err, keyring.ErrNotFound) {
			return nil, vkerrors.UserError{
				Message:    "Failed to read passphrase from keyring",
				Details:    err.Error(),
				Suggestion: "Check that a keyring daemon is running, or set " + passwordEnvVar,
				Err:        err,
			}
		}
		cfg.Logger.Debug("keyring entry %s/%s not found, falling back to prompt", kr.Service, kr.Account)
	}

	if cfg.NonInteractive {
		return nil, vkerrors.UserError{
			Message:    "No passphrase available in non-interactive mode",
			Suggestion: "Set " + passwordEnvVar + " or configure a keyring entry in the profile",
		}
	}

	raw, err := promptPassword("Vault passphrase: ")
	if err != nil {
		return nil, err
	}
	defer secure.Wipe(raw)
	return secure.Seal(raw), nil
}

// unsealPassphrase moves the sealed passphrase into a locked String for
// the duration of one derivation. The sealed copy stays usable for
// retries; the caller destroys both when the session is over.
func unsealPassphrase(sealed *secure.Sealed) (*secure.String, error) {
	locked, err := sealed.Open()
	if err != nil {
		return nil, err
	}
	defer locked.Destroy()
	return secure.NewStringBytes(locked.Bytes())
}

// promptPassword reads a passphrase without echo. When stdin is piped it
// falls back to the controlling terminal so pipelines still work.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		passphrase, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		return passphrase, err
	}

	tty, ttyErr := os.Open("/dev/tty")
	if ttyErr != nil {
		if runtime.GOOS == "windows" {
			return nil, fmt.Errorf("passphrase must be set via %s when STDIN is piped", passwordEnvVar)
		}
		// Last resort: read a line from the pipe itself. Scripted callers
		// rely on this.
		fmt.Fprintln(os.Stderr)
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("cannot read passphrase: %v. Set %s instead", err, passwordEnvVar)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	defer tty.Close()

	passphrase, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(os.Stderr)
	return passphrase, err
}
