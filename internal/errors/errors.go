// Package errors turns low-level memory and derivation failures into
// messages a vault user can act on.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/systmms/vaultkey/internal/platform"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// LockFailure wraps a memory-locking error with platform-specific advice.
func LockFailure(err error) error {
	return UserError{
		Message:    "unable to lock memory for secret storage",
		Suggestion: lockSuggestion(err),
		Err:        err,
	}
}

// lockSuggestion returns remediation advice for a failed mlock/VirtualLock.
func lockSuggestion(err error) string {
	var lockErr *platform.LockError
	if !errors.As(err, &lockErr) {
		return ""
	}

	switch lockErr.Reason {
	case platform.ReasonLimitExceeded:
		if runtime.GOOS == "windows" {
			return "Increase the process working set size, or close other vault sessions"
		}
		return "Raise the locked-memory limit: 'ulimit -l' to inspect, then raise memlock in /etc/security/limits.conf"
	case platform.ReasonNoPrivilege:
		if runtime.GOOS == "windows" {
			return "Run with SeLockMemoryPrivilege enabled for this account"
		}
		return "Grant CAP_IPC_LOCK ('setcap cap_ipc_lock+ep <binary>') or raise the memlock limit"
	case platform.ReasonInvalidRange:
		return "This is a bug in vaultkey; please report it with the --debug output"
	}
	return ""
}

// Simplify collapses internal failures into a message safe to show without
// leaking key material or derivation internals. Errors that are already
// user-facing pass through unchanged.
func Simplify(err error) error {
	if err == nil {
		return nil
	}

	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}

	var lockErr *platform.LockError
	if errors.As(err, &lockErr) {
		return LockFailure(err)
	}

	var allocErr *platform.AllocError
	if errors.As(err, &allocErr) {
		return UserError{
			Message:    "unable to allocate protected memory",
			Suggestion: "Lower the derivation memory cost in the profile, or free up memory",
			Err:        err,
		}
	}

	errStr := err.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "key derivation failed") {
		// Hide parameter and salt details; the --debug log keeps them.
		return UserError{
			Message: "failed to derive vault key",
			Err:     err,
		}
	}

	return err
}
