package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/vaultkey/internal/errors"
	"github.com/systmms/vaultkey/internal/platform"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "mlock returned EPERM",
		Suggestion: "Raise the memlock limit",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "mlock returned EPERM")
	assert.Contains(t, errMsg, "Raise the memlock limit")
	assert.Contains(t, errMsg, "💡")
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "derivation.memory_kib",
		Value:      "four",
		Message:    "must be a number of KiB",
		Suggestion: "Use an integer, e.g. 65536 for 64 MiB",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "derivation.memory_kib")
	assert.Contains(t, errMsg, "four")
	assert.Contains(t, errMsg, "must be a number of KiB")
	assert.Contains(t, errMsg, "65536")
}

// TestLockFailureSuggestions verifies memory-lock errors carry remediation advice
func TestLockFailureSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		reason             platform.Reason
		expectedSuggestion string
	}{
		{
			name:               "limit_exceeded",
			reason:             platform.ReasonLimitExceeded,
			expectedSuggestion: "memlock",
		},
		{
			name:               "no_privilege",
			reason:             platform.ReasonNoPrivilege,
			expectedSuggestion: "CAP_IPC_LOCK",
		},
		{
			name:               "invalid_range",
			reason:             platform.ReasonInvalidRange,
			expectedSuggestion: "bug",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := &platform.LockError{Reason: tt.reason, Err: fmt.Errorf("os says no")}
			err := errors.LockFailure(base)

			errMsg := err.Error()
			assert.Contains(t, errMsg, "unable to lock memory")
			assert.Contains(t, errMsg, tt.expectedSuggestion)
		})
	}
}

// TestSimplify verifies error simplification for common cases
func TestSimplify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		inputError    error
		expectedType  string
		expectedInMsg string
	}{
		{
			name:          "yaml_error",
			inputError:    fmt.Errorf("yaml: line 5: mapping values are not allowed"),
			expectedType:  "ConfigError",
			expectedInMsg: "Invalid YAML",
		},
		{
			name:          "permission_denied",
			inputError:    fmt.Errorf("permission denied"),
			expectedType:  "UserError",
			expectedInMsg: "Permission denied",
		},
		{
			name:          "file_not_found",
			inputError:    fmt.Errorf("no such file or directory"),
			expectedType:  "UserError",
			expectedInMsg: "not found",
		},
		{
			name:          "derivation_failure",
			inputError:    fmt.Errorf("key derivation failed: argon2: out of memory"),
			expectedType:  "UserError",
			expectedInMsg: "failed to derive vault key",
		},
		{
			name:          "lock_failure",
			inputError:    &platform.LockError{Reason: platform.ReasonLimitExceeded, Err: fmt.Errorf("ENOMEM")},
			expectedType:  "UserError",
			expectedInMsg: "unable to lock memory",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			simplified := errors.Simplify(tt.inputError)

			errMsg := simplified.Error()
			assert.Contains(t, errMsg, tt.expectedInMsg)

			switch tt.expectedType {
			case "ConfigError":
				_, ok := simplified.(errors.ConfigError)
				assert.True(t, ok, "Should be ConfigError type")
			case "UserError":
				_, ok := simplified.(errors.UserError)
				assert.True(t, ok, "Should be UserError type")
			}
		})
	}
}

// TestSimplifyDoesNotLeakParameters verifies derivation details stay out of
// the user-facing message
func TestSimplifyDoesNotLeakParameters(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("key derivation failed: salt 00112233 with t=2 m=65536")
	simplified := errors.Simplify(base)

	userErr, ok := simplified.(errors.UserError)
	assert.True(t, ok)
	assert.Equal(t, "failed to derive vault key", userErr.Message)
	// The chain keeps the detail for --debug, the message does not.
	assert.NotContains(t, userErr.Message, "00112233")
}

// TestSimplifyPassThrough verifies already-friendly errors survive unchanged
func TestSimplifyPassThrough(t *testing.T) {
	t.Parallel()

	userErr := errors.UserError{Message: "already friendly"}
	assert.Equal(t, userErr, errors.Simplify(userErr))

	cfgErr := errors.ConfigError{Message: "already friendly"}
	assert.Equal(t, cfgErr, errors.Simplify(cfgErr))

	opaque := fmt.Errorf("something unusual")
	assert.Equal(t, opaque, errors.Simplify(opaque))
}

// TestUserErrorUnwrap verifies error unwrapping works correctly
func TestUserErrorUnwrap(t *testing.T) {
	t.Parallel()

	baseErr := fmt.Errorf("base error")
	userErr := errors.UserError{
		Message: "wrapped error",
		Err:     baseErr,
	}

	unwrapped := userErr.Unwrap()
	assert.Equal(t, baseErr, unwrapped)
}

// TestNilErrorHandling verifies nil errors are handled gracefully
func TestNilErrorHandling(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Simplify(nil))
}
