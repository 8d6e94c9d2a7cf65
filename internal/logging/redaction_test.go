package logging_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/vaultkey/internal/logging"
)

// captureStderr captures stderr output for testing.
func captureStderr(fn func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// TestPassphraseNeverReachesLogStream verifies that a Secret-wrapped
// passphrase is redacted at every log level.
func TestPassphraseNeverReachesLogStream(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	passphrase := "correct-horse-battery-staple"

	levels := []struct {
		name  string
		debug bool
		logFn func(*logging.Logger, string, ...interface{})
	}{
		{"info", false, (*logging.Logger).Info},
		{"warn", false, (*logging.Logger).Warn},
		{"error", false, (*logging.Logger).Error},
		{"debug", true, (*logging.Logger).Debug},
	}

	for _, tt := range levels {
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.New(tt.debug, true)

			output := captureStderr(func() {
				tt.logFn(logger, "unlocking vault with passphrase %s", logging.Secret(passphrase))
			})

			assert.Contains(t, output, "[REDACTED]")
			assert.NotContains(t, output, passphrase)
		})
	}
}

// TestPublicDataIsNotRedacted verifies non-secret context stays readable
// next to redacted values.
func TestPublicDataIsNotRedacted(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Info("derived %d-byte key from passphrase %s", 32, logging.Secret("hunter22-long"))
	})

	assert.Contains(t, output, "32-byte key")
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, "hunter22-long")
}

// TestDebugModeDisabled verifies debug logs don't appear when debug is off.
func TestDebugModeDisabled(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Debug("mlock diagnostics that must stay internal")
	})

	assert.Empty(t, output)
}

// TestColorOutputDisabled verifies logs carry no ANSI codes with --no-color.
func TestColorOutputDisabled(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Info("test message")
	})

	assert.NotContains(t, output, "\033[")
	assert.Contains(t, output, "✓")
}
