// Package config loads the vaultkey profile: the Argon2id settings a
// vault was created with, plus where to read the passphrase from.
package config

import (
	"os"

	vkerrors "github.com/systmms/vaultkey/internal/errors"
	"github.com/systmms/vaultkey/internal/kdf"
	"github.com/systmms/vaultkey/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Profile        *Profile
}

// Profile represents the vaultkey.yaml structure. The derivation settings
// are part of the vault's identity: a key derived under different settings
// will not open the vault.
type Profile struct {
	Version    int        `yaml:"version"`
	Derivation kdf.Params `yaml:"derivation"`
	Keyring    *Keyring   `yaml:"keyring,omitempty"`
}

// Keyring names the OS keyring entry to read the passphrase from, for
// non-interactive use.
type Keyring struct {
	Service string `yaml:"service"`
	Account string `yaml:"account"`
}

// DefaultProfile returns the profile used when no vaultkey.yaml exists:
// version 1 with the derivation settings existing vaults were created
// with.
func DefaultProfile() *Profile {
	return &Profile{
		Version:    1,
		Derivation: kdf.DefaultParams(),
	}
}

// Load reads and parses the vaultkey.yaml file. A missing file is not an
// error; the defaults apply.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Profile = DefaultProfile()
			if c.Logger != nil {
				c.Logger.Debug("no profile at %s, using defaults", c.Path)
			}
			return nil
		}
		return vkerrors.UserError{
			Message:    "Failed to read profile",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var profile Profile
	// Defaults fill fields the file omits.
	profile.Derivation = kdf.DefaultParams()
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return vkerrors.ConfigError{
			Message:    "invalid YAML syntax in profile",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if profile.Version != 1 {
		return vkerrors.ConfigError{
			Field:      "version",
			Value:      profile.Version,
			Message:    "unsupported profile version",
			Suggestion: "Set 'version: 1' at the top of your vaultkey.yaml file",
		}
	}

	if err := profile.Derivation.Validate(); err != nil {
		return vkerrors.ConfigError{
			Field:      "derivation",
			Value:      profile.Derivation.String(),
			Message:    err.Error(),
			Suggestion: "Compare against the defaults: time_cost 2, memory_kib 65536, parallelism 1, key_len 32",
		}
	}

	if profile.Keyring != nil && (profile.Keyring.Service == "" || profile.Keyring.Account == "") {
		return vkerrors.ConfigError{
			Field:      "keyring",
			Message:    "both service and account are required",
			Suggestion: "Either fill in keyring.service and keyring.account or remove the keyring section",
		}
	}

	c.Profile = &profile
	return nil
}

// Params returns the effective derivation settings.
func (c *Config) Params() kdf.Params {
	if c.Profile == nil {
		return kdf.DefaultParams()
	}
	return c.Profile.Derivation
}
