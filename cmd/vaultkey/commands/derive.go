package commands

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/vaultkey/internal/config"
	vkerrors "github.com/systmms/vaultkey/internal/errors"
	"github.com/systmms/vaultkey/internal/kdf"
)

func NewDeriveCommand(cfg *config.Config) *cobra.Command {
	var (
		saltHex        string
		saltFile       string
		verifyHex      string
		keyringService string
		keyringAccount string
		timeCost       uint32
		memoryKiB      uint32
		parallelism    uint8
		keyLen         uint32
		withMetrics    bool
	)

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a vault key from a passphrase",
		Long: `Derive a vault encryption key with Argon2id and print it as hex.

The passphrase is read from the VAULTKEY_PASSWORD environment variable,
the keyring entry named in the profile, or an interactive prompt, in
that order. Derivation settings come from the profile; individual
settings can be overridden with flags.

Examples:
  # Derive with the salt stored next to the vault
  vaultkey derive --salt-file vault.salt

  # Derive with an explicit salt, for scripting
  export VAULTKEY_PASSWORD=...
  KEY=$(vaultkey derive --salt 00112233445566778899aabbccddeeff)

  # Check a passphrase against a known key without printing anything
  vaultkey derive --salt-file vault.salt --verify "$EXPECTED_KEY_HEX"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			salt, err := loadSalt(saltHex, saltFile)
			if err != nil {
				return err
			}

			params := cfg.Params()
			if cmd.Flags().Changed("time-cost") {
				params.TimeCost = timeCost
			}
			if cmd.Flags().Changed("memory-kib") {
				params.MemoryKiB = memoryKiB
			}
			if cmd.Flags().Changed("parallelism") {
				params.Parallelism = parallelism
			}
			if cmd.Flags().Changed("key-len") {
				params.KeyLen = keyLen
			}

			if keyringService != "" {
				if keyringAccount == "" {
					return vkerrors.UserError{
						Message:    "--keyring-account is required with --keyring-service",
						Suggestion: "Pass both, e.g. --keyring-service vaultkey --keyring-account alice",
					}
				}
				cfg.Profile.Keyring = &config.Keyring{
					Service: keyringService,
					Account: keyringAccount,
				}
			}

			if withMetrics {
				kdf.InitMetrics()
				defer func() {
					if err := kdf.DumpMetrics(os.Stderr); err != nil {
						cfg.Logger.Warn("failed to write derivation metrics: %v", err)
					}
				}()
			}

			sealed, err := readPassphrase(cfg)
			if err != nil {
				return err
			}
			defer sealed.Destroy()

			password, err := unsealPassphrase(sealed)
			if err != nil {
				return vkerrors.Simplify(err)
			}
			defer password.Destroy()

			cfg.Logger.Debug("deriving with %s", params)

			key, err := kdf.DeriveKey(password, salt, params)
			if err != nil {
				return vkerrors.Simplify(err)
			}
			defer key.Free()

			if verifyHex != "" {
				expected, err := hex.DecodeString(verifyHex)
				if err != nil {
					return vkerrors.UserError{
						Message:    "Invalid --verify value",
						Suggestion: "Pass the expected key as lowercase hex",
						Err:        err,
					}
				}
				if len(expected) != key.Len() || subtle.ConstantTimeCompare(expected, key.Bytes()) != 1 {
					return vkerrors.UserError{
						Message:    "Derived key does not match",
						Suggestion: "Check the passphrase, salt, and derivation settings",
					}
				}
				cfg.Logger.Info("Derived key matches")
				return nil
			}

			// Hex to stdout, diagnostics to stderr, so the output can be
			// captured directly.
			fmt.Println(hex.EncodeToString(key.Bytes()))
			return nil
		},
	}

	cmd.Flags().StringVar(&saltHex, "salt", "", "Salt as hex")
	cmd.Flags().StringVar(&saltFile, "salt-file", "", "File containing the raw salt")
	cmd.Flags().StringVar(&verifyHex, "verify", "", "Expected key as hex; exit non-zero on mismatch")
	cmd.Flags().StringVar(&keyringService, "keyring-service", "", "Read the passphrase from this OS keyring service")
	cmd.Flags().StringVar(&keyringAccount, "keyring-account", "", "Keyring account, used with --keyring-service")
	cmd.Flags().Uint32Var(&timeCost, "time-cost", 0, "Override Argon2id passes")
	cmd.Flags().Uint32Var(&memoryKiB, "memory-kib", 0, "Override Argon2id memory in KiB")
	cmd.Flags().Uint8Var(&parallelism, "parallelism", 0, "Override Argon2id lanes")
	cmd.Flags().Uint32Var(&keyLen, "key-len", 0, "Override derived key length in bytes")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Print derivation metrics to stderr in Prometheus text format")
	cmd.MarkFlagsMutuallyExclusive("salt", "salt-file")

	return cmd
}

// loadSalt returns the salt from whichever flag was given.
func loadSalt(saltHex, saltFile string) ([]byte, error) {
	switch {
	case saltHex != "":
		salt, err := hex.DecodeString(saltHex)
		if err != nil {
			return nil, vkerrors.UserError{
				Message:    "Invalid --salt value",
				Suggestion: "Pass the salt as hex, e.g. --salt 00112233445566778899aabbccddeeff",
				Err:        err,
			}
		}
		return salt, nil
	case saltFile != "":
		salt, err := os.ReadFile(saltFile)
		if err != nil {
			return nil, vkerrors.UserError{
				Message:    "Failed to read salt file",
				Details:    err.Error(),
				Suggestion: "Check the path; the file should contain the raw salt bytes",
				Err:        err,
			}
		}
		return salt, nil
	default:
		return nil, vkerrors.UserError{
			Message:    "A salt is required",
			Suggestion: "Pass --salt <hex> or --salt-file <path>",
		}
	}
}
