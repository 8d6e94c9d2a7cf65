package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultkey/cmd/vaultkey/commands"
	"github.com/systmms/vaultkey/internal/config"
	"github.com/systmms/vaultkey/internal/logging"
	"github.com/systmms/vaultkey/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		profileFile    string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "vaultkey",
		Short: "Derive and protect vault encryption keys",
		Long: `vaultkey turns a passphrase into a vault encryption key with Argon2id,
keeping the passphrase and the derived key in locked memory that never
reaches swap or core dumps.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			// Update config with parsed values
			cfg.Path = profileFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive

			secure.SetLogger(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&profileFile, "profile", "vaultkey.yaml", "Profile file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")

	// Add commands
	rootCmd.AddCommand(
		commands.NewDeriveCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
