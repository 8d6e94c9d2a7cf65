package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/vaultkey/internal/config"
	"github.com/systmms/vaultkey/internal/kdf"
	"github.com/systmms/vaultkey/internal/platform"
	"github.com/systmms/vaultkey/internal/secure"
)

// CheckResult holds the outcome of a single doctor check.
type CheckResult struct {
	Name       string
	Status     string
	Message    string
	Suggestion string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check memory protection and derivation settings",
		Long: `Verify that this host can protect vault keys in memory.

This command checks:
- Profile validity
- Page-aligned allocation and memory locking
- Page protection toggling
- The locked-memory limit
- Derivation settings against current recommendations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Logger.Info("Checking vaultkey environment...")
			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("Profile error: %v", err)
				return fmt.Errorf("failed to load profile: %w", err)
			}

			results := []CheckResult{
				{Name: "profile", Status: "healthy", Message: fmt.Sprintf("derivation %s", cfg.Params())},
				checkLockedAllocation(),
				checkProtectionToggle(),
				checkMemlockLimit(cfg.Params()),
				checkParams(cfg.Params()),
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
			failed := 0
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Status, r.Message)
				if r.Status == "error" {
					failed++
				}
				if verbose && r.Suggestion != "" {
					fmt.Fprintf(w, "\t\t💡 %s\n", r.Suggestion)
				}
			}
			w.Flush()

			for _, r := range results {
				switch r.Status {
				case "error":
					cfg.Logger.Error("%s: %s", r.Name, r.Message)
					if r.Suggestion != "" {
						cfg.Logger.Info("💡 %s", r.Suggestion)
					}
				case "warning":
					cfg.Logger.Warn("%s: %s", r.Name, r.Message)
					if r.Suggestion != "" {
						cfg.Logger.Info("💡 %s", r.Suggestion)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			cfg.Logger.Info("All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show suggestions inline")

	return cmd
}

// checkLockedAllocation allocates, locks, and destroys a probe buffer the
// same way a real derivation would.
func checkLockedAllocation() CheckResult {
	probe, err := secure.NewString("doctor-probe")
	if err != nil {
		return CheckResult{
			Name:       "memory locking",
			Status:     "error",
			Message:    err.Error(),
			Suggestion: "Raise the memlock limit ('ulimit -l') or grant CAP_IPC_LOCK",
		}
	}
	probe.Destroy()
	return CheckResult{
		Name:    "memory locking",
		Status:  "healthy",
		Message: fmt.Sprintf("locked a %d-byte page", platform.PageSize()),
	}
}

// checkProtectionToggle verifies read-only parking works for derived keys.
func checkProtectionToggle() CheckResult {
	region, err := secure.NewRegion(make([]byte, 32))
	if err != nil {
		return CheckResult{Name: "page protection", Status: "error", Message: err.Error()}
	}
	defer region.Destroy()

	if err := region.MakeReadOnly(); err != nil {
		return CheckResult{
			Name:       "page protection",
			Status:     "error",
			Message:    err.Error(),
			Suggestion: "Derived keys cannot be parked read-only on this host",
		}
	}
	if err := region.MakeReadWrite(); err != nil {
		return CheckResult{Name: "page protection", Status: "error", Message: err.Error()}
	}
	return CheckResult{Name: "page protection", Status: "healthy", Message: "read-only parking works"}
}

// checkParams compares the profile's settings against current guidance.
// Weak settings are a warning, never an error: existing vaults depend on
// them staying usable.
func checkParams(p kdf.Params) CheckResult {
	rec := kdf.RecommendedParams()
	if p.TimeCost < rec.TimeCost || p.MemoryKiB < rec.MemoryKiB {
		return CheckResult{
			Name:       "derivation settings",
			Status:     "warning",
			Message:    fmt.Sprintf("%s is below current guidance %s", p, rec),
			Suggestion: "New vaults should use the recommended settings; existing vaults keep theirs",
		}
	}
	return CheckResult{Name: "derivation settings", Status: "healthy", Message: p.String()}
}
