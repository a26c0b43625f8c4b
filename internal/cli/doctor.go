package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/adapters/sqlite"
	"github.com/example/fieldloop/internal/core/sop"
	"github.com/example/fieldloop/internal/db"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// CheckResult holds the outcome of one doctor check.
type CheckResult struct {
	Name    string
	Status  string // "ok", "warn", "fail"
	Details string
}

// DoctorCmd returns the doctor command
func DoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the fieldloop installation for problems",
		Long: `Run health checks against the fieldloop installation: home directory,
database, work context, and checklist step numbering of current SOPs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkHomeDir(),
				checkDatabase(),
				checkConfig(),
				checkChecklists(),
			}

			failed := 0
			for _, r := range results {
				printCheck(r)
				if r.Status == "fail" {
					failed++
				}
			}

			fmt.Println()
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			fmt.Println("All checks passed.")
			return nil
		},
	}
}

func printCheck(r CheckResult) {
	var marker string
	switch r.Status {
	case "ok":
		marker = color.New(color.FgHiGreen).Sprint("✓")
	case "warn":
		marker = color.New(color.FgHiYellow).Sprint("!")
	default:
		marker = color.New(color.FgHiRed).Sprint("✗")
	}
	fmt.Printf("%s %s", marker, r.Name)
	if r.Details != "" {
		fmt.Printf(": %s", r.Details)
	}
	fmt.Println()
}

func checkHomeDir() CheckResult {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return CheckResult{Name: "home directory", Status: "fail", Details: err.Error()}
	}
	dir := filepath.Join(homeDir, ".fieldloop")
	if _, err := os.Stat(dir); err != nil {
		return CheckResult{Name: "home directory", Status: "fail", Details: fmt.Sprintf("%s missing, run 'fieldloop init'", dir)}
	}
	return CheckResult{Name: "home directory", Status: "ok", Details: dir}
}

func checkDatabase() CheckResult {
	database, err := db.GetDB()
	if err != nil {
		return CheckResult{Name: "database", Status: "fail", Details: err.Error()}
	}
	if err := database.Ping(); err != nil {
		return CheckResult{Name: "database", Status: "fail", Details: err.Error()}
	}
	return CheckResult{Name: "database", Status: "ok"}
}

func checkConfig() CheckResult {
	cwd, err := os.Getwd()
	if err != nil {
		return CheckResult{Name: "work context", Status: "fail", Details: err.Error()}
	}
	path := filepath.Join(cwd, ".fieldloop", "config.json")
	if _, err := os.Stat(path); err != nil {
		return CheckResult{Name: "work context", Status: "warn", Details: "no .fieldloop/config.json in current directory"}
	}
	return CheckResult{Name: "work context", Status: "ok", Details: path}
}

// checkChecklists verifies that every current SOP's checklist steps form a
// contiguous 1..N sequence.
func checkChecklists() CheckResult {
	database, err := db.GetDB()
	if err != nil {
		return CheckResult{Name: "checklist numbering", Status: "fail", Details: err.Error()}
	}

	ctx := context.Background()
	sopRepo := sqlite.NewSopRepository(database)
	checklistRepo := sqlite.NewChecklistRepository(database)

	sops, err := sopRepo.List(ctx, secondary.SopFilters{CurrentOnly: true})
	if err != nil {
		return CheckResult{Name: "checklist numbering", Status: "fail", Details: err.Error()}
	}

	var broken []string
	for _, s := range sops {
		items, err := checklistRepo.GetBySop(ctx, s.ID)
		if err != nil {
			return CheckResult{Name: "checklist numbering", Status: "fail", Details: err.Error()}
		}
		refs := make([]sop.StepRef, len(items))
		for i, item := range items {
			refs[i] = sop.StepRef{ID: item.ID, StepNumber: item.StepNumber}
		}
		if !sop.IsContiguous(refs) {
			broken = append(broken, s.ID)
		}
	}

	if len(broken) > 0 {
		return CheckResult{Name: "checklist numbering", Status: "fail", Details: fmt.Sprintf("gaps or duplicates in %v", broken)}
	}
	return CheckResult{Name: "checklist numbering", Status: "ok", Details: fmt.Sprintf("%d current SOPs checked", len(sops))}
}
