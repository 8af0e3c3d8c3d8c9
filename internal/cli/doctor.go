package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akarpov/wordgrab/internal/config"
	"github.com/akarpov/wordgrab/internal/provider"
	"github.com/akarpov/wordgrab/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, credentials, and storage",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(_ *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config.yaml (%d platforms, %d excluded)", len(cfg.Platforms), len(cfg.Exclude))

	// Database
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		printCheck(false, "database: %v", err)
		ok = false
	} else {
		defer func() { _ = db.Close() }()
		printCheck(true, "database %s", cfg.Storage.Path)
	}

	// Adapter construction per platform. Failures here are the same
	// fail-soft errors fetch would report.
	manager, initErrs := buildManager(cfg)
	failed := make(map[string]error, len(initErrs))
	for _, e := range initErrs {
		var ie *provider.InitError
		if errors.As(e, &ie) {
			failed[ie.Platform] = ie.Err
		}
	}
	for _, name := range manager.Platforms() {
		printCheck(true, "adapter %s", name)
	}
	for name, err := range failed {
		printCheck(false, "adapter %s: %v", name, err)
		ok = false
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}
