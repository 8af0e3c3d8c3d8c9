package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akarpov/wordgrab/internal/config"
	"github.com/akarpov/wordgrab/internal/provider"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List adapter types and their capabilities",
	RunE:  platformsAction,
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

func platformsAction(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	manager, initErrs := buildManager(cfg)
	failed := make(map[string]error, len(initErrs))
	for _, e := range initErrs {
		var ie *provider.InitError
		if errors.As(e, &ie) {
			failed[ie.Platform] = ie.Err
		}
	}

	excluded := make(map[string]bool, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		excluded[name] = true
	}

	for _, name := range provider.Platforms() {
		adapter, active := manager.Adapter(name)
		switch {
		case active:
			fmt.Printf("%-10s active\n", name)
			fmt.Printf("           source types: %s\n", strings.Join(adapter.SourceTypes(), ", "))
			if modes := adapter.SortModes(); len(modes) > 0 {
				fmt.Printf("           sort modes:   %s\n", strings.Join(modes, ", "))
			}
		case excluded[name]:
			fmt.Printf("%-10s excluded\n", name)
		case failed[name] != nil:
			fmt.Printf("%-10s init failed: %v\n", name, failed[name])
		default:
			fmt.Printf("%-10s not configured\n", name)
		}
	}

	// Configured platforms this build has no adapter for are skipped by the
	// manager; surface them so typos are visible.
	registered := make(map[string]bool)
	for _, name := range provider.Platforms() {
		registered[name] = true
	}
	for name := range cfg.Platforms {
		if !registered[name] {
			fmt.Fprintf(os.Stderr, "note: %q is configured but no adapter exists for it\n", name)
		}
	}

	return nil
}
