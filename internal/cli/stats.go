package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akarpov/wordgrab/internal/config"
	"github.com/akarpov/wordgrab/internal/store"
)

var (
	statsSince string
	statsLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fetch-run analytics",
	RunE:  statsAction,
}

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "30d", "time window (e.g. 7d, 48h)")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "recent runs to list")
	rootCmd.AddCommand(statsCmd)
}

func statsAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	sinceDur, err := parseDuration(statsSince)
	if err != nil {
		return fmt.Errorf("parse --since: %w", err)
	}

	ctx := cmd.Context()

	stats, err := db.GetPlatformStats(ctx, time.Now().Add(-sinceDur))
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	if len(stats) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded. Run 'wordgrab fetch' first.")
		return nil
	}

	fmt.Printf("wordgrab stats — last %s\n\n", formatStatsDuration(sinceDur))
	fmt.Printf("  %-10s  %5s  %6s  %8s  %8s\n", "Platform", "Runs", "Failed", "Words", "Avg ms")
	for _, ps := range stats {
		fmt.Printf("  %-10s  %5d  %6d  %8d  %8.0f\n", ps.Platform, ps.Runs, ps.Failed, ps.Words, ps.AvgMillis)
	}

	runs, err := db.GetRecentRuns(ctx, statsLimit)
	if err != nil {
		return fmt.Errorf("get recent runs: %w", err)
	}
	if len(runs) > 0 {
		fmt.Printf("\n--- Recent Runs ---\n\n")
		for _, r := range runs {
			status := r.Status
			if r.Status == "error" {
				status = "error: " + r.Error
			}
			fmt.Printf("  %s  %s/%s %q  %d words  %s  %s\n",
				r.StartedAt.Format("2006-01-02 15:04"),
				r.Platform, r.SourceType, r.SourceVal, r.Words, r.Duration.Round(time.Millisecond), status)
		}
	}

	return nil
}

// parseDuration handles both Go durations and "Nd" day notation.
func parseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatStatsDuration(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%d days", hours/24)
	}
	return fmt.Sprintf("%dh", hours)
}
