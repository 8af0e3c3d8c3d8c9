// Package cli provides the command-line interface for wordgrab.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "wordgrab",
	Short: "Flatten social-media text into word lists",
	Long:  "wordgrab fetches post titles, comments, and tweets from configured platforms and flattens them into an ordered word list for downstream text analysis.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// .env is optional; credentials may live in the real environment.
		_ = godotenv.Load()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("wordgrab %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".wordgrab", "config directory")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
