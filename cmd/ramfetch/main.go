// Command ramfetch enumerates the character and location collections through
// either transport and exports them to CSV, or compares the transports.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ram-tools/ram-client/pkg/config"
	"github.com/ram-tools/ram-client/pkg/logging"
)

var (
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "ramfetch",
		Short: "Fetch paginated collections from the Rick and Morty API",
		Long: `ramfetch enumerates remote collections page by page, surviving
transient network failures and rate limits, and exports the normalized
records to CSV files.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.FromEnv()
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.LogLevel),
				Pretty: cfg.LogPretty,
				Output: os.Stderr,
			})
		},
	}
)

func main() {
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newCompareCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
