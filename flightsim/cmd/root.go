// Package cmd provides the command-line interface for flightsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flightsim",
	Short: "Flightsim replays a day of scheduled flights.",
	Long: `Flightsim replays a day of scheduled flights between airports, ` +
		`holding departures so that no two leave the same airport within ` +
		`the spacing time. Datasets are CSV files of Airport and Flight rows.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Functions registered with atexit run before the process
// exits.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
