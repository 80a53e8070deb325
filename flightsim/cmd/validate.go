package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sarchlab/flightsim/dataset"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <data.csv>",
	Short: "Check a dataset file.",
	Long: "`validate <data.csv>` loads a dataset and prints how many airports " +
		"and flights it has, or the first problem found.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dataset.LoadFile(args[0])
		if err != nil {
			return err
		}

		locations, flights := d.Len()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d airports, %d flights\n",
			args[0], locations, flights)

		return nil
	},
}

var saveSampleCmd = &cobra.Command{
	Use:   "save-sample <out.csv>",
	Short: "Write the built-in sample dataset.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force && fileExists(args[0]) {
			return fmt.Errorf("%s already exists, use --force to overwrite",
				args[0])
		}

		if err := dataset.Sample().SaveFile(args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Sample dataset written to %s\n",
			args[0])

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(saveSampleCmd)
	saveSampleCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
