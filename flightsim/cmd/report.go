package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/structs"
	"github.com/sarchlab/flightsim/datarecording"
	"github.com/sarchlab/flightsim/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type reportOptions struct {
	tables  []string
	origin  string
	orderBy string
	limit   int
	offset  int
}

func newReportCommand() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report <recording>",
		Short: "Print what a recorded run dispatched.",
		Long: "`report <recording>` reads a file written by `run --record` " +
			"and prints its departures, re-timed flights and landings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), args[0], *opts)
		},
	}

	opts.bind(cmd.Flags())

	return cmd
}

func (o *reportOptions) bind(flags *pflag.FlagSet) {
	flags.StringSliceVar(&o.tables, "table", []string{
		datarecording.DepartureTable,
		datarecording.QueueTable,
		datarecording.LandingTable,
	}, "Tables to print")
	flags.StringVar(&o.origin, "origin", "",
		"Only show flights from this location")
	flags.StringVar(&o.orderBy, "order-by", "rowid",
		"Columns to sort by, for example \"DepartedAt DESC\"")
	flags.IntVar(&o.limit, "limit", 20, "Rows per table, 0 for all")
	flags.IntVar(&o.offset, "offset", 0, "Rows to skip, needs --limit")
}

func init() {
	rootCmd.AddCommand(newReportCommand())
}

func (o reportOptions) validate() error {
	if o.limit < 0 || o.offset < 0 {
		return errors.New("--limit and --offset cannot be negative")
	}

	if o.offset > 0 && o.limit == 0 {
		return errors.New("--offset needs --limit")
	}

	return nil
}

func (o reportOptions) params(table string) datarecording.QueryParams {
	params := datarecording.QueryParams{
		OrderBy: o.orderBy,
		Limit:   o.limit,
		Offset:  o.offset,
	}

	if o.origin != "" && table != datarecording.ExecTable {
		params.Where = "Origin = ?"
		params.Args = []any{dataset.NormalizeCode(o.origin)}
	}

	return params
}

func runReport(
	ctx context.Context,
	out io.Writer,
	path string,
	opts reportOptions,
) error {
	if err := opts.validate(); err != nil {
		return err
	}

	reader, err := datarecording.OpenRecording(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	known := reader.ListTables()

	for _, table := range opts.tables {
		if !slices.Contains(known, table) {
			return fmt.Errorf("unknown table %q, expected one of %s",
				table, strings.Join(known, ", "))
		}

		entries, total, err := reader.Query(ctx, table, opts.params(table))
		if err != nil {
			return err
		}

		if err := printEntries(out, table, entries, total); err != nil {
			return err
		}
	}

	return nil
}

func printEntries(out io.Writer, table string, entries []any, total int) error {
	fmt.Fprintf(out, "%s: %d of %d\n", table, len(entries), total)

	if len(entries) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(structs.Names(entries[0]), "\t"))

	for _, e := range entries {
		values := structs.Values(e)

		cells := make([]string, 0, len(values))
		for _, v := range values {
			cells = append(cells, fmt.Sprint(v))
		}

		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	fmt.Fprintln(w)

	return w.Flush()
}
