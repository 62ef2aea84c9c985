package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/f1-results-pipeline/pkg/ingest"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Collect the configured seasons and print a per-resource summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			run, err := e.collect(cmd.Context())
			if run != nil {
				writeSummary(cmd.OutOrStdout(), run)
			}
			return err
		},
	}
}

func writeSummary(out io.Writer, run *ingest.Run) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s\t%s\n", run.ID, run.Range)
	fmt.Fprintln(tw, "RESOURCE\tROWS\tSKIPPED\tFAILED YEARS\tPARTIAL YEARS\tCANCELLED")
	for _, rr := range run.Report.Resources {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%v\t%v\t%t\n",
			rr.Resource, rr.Rows, rr.Skipped, rr.FailedYears, rr.PartialYears, rr.Cancelled)
	}
	_ = tw.Flush()
}
