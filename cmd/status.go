package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antibody-tools/oas-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show filter run history",
	Long:  "Displays the run history recorded by previous filter passes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "status: open store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "status: migrate store")
		}

		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(runs) == 0 {
			zap.L().Info("no runs recorded, run 'filter' to process data units")
			return nil
		}

		formatRuns(os.Stdout, runs)
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("limit", 50, "maximum number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

// formatRuns writes a tabular representation of run records to w.
func formatRuns(out io.Writer, runs []store.FileRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tSPECIES\tCHAIN\tISOTYPE\tROWS\tFILTERED\tUNIQUE\tDURATION\tWHEN")
	_, _ = fmt.Fprintln(w, "----\t-------\t-----\t-------\t----\t--------\t------\t--------\t----")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.File,
			r.Species,
			r.Chain,
			r.Isotype,
			r.TotalRows,
			r.Filtered,
			r.Unique,
			r.Duration.Round(time.Millisecond),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
