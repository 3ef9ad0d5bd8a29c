package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antibody-tools/oas-cli/internal/filter"
	"github.com/antibody-tools/oas-cli/internal/store"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter annotated data units",
	Long: `Filter every annotated CSV unit in the input directory.

Rows must be productive, complete, in frame, frameshift-free and free of
stop codons. Retained rows get a fresh sequence_id and a sequence_aa built
from the seven region fragments; cleaned CSV and FASTA files are written per
unit, and one metadata record per unit is aggregated across the run.

Use --skip and --limit to partition the sorted file listing across several
manual invocations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "filter"))

		opts, metaPath, metaXLSX, noStore, err := parseFilterOpts(cmd)
		if err != nil {
			return err
		}

		reports, table, err := filter.ProcessDir(opts)
		if err != nil {
			return eris.Wrap(err, "filter")
		}

		if metaPath != "" {
			if err := table.WriteCSV(metaPath); err != nil {
				return eris.Wrap(err, "filter: write metadata")
			}
			log.Info("wrote metadata table", zap.String("path", metaPath), zap.Int("rows", table.Len()))
		}
		if metaXLSX != "" {
			if err := table.WriteXLSX(metaXLSX); err != nil {
				return eris.Wrap(err, "filter: write metadata report")
			}
		}

		if !noStore {
			if err := recordRuns(ctx, reports); err != nil {
				return err
			}
		}

		var retained, total int
		for _, r := range reports {
			retained += r.Retained
			total += r.Total
		}
		fmt.Printf("Filtered %d units: %d of %d rows retained\n", len(reports), retained, total)
		return nil
	},
}

func init() {
	filterCmd.Flags().String("input", "", "input directory of annotated CSV units (default from config)")
	filterCmd.Flags().String("csv-out", "", "output directory for filtered CSV files (default from config)")
	filterCmd.Flags().String("fasta-out", "", "output directory for FASTA files (default from config)")
	filterCmd.Flags().String("ext", "", "input file extension (default from config)")
	filterCmd.Flags().Int("skip", 0, "skip the first N files of the sorted listing")
	filterCmd.Flags().Int("limit", 0, "process at most M files (0 = all)")
	filterCmd.Flags().String("metadata", "", "write the aggregated metadata table to this CSV path")
	filterCmd.Flags().String("metadata-xlsx", "", "write the aggregated metadata table to this XLSX path")
	filterCmd.Flags().Bool("no-store", false, "skip recording run history to the store")
	rootCmd.AddCommand(filterCmd)
}

// parseFilterOpts extracts filter.Options from the cobra command flags,
// falling back to configured defaults.
func parseFilterOpts(cmd *cobra.Command) (filter.Options, string, string, bool, error) {
	input, _ := cmd.Flags().GetString("input")
	csvOut, _ := cmd.Flags().GetString("csv-out")
	fastaOut, _ := cmd.Flags().GetString("fasta-out")
	ext, _ := cmd.Flags().GetString("ext")
	skip, _ := cmd.Flags().GetInt("skip")
	limit, _ := cmd.Flags().GetInt("limit")
	metaPath, _ := cmd.Flags().GetString("metadata")
	metaXLSX, _ := cmd.Flags().GetString("metadata-xlsx")
	noStore, _ := cmd.Flags().GetBool("no-store")

	if input == "" {
		input = cfg.Filter.InputDir
	}
	if csvOut == "" {
		csvOut = cfg.Filter.CSVDir
	}
	if fastaOut == "" {
		fastaOut = cfg.Filter.FastaDir
	}
	if ext == "" {
		ext = cfg.Filter.Extension
	}
	if skip < 0 || limit < 0 {
		return filter.Options{}, "", "", false, eris.New("filter: --skip and --limit must be >= 0")
	}

	return filter.Options{
		InputDir:  input,
		CSVDir:    csvOut,
		FastaDir:  fastaOut,
		Extension: ext,
		Skip:      skip,
		Limit:     limit,
	}, metaPath, metaXLSX, noStore, nil
}

// recordRuns writes one run-history record per processed unit.
func recordRuns(ctx context.Context, reports []filter.FileReport) error {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return eris.Wrap(err, "filter: open store")
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "filter: migrate store")
	}

	for _, r := range reports {
		run := &store.FileRun{
			File:      r.File,
			Species:   r.Metadata.Header.Get("Species"),
			Chain:     r.Metadata.Header.Get("Chain"),
			Isotype:   r.Metadata.Header.Get("Isotype"),
			TotalRows: r.Total,
			Filtered:  r.Retained,
			Unique:    r.Metadata.Unique,
			Duration:  r.Duration,
		}
		if err := st.RecordRun(ctx, run); err != nil {
			return eris.Wrapf(err, "filter: record run %s", r.File)
		}
	}
	return nil
}
