package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antibody-tools/oas-cli/internal/fasta"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Pool per-unit FASTA outputs",
	Long: `Concatenate per-unit FASTA files into pooled files.

Each subdirectory of the FASTA directory is treated as one chain and pooled
into <chain>.fasta; the chain-level files are then pooled into one combined
file. With no subdirectories, the FASTA directory itself is pooled straight
into the combined file. Pooling is byte-level concatenation, no parsing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fastaDir, _ := cmd.Flags().GetString("fasta-dir")
		outDir, _ := cmd.Flags().GetString("out")
		combined, _ := cmd.Flags().GetString("combined")

		if fastaDir == "" {
			fastaDir = cfg.Filter.FastaDir
		}

		pooled, err := poolChains(fastaDir, outDir, combined)
		if err != nil {
			return eris.Wrap(err, "pool")
		}

		fmt.Println(poolSummary(pooled, fastaDir, filepath.Join(outDir, combined)))
		return nil
	},
}

func init() {
	poolCmd.Flags().String("fasta-dir", "", "directory of per-unit FASTA outputs (default from config)")
	poolCmd.Flags().String("out", "data/pooled", "output directory for pooled files")
	poolCmd.Flags().String("combined", "combined.fasta", "name of the combined output file")
	rootCmd.AddCommand(poolCmd)
}

// poolSummary describes a completed pooling pass. A flat layout has no
// chain-level files, so the message names the source directory instead.
func poolSummary(pooled []string, fastaDir, combinedPath string) string {
	if len(pooled) == 0 {
		return fmt.Sprintf("Pooled %s into %s", fastaDir, combinedPath)
	}
	return fmt.Sprintf("Pooled %d chain files into %s", len(pooled), combinedPath)
}

// poolChains pools each chain subdirectory of fastaDir into outDir, then
// pools the chain files into the combined file. Returns the chain-level
// paths that went into the combined pool; a flat layout produces none.
func poolChains(fastaDir, outDir, combined string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create output dir %s", outDir)
	}

	entries, err := os.ReadDir(fastaDir)
	if err != nil {
		return nil, eris.Wrapf(err, "read fasta dir %s", fastaDir)
	}

	var chains []string
	for _, e := range entries {
		if e.IsDir() {
			chains = append(chains, e.Name())
		}
	}
	sort.Strings(chains)

	// Flat layout: pool the directory straight into the combined file.
	if len(chains) == 0 {
		dst := filepath.Join(outDir, combined)
		if _, err := fasta.PoolDir(dst, fastaDir); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var pooled []string
	for _, chain := range chains {
		dst := filepath.Join(outDir, chain+".fasta")
		if _, err := fasta.PoolDir(dst, filepath.Join(fastaDir, chain)); err != nil {
			return nil, err
		}
		pooled = append(pooled, dst)
	}

	dst := filepath.Join(outDir, combined)
	if err := fasta.Pool(dst, pooled); err != nil {
		return nil, err
	}

	zap.L().Info("pooled chains", zap.Strings("chains", chains), zap.String("combined", dst))
	return pooled, nil
}
