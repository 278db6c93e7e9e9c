package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labcert/internal/ingest"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		dir        string
		workers    int
		skipHidden bool
		strict     bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate every extraction file under a directory",
		Long: `Walk --dir recursively and evaluate each .json extraction file in parallel.
Reports are stored when a report store is configured and written as XLSX when
--report-dir is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				return fmt.Errorf("--dir is required")
			}
			ctx, cancel := root.context(cmd)
			defer cancel()
			rt, err := root.runtime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if workers <= 0 {
				workers = rt.Config.Worker.Workers
			}
			u := ingest.NewUsecase(rt.Processor, rt.Logger, workers)
			results, stats, err := u.IngestDirectory(ctx, dir, skipHidden)
			printResults(cmd.OutOrStdout(), dir, results)
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d matched=%d succeeded=%d non_compliant=%d failed=%d\n",
				stats.Scanned, stats.Matched, stats.Succeeded, stats.NonCompliant, stats.Failed)
			if err != nil {
				return err
			}
			if stats.Failed > 0 {
				return fmt.Errorf("%d documents could not be evaluated", stats.Failed)
			}
			if strict && stats.NonCompliant > 0 {
				return fmt.Errorf("%d documents are non-compliant", stats.NonCompliant)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to scan (required)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel evaluations (default LABCERT_WORKERS)")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip dot files and directories")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any document is non-compliant")
	return cmd
}

func printResults(w io.Writer, root string, results []ingest.IngestionResult) {
	for _, r := range results {
		name := r.SourcePath
		if rel, err := filepath.Rel(root, r.SourcePath); err == nil {
			name = rel
		}
		switch {
		case r.Err != "":
			fmt.Fprintf(w, "ERROR          %s: %s\n", name, r.Err)
		case r.NonCompliant:
			fmt.Fprintf(w, "NON-COMPLIANT  %s [%s]\n", name, r.Product)
		default:
			fmt.Fprintf(w, "COMPLIANT      %s [%s]\n", name, r.Product)
		}
	}
}
