package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labcert/internal/core"
	"github.com/joseph-ayodele/labcert/internal/export"
)

var errNoStore = errors.New("no report store configured (set DB_URL or --db)")

func newReportsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect and export stored reports",
	}

	var (
		product string
		limit   int
		out     string
	)
	withStore := func(cmd *cobra.Command, fn func(ctx context.Context, rt *core.Runtime) error) error {
		ctx, cancel := root.context(cmd)
		defer cancel()
		rt, err := root.runtime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		if rt.Reports == nil {
			return errNoStore
		}
		return fn(ctx, rt)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, rt *core.Runtime) error {
				reps, err := rt.Reports.List(ctx, product, limit)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tPRODUCT\tCREATED\tCOMPLIANT\tSOURCE")
				for _, r := range reps {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
						r.ID, r.Product, r.CreatedAt.Local().Format(time.DateTime), !r.NonCompliant, r.Source)
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().StringVar(&product, "filter-product", "", "only reports for this product")
	list.Flags().IntVarP(&limit, "limit", "n", 50, "maximum reports to list")

	exp := &cobra.Command{
		Use:   "export [report-id]",
		Short: "Write a report, or a summary of recent reports, as XLSX",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			return withStore(cmd, func(ctx context.Context, rt *core.Runtime) error {
				svc := export.NewService(rt.Reports, rt.Logger)
				var (
					data []byte
					err  error
				)
				if len(args) == 1 {
					id, perr := uuid.Parse(args[0])
					if perr != nil {
						return fmt.Errorf("report id: %w", perr)
					}
					data, err = svc.ExportReportXLSX(ctx, id)
				} else {
					data, err = svc.ExportSummaryXLSX(ctx, product, limit)
				}
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
				return nil
			})
		},
	}
	exp.Flags().StringVarP(&out, "out", "o", "", "output XLSX path (required)")
	exp.Flags().StringVar(&product, "filter-product", "", "summary: only reports for this product")
	exp.Flags().IntVarP(&limit, "limit", "n", 50, "summary: maximum reports")

	cmd.AddCommand(list, exp)
	return cmd
}
