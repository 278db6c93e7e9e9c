package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate <file>...",
		Short: "Evaluate extraction files and print a verdict per parameter",
		Long: `Evaluate one or more extraction JSON files. The product is detected from the
record's product and company names unless --product is given.

With --strict the command exits non-zero when any document is non-compliant.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("--format must be text or json, got %q", format)
			}
			ctx, cancel := root.context(cmd)
			defer cancel()
			rt, err := root.runtime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			w := cmd.OutOrStdout()
			var failed, nonCompliant int
			for _, path := range args {
				out, err := rt.Processor.ProcessFile(ctx, path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				if out.Report.NonCompliant {
					nonCompliant++
				}
				if format == "json" {
					if err := renderJSON(w, out); err != nil {
						return err
					}
					continue
				}
				renderText(w, out)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents could not be evaluated", failed, len(args))
			}
			if strict && nonCompliant > 0 {
				return fmt.Errorf("%d of %d documents are non-compliant", nonCompliant, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any document is non-compliant")
	return cmd
}
