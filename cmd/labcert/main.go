package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/core"
)

// rootOptions are the flags shared by every subcommand. Non-empty values override
// the environment configuration.
type rootOptions struct {
	catalog        string
	db             string
	reportDir      string
	detectionLimit float64
	keysFile       string
	sheets         map[string]string
	product        string
	verbose        bool
	jsonLogs       bool
	timeout        time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "labcert",
		Short: "Check lab certificate extractions against product specifications",
		Long: `labcert evaluates extracted certificate-of-analysis records against a
catalog of per-product required parameters and reports, per parameter, whether
the observed result is within specification.

Configuration comes from the environment (LABCERT_CATALOG, DB_URL,
LABCERT_REPORT_DIR, ...) and may be overridden with flags.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.catalog, "catalog", "", "catalog YAML (or set LABCERT_CATALOG)")
	pf.StringVar(&opts.db, "db", "", "report store DSN, postgres URL or sqlite:<path> (or set DB_URL)")
	pf.StringVar(&opts.reportDir, "report-dir", "", "write one XLSX report per document into this directory")
	pf.Float64Var(&opts.detectionLimit, "detection-limit", 0, "largest \"<n\" result accepted for zero-tolerance specs (0 = any)")
	pf.StringVar(&opts.keysFile, "keys", "", "legacy required-keys file overriding catalog products")
	pf.StringToStringVar(&opts.sheets, "sheet", nil, "legacy spec sheet per product, product=path (repeatable)")
	pf.StringVarP(&opts.product, "product", "p", "", "catalog product to evaluate against instead of detecting it")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.jsonLogs, "json-logs", false, "emit JSON logs")
	pf.DurationVar(&opts.timeout, "timeout", 0, "overall timeout (0 = none)")

	cmd.AddCommand(
		newEvaluateCmd(opts),
		newBatchCmd(opts),
		newWatchCmd(opts),
		newReportsCmd(opts),
		newCatalogCmd(opts),
		newDBHealthCmd(opts),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	if o.jsonLogs {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func (o *rootOptions) config() *common.Config {
	cfg := common.LoadConfig()
	if o.catalog != "" {
		cfg.Catalog.Path = o.catalog
	}
	if o.db != "" {
		cfg.Database.DSN = o.db
	}
	if o.reportDir != "" {
		cfg.Report.Dir = o.reportDir
	}
	if o.detectionLimit > 0 {
		cfg.Catalog.DetectionLimit = o.detectionLimit
	}
	return cfg
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.product != "" {
		ctx = common.WithProduct(ctx, o.product)
	}
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}

func (o *rootOptions) runtime(ctx context.Context, cmd *cobra.Command) (*core.Runtime, error) {
	logger := o.logger(cmd.ErrOrStderr())
	slog.SetDefault(logger)
	rt, err := core.New(ctx, o.config(), core.Options{
		KeysFile:   o.keysFile,
		SpecSheets: o.sheets,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}
	return rt, nil
}
