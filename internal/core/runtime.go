// Package core wires the catalog, evaluator, store and processor from configuration.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/compliance"
	"github.com/joseph-ayodele/labcert/internal/extract"
	"github.com/joseph-ayodele/labcert/internal/pipeline"
	"github.com/joseph-ayodele/labcert/internal/report"
	"github.com/joseph-ayodele/labcert/internal/repository"
	"github.com/joseph-ayodele/labcert/internal/resolve"
)

// Options holds what the environment config does not: legacy catalog sources.
type Options struct {
	KeysFile   string            // legacy "keys.txt" overriding required keys
	SpecSheets map[string]string // product -> legacy "key | spec" sheet path
	Logger     *slog.Logger
}

// Runtime is a fully wired evaluation stack. DB and Reports are nil when no DB_URL is set.
type Runtime struct {
	Config    *common.Config
	Logger    *slog.Logger
	Catalog   *catalog.Catalog
	Evaluator *compliance.Evaluator
	Assembler *report.Assembler
	DB        *repository.DB
	Reports   repository.ReportRepository
	Processor *pipeline.Processor
}

func New(ctx context.Context, cfg *common.Config, opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cat, err := LoadCatalog(cfg.Catalog.Path, opts.KeysFile, opts.SpecSheets)
	if err != nil {
		logger.Error("catalog.load.failed", "path", cfg.Catalog.Path, "error", err)
		return nil, err
	}
	limit := cfg.Catalog.DetectionLimit
	if limit <= 0 {
		limit = cat.DetectionLimit()
	}
	eval := compliance.NewEvaluator(compliance.WithDetectionLimit(limit), compliance.WithLogger(logger))
	asm := report.NewAssembler(resolve.New(logger), eval, logger)

	rt := &Runtime{Config: cfg, Logger: logger, Catalog: cat, Evaluator: eval, Assembler: asm}
	popts := []pipeline.Option{pipeline.WithReportDir(cfg.Report.Dir)}
	if strings.TrimSpace(cfg.Database.DSN) != "" {
		d, err := ConnectDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		rt.DB = d
		rt.Reports = repository.NewReportRepository(d, logger)
		popts = append(popts, pipeline.WithReports(rt.Reports))
	}
	rt.Processor = pipeline.NewProcessor(logger, extract.NewFileSource(logger), cat, asm, popts...)

	logger.Info("runtime.ready",
		"catalog", cfg.Catalog.Path,
		"products", len(cat.Products()),
		"detection_limit", limit,
		"store", rt.DB != nil,
		"report_dir", cfg.Report.Dir,
	)
	return rt, nil
}

func (r *Runtime) Close() {
	if r.DB != nil {
		repository.Close(r.DB, r.Logger)
	}
}

// LoadCatalog reads the YAML catalog and applies any legacy key list and spec sheets.
func LoadCatalog(path, keysFile string, sheets map[string]string) (*catalog.Catalog, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	if keysFile == "" && len(sheets) == 0 {
		return cat, nil
	}

	var entries []catalog.KeysEntry
	if keysFile != "" {
		f, err := os.Open(keysFile)
		if err != nil {
			return nil, fmt.Errorf("open keys file: %w", err)
		}
		entries, err = catalog.ParseKeysFile(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keysFile, err)
		}
	}
	parsed := make(map[string][]catalog.SpecLine, len(sheets))
	for product, p := range sheets {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open spec sheet: %w", err)
		}
		lines, err := catalog.ParseSpecSheet(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		parsed[product] = lines
	}
	return cat.WithLegacy(entries, parsed)
}

// ConnectDB opens the report store described by cfg and applies migrations.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repository.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.DSN,
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
		DialTimeout:     cfg.DialTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := repository.HealthCheck(ctx, d, cfg.DialTimeout, logger); err != nil {
		repository.Close(d, logger)
		return nil, err
	}
	if err := repository.Migrate(ctx, d); err != nil {
		logger.Error("failed to migrate database", "error", err)
		repository.Close(d, logger)
		return nil, err
	}
	return d, nil
}
