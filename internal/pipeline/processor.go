package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/entity"
	"github.com/joseph-ayodele/labcert/internal/export"
	"github.com/joseph-ayodele/labcert/internal/extract"
	"github.com/joseph-ayodele/labcert/internal/report"
	"github.com/joseph-ayodele/labcert/internal/repository"
	"github.com/joseph-ayodele/labcert/internal/utils"
)

// Outcome is what one processed document produced.
type Outcome struct {
	ReportID  uuid.UUID
	RequestID string
	Document  extract.Document
	Report    report.Report
	Stored    bool
	XLSXPath  string
}

// Processor coordinates load, product selection, assembly, persistence and export.
type Processor struct {
	Logger    *slog.Logger
	Source    extract.Source
	Catalog   *catalog.Catalog
	Assembler *report.Assembler
	Reports   repository.ReportRepository
	ReportDir string
	now       func() time.Time
}

type Option func(*Processor)

// WithReports persists every assembled report.
func WithReports(r repository.ReportRepository) Option {
	return func(p *Processor) { p.Reports = r }
}

// WithReportDir writes an XLSX workbook per document into dir.
func WithReportDir(dir string) Option {
	return func(p *Processor) { p.ReportDir = dir }
}

func NewProcessor(logger *slog.Logger, src extract.Source, cat *catalog.Catalog, asm *report.Assembler, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if asm == nil {
		asm = report.NewAssembler(nil, nil, logger)
	}
	p := &Processor{Logger: logger, Source: src, Catalog: cat, Assembler: asm, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessFile loads path and processes it. The product pinned in ctx, if any,
// overrides detection.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	doc, err := p.Source.Load(ctx, path)
	if err != nil {
		p.Logger.Error("processor.load.failed", "path", path, "error", err)
		return Outcome{}, common.WrapError(err, "load "+path)
	}
	return p.Process(ctx, doc, common.ProductFromContext(ctx))
}

// Process evaluates an already loaded document. A non-empty product overrides detection.
func (p *Processor) Process(ctx context.Context, doc extract.Document, product string) (Outcome, error) {
	out := Outcome{Document: doc, RequestID: common.RequestIDFromContext(ctx)}
	base := p.Logger
	if out.RequestID != "" {
		base = base.With("request_id", out.RequestID)
	}
	log := common.LoggerFromContext(ctx, base).With("source", doc.Source)

	prod, err := p.SelectProduct(doc, product)
	if err != nil {
		log.Warn("processor.product.unknown",
			"product_name", doc.ProductName,
			"company_name", doc.CompanyName,
			"override", product,
		)
		return out, err
	}
	log = log.With("product", prod.Name())

	out.Report = p.Assembler.Assemble(doc.Record, prod)
	out.ReportID = uuid.New()
	stored := utils.ToEntityReport(out.ReportID, doc.Source, doc.SHA256, p.now(), out.Report)

	if err := ctx.Err(); err != nil {
		return out, err
	}
	if p.Reports != nil {
		if err := p.Reports.Save(ctx, stored); err != nil {
			log.Error("processor.store.failed", "report_id", out.ReportID, "error", err)
			return out, fmt.Errorf("store report: %w", err)
		}
		out.Stored = true
	}
	if p.ReportDir != "" {
		path, err := p.writeXLSX(stored)
		if err != nil {
			log.Error("processor.export.failed", "report_id", out.ReportID, "error", err)
			return out, err
		}
		out.XLSXPath = path
	}

	log.Info("processor.ok",
		"report_id", out.ReportID,
		"rows", len(out.Report.Rows),
		"non_compliant", out.Report.NonCompliant,
		"stored", out.Stored,
		"xlsx", out.XLSXPath,
	)
	return out, nil
}

// SelectProduct resolves the evaluation plan for doc.
func (p *Processor) SelectProduct(doc extract.Document, override string) (*catalog.Product, error) {
	if override = strings.TrimSpace(override); override != "" {
		if prod, ok := p.Catalog.Product(override); ok {
			return prod, nil
		}
		return nil, common.NewAppError("UNKNOWN_PRODUCT",
			fmt.Sprintf("product %q is not in the catalog", override), common.ErrUnknownProduct)
	}
	if prod, ok := p.Catalog.Detect(doc.ProductName, doc.CompanyName); ok {
		return prod, nil
	}
	return nil, common.NewAppError("UNKNOWN_PRODUCT",
		fmt.Sprintf("no catalog product for %q / %q", doc.ProductName, doc.CompanyName), common.ErrUnknownProduct)
}

func (p *Processor) writeXLSX(rep *entity.Report) (string, error) {
	b, err := export.WriteReportXLSX(rep)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.ReportDir, 0o755); err != nil {
		return "", fmt.Errorf("report dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(rep.Source), filepath.Ext(rep.Source))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = rep.Product
	}
	name := fmt.Sprintf("%s_%s_report.xlsx", base, rep.ID.String()[:8])
	path := filepath.Join(p.ReportDir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write xlsx: %w", err)
	}
	return path, nil
}
