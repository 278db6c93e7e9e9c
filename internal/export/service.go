package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/entity"
	"github.com/joseph-ayodele/labcert/internal/repository"
)

const (
	verdictSheet = "Verdicts"
	summarySheet = "Reports"
)

// Service is a tiny façade over the report repository that produces XLSX bytes.
type Service struct {
	reports repository.ReportRepository
	logger  *slog.Logger
}

func NewService(reports repository.ReportRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reports: reports, logger: logger}
}

// ExportReportXLSX loads a stored report and renders its verdict rows.
func (s *Service) ExportReportXLSX(ctx context.Context, id uuid.UUID) ([]byte, error) {
	start := time.Now()
	rep, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	buf, err := WriteReportXLSX(rep)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"report_id", id.String(),
		"rows", len(rep.Verdicts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}

// ExportSummaryXLSX renders one line per stored report, newest first.
func (s *Service) ExportSummaryXLSX(ctx context.Context, product string, limit int) ([]byte, error) {
	start := time.Now()
	reps, err := s.reports.List(ctx, product, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := useSheet(f, summarySheet); err != nil {
		return nil, err
	}
	headers := []string{"Report ID", "Product", "Source", "Created", "Compliant"}
	writeRow(f, summarySheet, 1, toAny(headers)...)
	for i, r := range reps {
		writeRow(f, summarySheet, i+2,
			r.ID.String(), r.Product, r.Source, r.CreatedAt.UTC().Format(time.RFC3339), yesNo(!r.NonCompliant))
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 38)
	_ = f.SetColWidth(summarySheet, "B", "B", 20)
	_ = f.SetColWidth(summarySheet, "C", "C", 60)
	_ = f.SetColWidth(summarySheet, "D", "E", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.summary.ok",
		"product", product,
		"reports", len(reps),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteReportXLSX renders a report's verdict rows as a workbook.
func WriteReportXLSX(rep *entity.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := useSheet(f, verdictSheet); err != nil {
		return nil, err
	}

	headers := []string{"Parameter", "Result", "Spec", "Status", "Reason", "Matched Branch", "Critical", "Note", "Spec Source"}
	writeRow(f, verdictSheet, 1, toAny(headers)...)

	failStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "C00000", Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	passStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "008000"}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	for i, v := range rep.Verdicts {
		row := i + 2
		label := v.Label
		if label == "" {
			label = v.Parameter
		}
		status := constants.Status(v.Status)
		writeRow(f, verdictSheet, row,
			label, v.RawResult, v.RawSpec, status.Label(), truncate(v.Reason, 140),
			v.MatchedBranch, yesNo(v.Critical), v.Note, v.SpecSource)

		cell, _ := excelize.CoordinatesToCellName(4, row)
		style := passStyle
		if !status.Compliant() {
			style = failStyle
		}
		_ = f.SetCellStyle(verdictSheet, cell, cell, style)
	}

	summaryRow := len(rep.Verdicts) + 3
	overall := "Compliant"
	if rep.NonCompliant {
		overall = "Non-compliant"
	}
	writeRow(f, verdictSheet, summaryRow, "Product", rep.Product)
	writeRow(f, verdictSheet, summaryRow+1, "Overall", overall)
	writeRow(f, verdictSheet, summaryRow+2, "Source", rep.Source)

	_ = f.SetColWidth(verdictSheet, "A", "A", 28)
	_ = f.SetColWidth(verdictSheet, "B", "C", 24)
	_ = f.SetColWidth(verdictSheet, "D", "D", 20)
	_ = f.SetColWidth(verdictSheet, "E", "E", 48)
	_ = f.SetColWidth(verdictSheet, "F", "I", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// useSheet renames the default sheet so the workbook has exactly one.
func useSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
