package server

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labcert/internal/common"
)

// ExportReport renders a workbook. With "report_id" it exports that report's verdicts;
// otherwise a summary of recent reports filtered by "product" and "limit".
// The workbook is returned base64 encoded under "xlsx".
func (s *ReportsServer) ExportReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		data     []byte
		filename string
		err      error
	)
	if stringField(req, "report_id") != "" {
		id, perr := parseReportID(req)
		if perr != nil {
			return nil, perr
		}
		data, err = s.export.ExportReportXLSX(ctx, id)
		filename = fmt.Sprintf("report_%s.xlsx", id.String()[:8])
	} else {
		product := stringField(req, "product")
		data, err = s.export.ExportSummaryXLSX(ctx, product, intField(req, "limit", 0))
		filename = "reports_summary.xlsx"
		if product != "" {
			filename = fmt.Sprintf("reports_%s.xlsx", product)
		}
	}
	if err != nil {
		s.logger.Error("export.xlsx.failed", "error", err)
		return nil, common.GRPCError(err)
	}
	return structpb.NewStruct(map[string]any{
		"filename": filename,
		"xlsx":     base64.StdEncoding.EncodeToString(data),
	})
}
