package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/export"
	"github.com/joseph-ayodele/labcert/internal/repository"
	"github.com/joseph-ayodele/labcert/internal/utils"
)

type ReportsServer struct {
	reports repository.ReportRepository
	export  *export.Service
	logger  *slog.Logger
}

var _ ReportsServiceServer = (*ReportsServer)(nil)

func NewReportsServer(reports repository.ReportRepository, logger *slog.Logger) *ReportsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsServer{reports: reports, export: export.NewService(reports, logger), logger: logger}
}

func parseReportID(req *structpb.Struct) (uuid.UUID, error) {
	raw := stringField(req, "report_id")
	v := common.NewValidator().Field("report_id", raw, common.Required, common.UUID)
	if v.HasErrors() {
		return uuid.Nil, common.GRPCError(v.Error())
	}
	return uuid.MustParse(raw), nil
}

// GetReport returns a stored report with its verdict rows.
func (s *ReportsServer) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseReportID(req)
	if err != nil {
		return nil, err
	}
	rep, err := s.reports.Get(ctx, id)
	if err != nil {
		s.logger.Warn("get report failed", "report_id", id, "error", err)
		return nil, common.GRPCError(err)
	}
	out, err := utils.ToPBReport(rep)
	if err != nil {
		return nil, common.InternalError("encode report")
	}
	return out, nil
}

// ListReports returns report headers, newest first: {"product"?, "limit"?}.
func (s *ReportsServer) ListReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	product := stringField(req, "product")
	limit := intField(req, "limit", 0)
	if limit < 0 {
		return nil, common.InvalidArgumentError("limit must be non-negative")
	}
	reps, err := s.reports.List(ctx, product, limit)
	if err != nil {
		s.logger.Warn("list reports failed", "product", product, "error", err)
		return nil, common.GRPCError(err)
	}
	items := make([]any, 0, len(reps))
	for _, r := range reps {
		pb, err := utils.ToPBReport(r)
		if err != nil {
			return nil, common.InternalError("encode report")
		}
		delete(pb.Fields, "rows")
		items = append(items, pb.AsMap())
	}
	return structpb.NewStruct(map[string]any{"reports": items})
}
