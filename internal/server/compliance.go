package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/extract"
	"github.com/joseph-ayodele/labcert/internal/pipeline"
	"github.com/joseph-ayodele/labcert/internal/record"
	"github.com/joseph-ayodele/labcert/internal/utils"
)

// DocumentProcessor evaluates an already decoded document.
type DocumentProcessor interface {
	Process(ctx context.Context, doc extract.Document, product string) (pipeline.Outcome, error)
}

type ComplianceServer struct {
	proc   DocumentProcessor
	logger *slog.Logger
	now    func() time.Time
}

var _ ComplianceServiceServer = (*ComplianceServer)(nil)

func NewComplianceServer(proc DocumentProcessor, logger *slog.Logger) *ComplianceServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplianceServer{proc: proc, logger: logger, now: time.Now}
}

// Evaluate accepts {"product"?, "source"?, "record": {...}} or {"record_json": "..."}
// and returns the assembled report with "stored" set when it was persisted.
func (s *ComplianceServer) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source := stringField(req, "source")
	if source == "" {
		source = "grpc"
	}
	product := stringField(req, "product")
	requestID := uuid.NewString()
	ctx = common.WithRequestID(ctx, requestID)
	log := s.logger.With("request_id", requestID, "source", source)
	ctx = common.WithLogger(ctx, log)

	var doc extract.Document
	switch {
	case stringField(req, "record_json") != "":
		var err error
		doc, err = extract.Parse(source, []byte(stringField(req, "record_json")))
		if err != nil {
			log.Warn("evaluate.decode.failed", "error", err)
			return nil, common.GRPCError(err)
		}
	case req.GetFields()["record"].GetStructValue() != nil:
		m := req.GetFields()["record"].GetStructValue().AsMap()
		if len(m) == 0 {
			return nil, common.InvalidArgumentError("record is empty")
		}
		doc = extract.NewDocument(source, nil, record.FromMap(m))
	default:
		return nil, common.InvalidArgumentError("record or record_json is required")
	}

	out, err := s.proc.Process(ctx, doc, product)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	resp, err := utils.ToPBReport(utils.ToEntityReport(out.ReportID, doc.Source, doc.SHA256, s.now(), out.Report))
	if err != nil {
		log.Error("evaluate.encode.failed", "error", err)
		return nil, common.InternalError("encode report")
	}
	resp.Fields["stored"] = structpb.NewBoolValue(out.Stored)
	return resp, nil
}
