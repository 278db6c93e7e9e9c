package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labcert/internal/async"
	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/ingest"
)

type IngestionServer struct {
	ingestor ingest.Ingestor
	queue    async.Queue
	logger   *slog.Logger
}

var _ IngestionServiceServer = (*IngestionServer)(nil)

// NewIngestionServer serves synchronous ingest through ing. Submit needs a queue;
// with a nil queue it reports FailedPrecondition.
func NewIngestionServer(ing ingest.Ingestor, queue async.Queue, logger *slog.Logger) *IngestionServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionServer{ingestor: ing, queue: queue, logger: logger}
}

func resultMap(r ingest.IngestionResult) map[string]any {
	m := map[string]any{
		"source_path":   r.SourcePath,
		"product":       r.Product,
		"non_compliant": r.NonCompliant,
		"xlsx_path":     r.XLSXPath,
		"elapsed_ms":    r.Elapsed.Milliseconds(),
		"error":         r.Err,
	}
	if r.ReportID != uuid.Nil {
		m["report_id"] = r.ReportID.String()
	}
	return m
}

// IngestFile evaluates {"path", "product"?} synchronously. A failed evaluation is
// reported in "error" rather than as an RPC failure.
func (s *IngestionServer) IngestFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := stringField(req, "path")
	if path == "" {
		s.logger.Error("ingest request missing path")
		return nil, common.InvalidArgumentError("path is required")
	}
	if product := stringField(req, "product"); product != "" {
		ctx = common.WithProduct(ctx, product)
	}
	s.logger.Info("starting file ingest", "path", path)
	r, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		s.logger.Warn("file ingest failed", "path", path, "error", err)
	}
	return structpb.NewStruct(resultMap(r))
}

// IngestDirectory evaluates every extraction file under {"root_path"}.
// "skip_hidden" defaults to true.
func (s *IngestionServer) IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	root := stringField(req, "root_path")
	if root == "" {
		s.logger.Error("ingest directory request missing root_path")
		return nil, common.InvalidArgumentError("root_path is required")
	}
	skipHidden := boolField(req, "skip_hidden", true)
	if product := stringField(req, "product"); product != "" {
		ctx = common.WithProduct(ctx, product)
	}

	s.logger.Info("starting directory ingest", "root", root, "skip_hidden", skipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("ingest directory: %v", err)
	}
	items := make([]any, 0, len(results))
	for _, r := range results {
		items = append(items, resultMap(r))
	}
	return structpb.NewStruct(map[string]any{
		"scanned":       stats.Scanned,
		"matched":       stats.Matched,
		"succeeded":     stats.Succeeded,
		"non_compliant": stats.NonCompliant,
		"failed":        stats.Failed,
		"results":       items,
	})
}

// Submit queues {"path", "product"?} for background evaluation and returns its trace id.
func (s *IngestionServer) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.queue == nil {
		return nil, status.Error(codes.FailedPrecondition, "background processing is disabled")
	}
	path := stringField(req, "path")
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	job := async.Job{
		Path:        path,
		Product:     stringField(req, "product"),
		SubmittedAt: time.Now(),
		TraceID:     uuid.NewString(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Warn("submit failed", "path", path, "error", err)
		return nil, common.InternalErrorf("enqueue: %v", err)
	}
	return structpb.NewStruct(map[string]any{"queued": true, "trace_id": job.TraceID})
}
