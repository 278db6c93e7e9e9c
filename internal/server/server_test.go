package server

import (
	"context"
	"encoding/base64"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labcert/internal/async"
	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/extract"
	"github.com/joseph-ayodele/labcert/internal/ingest"
	"github.com/joseph-ayodele/labcert/internal/pipeline"
	repo "github.com/joseph-ayodele/labcert/internal/repository"
)

const smpDoc = `{"content": {
	"product_name": "Skimmed Milk Powder",
	"test_parameter_1_name": "Moisture",
	"observed_result_1": "3.1",
	"specification_1": "Max 4.0%",
	"test_parameter_2_name": "Protein",
	"observed_result_2": "35",
	"specification_2": "Min 34%",
	"test_parameter_3_name": "Milk Fat",
	"observed_result_3": "0.9",
	"specification_3": "Max 1.25%",
	"test_parameter_4_name": "Total Plate Count",
	"observed_result_4": "5000",
	"specification_4": "Max 10000 cfu/g",
	"test_parameter_5_name": "Salmonella",
	"observed_result_5": "Absent",
	"specification_5": "Absent in 25 g"
}}`

type harness struct {
	client  *Client
	health  healthpb.HealthClient
	results chan async.Job
}

func startServer(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	cat, err := catalog.Load(filepath.Join("..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)
	d, err := repo.Open(ctx, repo.Config{DSN: "sqlite::memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(d, nil) })
	require.NoError(t, repo.Migrate(ctx, d))
	reports := repo.NewReportRepository(d, nil)

	proc := pipeline.NewProcessor(nil, extract.NewFileSource(nil), cat, nil, pipeline.WithReports(reports))
	done := make(chan async.Job, 4)
	queue := async.NewProcessorQueue(proc, nil,
		async.WithWorkers(1),
		async.WithResultFunc(func(job async.Job, _ pipeline.Outcome, _ error) { done <- job }),
	)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	RegisterComplianceServiceServer(s, NewComplianceServer(proc, nil))
	RegisterReportsServiceServer(s, NewReportsServer(reports, nil))
	RegisterIngestionServiceServer(s, NewIngestionServer(ingest.NewUsecase(proc, nil, 2), queue, nil))
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
		queue.Shutdown(context.Background())
	})
	return &harness{client: NewClient(conn), health: healthpb.NewHealthClient(conn), results: done}
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func evaluate(t *testing.T, h *harness) *structpb.Struct {
	t.Helper()
	out, err := h.client.Call(context.Background(), ComplianceServiceName, "Evaluate",
		mustStruct(t, map[string]any{"product": "smp", "record_json": smpDoc, "source": "smp_cert.json"}))
	require.NoError(t, err)
	return out
}

func TestHealth(t *testing.T) {
	h := startServer(t)
	resp, err := h.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestEvaluate(t *testing.T) {
	h := startServer(t)
	out := evaluate(t, h).AsMap()

	assert.Equal(t, "smp", out["product"])
	assert.Equal(t, "smp_cert.json", out["source"])
	assert.Equal(t, false, out["non_compliant"])
	assert.Equal(t, true, out["stored"])
	rows, ok := out["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 5)
	for _, r := range rows {
		row := r.(map[string]any)
		assert.Equal(t, "WITHIN_SPEC", row["status"], row["parameter"])
	}
}

func TestEvaluate_StructRecord(t *testing.T) {
	h := startServer(t)
	out, err := h.client.Call(context.Background(), ComplianceServiceName, "Evaluate", mustStruct(t, map[string]any{
		"product": "smp",
		"record": map[string]any{
			"test_parameter_1_name": "Moisture",
			"observed_result_1":     "6.0",
			"specification_1":       "Max 4.0%",
		},
	}))
	require.NoError(t, err)
	m := out.AsMap()
	assert.Equal(t, true, m["non_compliant"])
	assert.Equal(t, "grpc", m["source"])
}

func TestEvaluate_Errors(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	_, err := h.client.Call(ctx, ComplianceServiceName, "Evaluate", mustStruct(t, map[string]any{"product": "smp"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.Call(ctx, ComplianceServiceName, "Evaluate",
		mustStruct(t, map[string]any{"product": "ghee", "record_json": smpDoc}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = h.client.Call(ctx, ComplianceServiceName, "Evaluate",
		mustStruct(t, map[string]any{"record_json": "[1, 2"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestReports(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()
	id := evaluate(t, h).AsMap()["report_id"].(string)

	got, err := h.client.Call(ctx, ReportsServiceName, "GetReport", mustStruct(t, map[string]any{"report_id": id}))
	require.NoError(t, err)
	assert.Len(t, got.AsMap()["rows"], 5)

	list, err := h.client.Call(ctx, ReportsServiceName, "ListReports", mustStruct(t, map[string]any{"product": "smp"}))
	require.NoError(t, err)
	items := list.AsMap()["reports"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].(map[string]any)["report_id"])

	exp, err := h.client.Call(ctx, ReportsServiceName, "ExportReport", mustStruct(t, map[string]any{"report_id": id}))
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(exp.AsMap()["xlsx"].(string))
	require.NoError(t, err)
	assert.Equal(t, "PK", string(raw[:2]))

	summary, err := h.client.Call(ctx, ReportsServiceName, "ExportReport", mustStruct(t, map[string]any{"product": "smp"}))
	require.NoError(t, err)
	assert.Equal(t, "reports_smp.xlsx", summary.AsMap()["filename"])

	_, err = h.client.Call(ctx, ReportsServiceName, "GetReport", mustStruct(t, map[string]any{"report_id": "nope"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "must be a valid UUID")
	_, err = h.client.Call(ctx, ReportsServiceName, "GetReport", mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "is required")
	_, err = h.client.Call(ctx, ReportsServiceName, "GetReport", mustStruct(t, map[string]any{"report_id": uuid.NewString()}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestIngestion(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "smp_cert.json")
	require.NoError(t, os.WriteFile(path, []byte(smpDoc), 0o644))

	one, err := h.client.Call(ctx, IngestionServiceName, "IngestFile", mustStruct(t, map[string]any{"path": path, "product": "smp"}))
	require.NoError(t, err)
	assert.Empty(t, one.AsMap()["error"])
	assert.NotEmpty(t, one.AsMap()["report_id"])

	all, err := h.client.Call(ctx, IngestionServiceName, "IngestDirectory", mustStruct(t, map[string]any{"root_path": dir, "product": "smp"}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.AsMap()["succeeded"])

	_, err = h.client.Call(ctx, IngestionServiceName, "IngestFile", mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	sub, err := h.client.Call(ctx, IngestionServiceName, "Submit", mustStruct(t, map[string]any{"path": path, "product": "smp"}))
	require.NoError(t, err)
	traceID := sub.AsMap()["trace_id"].(string)
	select {
	case job := <-h.results:
		assert.Equal(t, traceID, job.TraceID)
	case <-time.After(5 * time.Second):
		t.Fatal("queued job did not finish")
	}
}
