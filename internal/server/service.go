package server

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Services speak google.protobuf.Struct in both directions, so the wire contract
// is the JSON shape documented on each handler.
const (
	ComplianceServiceName = "labcert.v1.ComplianceService"
	ReportsServiceName    = "labcert.v1.ReportsService"
	IngestionServiceName  = "labcert.v1.IngestionService"
)

type ComplianceServiceServer interface {
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type ReportsServiceServer interface {
	GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ExportReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type IngestionServiceServer interface {
	IngestFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func method(service, name string, call structCall) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ComplianceServiceDesc = grpc.ServiceDesc{
	ServiceName: ComplianceServiceName,
	HandlerType: (*ComplianceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(ComplianceServiceName, "Evaluate", func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ComplianceServiceServer).Evaluate(ctx, req)
		}),
	},
	Metadata: "labcert/v1/compliance",
}

var ReportsServiceDesc = grpc.ServiceDesc{
	ServiceName: ReportsServiceName,
	HandlerType: (*ReportsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(ReportsServiceName, "GetReport", func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ReportsServiceServer).GetReport(ctx, req)
		}),
		method(ReportsServiceName, "ListReports", func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ReportsServiceServer).ListReports(ctx, req)
		}),
		method(ReportsServiceName, "ExportReport", func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ReportsServiceServer).ExportReport(ctx, req)
		}),
	},
	Metadata: "labcert/v1/reports",
}

var IngestionServiceDesc = grpc.ServiceDesc{
	ServiceName: IngestionServiceName,
	HandlerType: (*IngestionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(IngestionServiceName, "IngestFile", func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(IngestionServiceServer).IngestFile(ctx, req)
		}),
		method(IngestionServiceName, "IngestDirectory", func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(IngestionServiceServer).IngestDirectory(ctx, req)
		}),
		method(IngestionServiceName, "Submit", func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(IngestionServiceServer).Submit(ctx, req)
		}),
	},
	Metadata: "labcert/v1/ingestion",
}

func RegisterComplianceServiceServer(s grpc.ServiceRegistrar, srv ComplianceServiceServer) {
	s.RegisterService(&ComplianceServiceDesc, srv)
}

func RegisterReportsServiceServer(s grpc.ServiceRegistrar, srv ReportsServiceServer) {
	s.RegisterService(&ReportsServiceDesc, srv)
}

func RegisterIngestionServiceServer(s grpc.ServiceRegistrar, srv IngestionServiceServer) {
	s.RegisterService(&IngestionServiceDesc, srv)
}

// Client calls any of the services above over cc.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes "<service>/<method>", e.g. Call(ctx, ComplianceServiceName, "Evaluate", req).
func (c *Client) Call(ctx context.Context, service, name string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+service+"/"+name, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func stringField(req *structpb.Struct, key string) string {
	if v, ok := req.GetFields()[key]; ok {
		return strings.TrimSpace(v.GetStringValue())
	}
	return ""
}

func boolField(req *structpb.Struct, key string, def bool) bool {
	v, ok := req.GetFields()[key]
	if !ok {
		return def
	}
	if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
		return def
	}
	return v.GetBoolValue()
}

func intField(req *structpb.Struct, key string, def int) int {
	v, ok := req.GetFields()[key]
	if !ok {
		return def
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return def
	}
	return int(v.GetNumberValue())
}
