// Package inventoryv1 holds the InventoryService gRPC contract described in inventory.proto.
// Requests and responses are protobuf well-known types, so only the service plumbing lives here.
package inventoryv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified service name
const ServiceName = "backoffice.inventory.v1.InventoryService"

// Full method names
const (
	ReconcileProductMethod = "/" + ServiceName + "/ReconcileProduct"
	GetDashboardMethod     = "/" + ServiceName + "/GetDashboard"
)

// InventoryServiceServer is the server API for InventoryService
type InventoryServiceServer interface {
	ReconcileProduct(ctx context.Context, productID *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	GetDashboard(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterInventoryServiceServer registers srv on s
func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}

// InventoryServiceDesc is the grpc.ServiceDesc for InventoryService
var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReconcileProduct", Handler: reconcileProductHandler},
		{MethodName: "GetDashboard", Handler: getDashboardHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/inventory/v1/inventory.proto",
}

func reconcileProductHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).ReconcileProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReconcileProductMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InventoryServiceServer).ReconcileProduct(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getDashboardHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).GetDashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetDashboardMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InventoryServiceServer).GetDashboard(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// InventoryServiceClient is the client API for InventoryService
type InventoryServiceClient interface {
	ReconcileProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	GetDashboard(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewInventoryServiceClient creates a client on an established connection
func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc: cc}
}

func (c *inventoryServiceClient) ReconcileProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, ReconcileProductMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) GetDashboard(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetDashboardMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
