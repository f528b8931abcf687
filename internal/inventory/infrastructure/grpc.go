package infrastructure

import (
	"context"
	"encoding/json"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	inventoryv1 "backoffice/api/inventory/v1"
	"backoffice/internal/inventory/application"
	"backoffice/pkg/errors"
)

// GRPCServer implements inventoryv1.InventoryServiceServer
type GRPCServer struct {
	dashboard  *application.DashboardUseCase
	reconciler *application.Reconciler
}

var _ inventoryv1.InventoryServiceServer = (*GRPCServer)(nil)

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(dashboard *application.DashboardUseCase, reconciler *application.Reconciler) *GRPCServer {
	return &GRPCServer{dashboard: dashboard, reconciler: reconciler}
}

// ReconcileProduct recomputes a product's available quantity and returns it
func (s *GRPCServer) ReconcileProduct(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	id := req.GetValue()
	if id == "" {
		return nil, errors.NewValidation("Product ID is required", errors.FieldErrors{"id": "id is required"})
	}

	result, err := s.reconciler.ReconcileProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	return wrapperspb.Int64(int64(result.AvailableQuantity)), nil
}

// GetDashboard returns the dashboard as a Struct with the same keys as the HTTP response
func (s *GRPCServer) GetDashboard(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	d, err := s.dashboard.GetDashboard(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(NewDashboardResponse(d))
	if err != nil {
		return nil, errors.NewInternal("failed to encode dashboard", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.NewInternal("failed to encode dashboard", err)
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.NewInternal("failed to encode dashboard", err)
	}
	return out, nil
}
