package adapters

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	inventoryv1 "backoffice/api/inventory/v1"
	"backoffice/pkg/config"
	grpcpkg "backoffice/pkg/grpc"
	"backoffice/pkg/tls"
)

// GRPCInventoryClient calls the inventory gRPC service
type GRPCInventoryClient struct {
	client inventoryv1.InventoryServiceClient
	conn   *grpc.ClientConn
}

// NewGRPCInventoryClient dials INVENTORY_GRPC_ADDR, with mTLS when GRPC_MTLS_ENABLED is set
func NewGRPCInventoryClient(cfg *config.Config) (*GRPCInventoryClient, error) {
	var opts []grpc.DialOption

	opts = append(opts, grpc.WithUnaryInterceptor(grpcpkg.UnaryClientInterceptor(cfg.GRPCTimeout)))

	if cfg.GRPCMTLSEnabled {
		tlsConfig, err := tls.ClientConfig(tls.Files{
			CertFile: cfg.GRPCClientCert,
			KeyFile:  cfg.GRPCClientKey,
			CAFile:   cfg.TLSCAFile,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.Dial(cfg.InventoryGRPCAddr, opts...)
	if err != nil {
		return nil, err
	}

	return &GRPCInventoryClient{
		client: inventoryv1.NewInventoryServiceClient(conn),
		conn:   conn,
	}, nil
}

// ReconcileProduct triggers a reconciliation and returns the new available quantity
func (c *GRPCInventoryClient) ReconcileProduct(ctx context.Context, productID string) (int64, error) {
	resp, err := c.client.ReconcileProduct(ctx, wrapperspb.String(productID))
	if err != nil {
		return 0, err
	}
	return resp.GetValue(), nil
}

// GetDashboard returns the dashboard with the HTTP response's keys
func (c *GRPCInventoryClient) GetDashboard(ctx context.Context) (map[string]interface{}, error) {
	resp, err := c.client.GetDashboard(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.AsMap(), nil
}

// Close closes the gRPC connection
func (c *GRPCInventoryClient) Close() error {
	return c.conn.Close()
}
