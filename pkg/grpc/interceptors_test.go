package grpc

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"
)

const method = "/backoffice.inventory.v1.InventoryService/ReconcileProduct"

func TestUnaryServerInterceptor_MapsDomainErrors(t *testing.T) {
	m := metrics.New()
	interceptor := UnaryServerInterceptor(logger.NewNop(), m, 0)

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			return nil, errors.NewNotFound("Product", "p1")
		})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues(method, codes.NotFound.String())))
}

func TestUnaryServerInterceptor_HidesInternalErrors(t *testing.T) {
	interceptor := UnaryServerInterceptor(logger.NewNop(), nil, 0)

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			return nil, errors.NewInternal("mongo: connection refused", nil)
		})

	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "mongo")
}

func TestUnaryServerInterceptor_PropagatesTraceID(t *testing.T) {
	m := metrics.New()
	interceptor := UnaryServerInterceptor(logger.NewNop(), m, 0)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(TraceIDMetadataKey, "trace-42"))

	var seen string
	resp, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			seen = logger.GetTraceID(ctx)
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "trace-42", seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues(method, codes.OK.String())))
}

func TestUnaryClientInterceptor_ConvertsStatus(t *testing.T) {
	interceptor := UnaryClientInterceptor(0)

	err := interceptor(context.Background(), method, nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return status.Error(codes.InvalidArgument, "Product ID is required")
		})

	assert.True(t, errors.Is(err, errors.CodeValidation))
}
