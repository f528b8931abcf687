package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"
)

const (
	// TraceIDMetadataKey is the metadata key for trace ID
	TraceIDMetadataKey = "x-trace-id"
)

// UnaryServerInterceptor creates a server interceptor for logging, tracing, metrics and error mapping.
// m may be nil.
func UnaryServerInterceptor(log *logger.Logger, m *metrics.Metrics, timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		// Extract or generate trace ID
		traceID := extractTraceID(ctx)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		ctx = logger.WithTraceIDContext(ctx, traceID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(TraceIDMetadataKey, traceID))

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp, err := handler(ctx, req)

		logFields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		}

		if err != nil {
			// Domain errors become status errors; handlers returning a status keep it
			st := toStatus(err)
			m.ObserveGRPC(info.FullMethod, st.Code().String())
			logFields = append(logFields, zap.String("grpc_code", st.Code().String()), zap.Error(err))
			if st.Code() == codes.Internal || st.Code() == codes.Unknown {
				log.WithContext(ctx).Error("grpc request failed", logFields...)
			} else {
				log.WithContext(ctx).Info("grpc request rejected", logFields...)
			}
			return nil, st.Err()
		}

		m.ObserveGRPC(info.FullMethod, codes.OK.String())
		log.WithContext(ctx).Info("grpc request completed", logFields...)
		return resp, nil
	}
}

// UnaryClientInterceptor creates a client interceptor for tracing and timeout
func UnaryClientInterceptor(timeout time.Duration) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		// Propagate trace ID
		traceID := logger.GetTraceID(ctx)
		if traceID != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, TraceIDMetadataKey, traceID)
		}

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		err := invoker(ctx, method, req, reply, cc, opts...)
		if err != nil {
			// Convert gRPC status to domain error
			return errors.FromGRPCStatus(err)
		}

		return nil
	}
}

func toStatus(err error) *status.Status {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		if st, ok := status.FromError(err); ok {
			return st
		}
	}
	st, _ := status.FromError(errors.GRPCStatus(err))
	return st
}

func extractTraceID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(TraceIDMetadataKey)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
