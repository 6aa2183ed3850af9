package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryClientInterceptor logs every outgoing unary gRPC call (the Qdrant client talks gRPC)
// and forwards the request id as x-request-id metadata.
func UnaryClientInterceptor(l *Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		requestID := GetRequestID(ctx)
		if requestID != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", requestID)
		}

		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		st, _ := status.FromError(err)

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("target", cc.Target()),
			zap.Duration("latency", time.Since(start)),
			zap.String("code", st.Code().String()),
		}
		if requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if err != nil {
			fields = append(fields, zap.String("message", st.Message()))
		}

		switch st.Code() {
		case codes.OK:
			l.Debug("gRPC client call", fields...)
		case codes.Canceled, codes.DeadlineExceeded, codes.NotFound:
			l.Warn("gRPC client call", fields...)
		default:
			l.Error("gRPC client call", fields...)
		}

		return err
	}
}
