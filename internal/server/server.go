// Package server exposes the validation pipeline as a gRPC service alongside
// the standard gRPC health service.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/label-verifier/internal/common"
)

const metadataRequestID = "x-request-id"

// HealthChecker reports whether the OCR engine can serve requests.
type HealthChecker interface {
	Name() string
	Available(ctx context.Context) error
}

// New builds a gRPC server with the label service, health and reflection registered.
func New(svc *LabelService, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(requestIDInterceptor(), logInterceptor(logger)))
	grpcServer := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	RegisterLabelServiceServer(grpcServer, svc)
	reflection.Register(grpcServer)
	return grpcServer, hs
}

// UpdateHealth sets the serving status of the label service and the server
// as a whole from the OCR engine's availability.
func UpdateHealth(ctx context.Context, hs *health.Server, checker HealthChecker, logger *slog.Logger) {
	st := healthpb.HealthCheckResponse_SERVING
	if err := checker.Available(ctx); err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn("ocr engine unavailable", "engine", checker.Name(), "error", err)
	}
	hs.SetServingStatus("", st)
	hs.SetServingStatus(ServiceName, st)
}

// WatchHealth re-checks the OCR engine every interval until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, checker HealthChecker, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		UpdateHealth(checkCtx, hs, checker, logger)
		cancel()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func requestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(metadataRequestID); len(vals) > 0 {
				id = vals[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(metadataRequestID, id))
		return handler(common.WithRequestID(ctx, id), req)
	}
}

func logInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"request_id", common.RequestIDFromContext(ctx),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
