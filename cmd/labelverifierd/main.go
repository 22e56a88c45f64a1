package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"github.com/joseph-ayodele/label-verifier/internal/app"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/httpapi"
	"github.com/joseph-ayodele/label-verifier/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("LABEL_CONFIG"), "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	if err := a.Engine.Available(ctx); err != nil {
		// keep serving; /health and the gRPC health service report the outage
		logger.Warn("ocr engine unavailable at startup", "engine", a.Engine.Name(), "error", err)
	}

	// gRPC server
	// images travel base64 encoded, hence the headroom over the upload limit
	grpcServer, healthServer := server.New(server.NewLabelService(a.Processor, logger), logger,
		grpc.MaxRecvMsgSize(int(cfg.Server.MaxUploadBytes*2)))
	go server.WatchHealth(ctx, healthServer, a.Engine, 30*time.Second, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("grpc listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	// HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(a.Processor, a.Engine, logger, httpapi.Options{MaxUploadBytes: cfg.Server.MaxUploadBytes})
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http listening", "addr", cfg.Server.HTTPAddr, "ocr_engine", a.Engine.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	logger.Info("stopped")
}
