package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/labcert/internal/async"
	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/core"
	"github.com/joseph-ayodele/labcert/internal/ingest"
	svc "github.com/joseph-ayodele/labcert/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := core.New(ctx, cfg, core.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to start runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	queue := async.NewProcessorQueue(rt.Processor, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
	)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()

	svc.RegisterComplianceServiceServer(grpcServer, svc.NewComplianceServer(rt.Processor, logger))
	if rt.Reports != nil {
		svc.RegisterReportsServiceServer(grpcServer, svc.NewReportsServer(rt.Reports, logger))
	}
	ingestor := ingest.NewUsecase(rt.Processor, logger, cfg.Worker.Workers)
	svc.RegisterIngestionServiceServer(grpcServer, svc.NewIngestionServer(ingestor, queue, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.Worker.WatchDir != "" {
		if err := watch(ctx, cfg.Worker.WatchDir, queue, logger); err != nil {
			logger.Error("failed to start watcher", "dir", cfg.Worker.WatchDir, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("labcertd listening", "addr", addr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ProcessTimeout+5*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}

// watch feeds extraction files appearing under dir into the queue until ctx is done.
func watch(ctx context.Context, dir string, queue async.Queue, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	logger.Info("watching directory", "dir", dir)
	go func() {
		for {
			select {
			case path, ok := <-events:
				if !ok {
					return
				}
				if err := queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now()}); err != nil {
					logger.Warn("enqueue failed", "path", path, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	}()
	return nil
}
