package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpc_adapter "github.com/JoeShih716/go-expense-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/bootstrap"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-expense-ledger/internal/config"
	pb "github.com/JoeShih716/go-expense-ledger/proto"
)

func main() {
	// 1. 載入設定 (config.yaml + .env + 環境變數)
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// ctx 取消時 LMAX writer 會處理完剩下的單元再停止
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 初始化儲存層 (Driven Adapter)
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Engine, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()
	if err := store.Migrate(ctx); err != nil && !errors.Is(err, bootstrap.ErrNoSchema) {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// 3. 事件發布 (Kafka 或 no-op)
	publisher := bootstrap.OpenPublisher(cfg)
	defer publisher.Close()

	// 4. 初始化 UseCase
	coreUseCase := usecase.NewCoreUseCase(store, usecase.WithPublisher(publisher))

	// 5. 初始化 gRPC Adapter (Driving Adapter)
	grpcServer := grpc_adapter.NewGrpcServer(coreUseCase, cfg.GeneratorConfig())

	// 6. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	s := grpc.NewServer()
	pb.RegisterLedgerServiceServer(s, grpcServer)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)

	// Graceful Shutdown
	go func() {
		log.Printf("Starting gRPC server on %s (store: %s)", cfg.GRPC.Addr, cfg.Store.Engine)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	healthServer.Shutdown()
	s.GracefulStop()
	cancel()
	log.Println("Server exited")
}
