package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"fieldops.org/internal/auth"
	"fieldops.org/internal/config"
	"fieldops.org/internal/httpapi"
	"fieldops.org/internal/obs"
	"fieldops.org/internal/resource"
	"fieldops.org/internal/stream"
)

var version = "0.3.1"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.PGDSN == "" {
		log.Fatal("missing FIELDOPS_PG_DSN")
	}

	db, err := sql.Open("pgx", cfg.PGDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	codec, err := auth.NewCodec(cfg.AuthSecret)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	authSvc, err := auth.NewService(auth.NewPGStore(db), codec,
		auth.WithTokenTTL(cfg.TokenTTL),
		auth.WithSessionTTL(cfg.SessionTTL),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	registry := resource.NewRegistry()
	if err := resource.NewPGResources(db).RegisterAll(registry); err != nil {
		log.Fatalf("resource registry: %v", err)
	}

	events := stream.New()

	api := httpapi.New(httpapi.Deps{
		Auth:       authSvc,
		Resources:  registry,
		Events:     events,
		ReadyProbe: httpapi.ReadyProbe{DB: db},
		Version:    version,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting fieldops-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// Optional gRPC health listener for infra probes.
	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcSrv = grpc.NewServer()
		healthSrv := health.NewServer()
		healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcSrv, healthSrv)
		log.Printf("Starting gRPC health on %s", cfg.GRPCAddr)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	_ = db.Close()
	log.Println("Stopped")
}
