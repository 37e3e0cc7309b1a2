package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"helix/api/grpcserver"
	"helix/api/pb"
	"helix/api/wstail"
	"helix/config"
	"helix/domain/telemetry"
	"helix/infra/archive"
	"helix/infra/epochcell"
	"helix/infra/journal"
	"helix/infra/kafka"
	"helix/infra/recentlog"
	"helix/jobs/broadcaster"
	"helix/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to ./helix.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// ---------------- Journal ----------------

	current, _, err := service.ReplaySettings(cfg.JournalDir)
	if err != nil {
		log.Fatalf("settings replay failed: %v", err)
	}

	jnl, err := journal.Open(journal.Config{Dir: cfg.JournalDir})
	if err != nil {
		log.Fatalf("journal init failed: %v", err)
	}
	defer jnl.Close()

	// ---------------- Outbox ----------------

	outbox, err := archive.Open(cfg.OutboxDir)
	if err != nil {
		log.Fatalf("outbox init failed: %v", err)
	}
	defer outbox.Close()

	// ---------------- Core primitives ----------------

	calls, err := recentlog.New[telemetry.APICall](cfg.MemoryThreshold, cfg.HistoryCapacity)
	if err != nil {
		log.Fatalf("recent-call log init failed: %v", err)
	}

	cell := epochcell.New(current)

	// ---------------- Service ----------------

	svc := service.NewTelemetryService(calls, cell, jnl, outbox)

	// ---------------- Background Jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var summaries *kafka.Producer
	if cfg.BroadcastEnabled {
		summaries = kafka.NewProducer(cfg.KafkaBrokers, cfg.SummaryTopic)
		defer summaries.Close()

		bc, err := broadcaster.New(outbox, cfg.KafkaBrokers, cfg.EventsTopic, cfg.BroadcastInterval)
		if err != nil {
			log.Fatalf("broadcaster init failed: %v", err)
		}
		defer bc.Close()
		bc.Start(ctx)
	}
	svc.StartSummaryJob(ctx, summaries, cfg.SummaryInterval)

	// ---------------- Websocket tail ----------------

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/tail", wstail.NewHandler(svc, time.Second))
		if err := http.ListenAndServe(cfg.TailAddr, mux); err != nil {
			log.Printf("tail listener exited: %v", err)
		}
	}()

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer(grpc.ForceServerCodec(pb.Codec{}))
	pb.RegisterTelemetryServer(grpcSrv, grpcserver.NewServer(svc))

	fmt.Printf("helix substrate running on %s (tail on %s)\n", cfg.GRPCAddr, cfg.TailAddr)

	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("gRPC server exited: %v", err)
	}
}
