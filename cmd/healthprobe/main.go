package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// healthprobe queries docextractd's gRPC health endpoint and exits 0 only when SERVING.
func main() {
	cfg := common.LoadConfig()
	var (
		addr    = flag.String("addr", cfg.Server.GRPCAddr, "gRPC health address (default GRPC_ADDR)")
		service = flag.String("service", "", "service name; empty checks the server as a whole")
		timeout = flag.Duration("timeout", 3*time.Second, "request timeout")
	)
	flag.Parse()

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "Error: -addr or GRPC_ADDR is required")
		os.Exit(2)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: *service})
	if err != nil {
		fmt.Fprintf(os.Stderr, "health check: %v\n", err)
		os.Exit(1)
	}

	b, err := protojson.Marshal(resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		os.Exit(1)
	}
}
