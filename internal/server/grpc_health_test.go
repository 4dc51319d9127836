package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type flakyDB struct{ err error }

func (f *flakyDB) HealthCheck(context.Context, time.Duration) error { return f.err }

func TestHealthServerTracksStore(t *testing.T) {
	db := &flakyDB{}
	hs := NewHealthServer(db, nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = hs.GRPC.Serve(lis) }()
	t.Cleanup(hs.GRPC.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func(want healthpb.HealthCheckResponse_ServingStatus) {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if resp.GetStatus() != want {
			t.Fatalf("status = %v, want %v", resp.GetStatus(), want)
		}
	}

	check(healthpb.HealthCheckResponse_NOT_SERVING)

	if st := hs.Check(context.Background()); st != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("Check = %v", st)
	}
	check(healthpb.HealthCheckResponse_SERVING)

	db.err = errors.New("connection refused")
	hs.Check(context.Background())
	check(healthpb.HealthCheckResponse_NOT_SERVING)
}
