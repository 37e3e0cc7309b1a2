package grpcserver

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"helix/api/pb"
	"helix/domain/settings"
	"helix/domain/telemetry"
	"helix/infra/epochcell"
	"helix/infra/recentlog"
	"helix/service"
)

func startTestServer(t *testing.T) *pb.TelemetryClient {
	t.Helper()

	calls, err := recentlog.New[telemetry.APICall](1<<16, 4)
	if err != nil {
		t.Fatal(err)
	}
	cell := epochcell.New(settings.Default())
	svc := service.NewTelemetryService(calls, cell, nil, nil)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ForceServerCodec(pb.Codec{}))
	pb.RegisterTelemetryServer(srv, NewServer(svc))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(pb.Codec{})),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewTelemetryClient(conn)
}

func TestRecordAndRecentOverWire(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := client.Record(ctx, &pb.RecordRequest{
			Call: &pb.Call{
				Method:       "GET",
				Path:         "/v1/widgets",
				Status:       200,
				LatencyNanos: 1_000_000,
				Bytes:        256,
				TimeUnixNano: int64(i + 1),
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		if !resp.Accepted {
			t.Fatal("record rejected")
		}
	}

	recent, err := client.Recent(ctx, &pb.RecentRequest{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent.Calls) != 3 {
		t.Errorf("expected 3 recent calls, got %d", len(recent.Calls))
	}
	if recent.Calls[0].TimeUnixNano != 3 {
		t.Errorf("expected newest call first, got time %d", recent.Calls[0].TimeUnixNano)
	}
}

func TestSettingsOverWire(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	got, err := client.GetSettings(ctx, &pb.GetSettingsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Settings == nil || got.Settings.SampleEvery != 1 {
		t.Fatalf("expected default settings, got %+v", got.Settings)
	}

	upd, err := client.UpdateSettings(ctx, &pb.UpdateSettingsRequest{
		Settings: &pb.Settings{
			SampleEvery: 5,
			MaxPathLen:  128,
			Broadcast:   true,
			Revision:    "wire-test",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if upd.RetireEpoch == 0 {
		t.Error("expected a nonzero retire epoch")
	}

	got, err = client.GetSettings(ctx, &pb.GetSettingsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Settings.SampleEvery != 5 || got.Settings.Revision != "wire-test" {
		t.Errorf("settings did not round trip: %+v", got.Settings)
	}
}

func TestRejectedUpdateOverWire(t *testing.T) {
	client := startTestServer(t)

	_, err := client.UpdateSettings(context.Background(), &pb.UpdateSettingsRequest{
		Settings: &pb.Settings{SampleEvery: 0, MaxPathLen: 10},
	})
	if err == nil {
		t.Error("expected invalid settings to be rejected")
	}
}
