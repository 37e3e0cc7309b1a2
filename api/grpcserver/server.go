package grpcserver

import (
	"context"
	"log"
	"time"

	"helix/api/pb"
	"helix/domain/settings"
	"helix/domain/telemetry"
	"helix/service"
)

// Server adapts TelemetryService to gRPC.
type Server struct {
	svc *service.TelemetryService
}

func NewServer(svc *service.TelemetryService) *Server {
	return &Server{svc: svc}
}

// -------------------- Commands --------------------

func (s *Server) Record(
	ctx context.Context,
	req *pb.RecordRequest,
) (*pb.RecordResponse, error) {
	if req.Call == nil {
		return &pb.RecordResponse{Accepted: false}, nil
	}

	s.svc.RecordCall(telemetry.APICall{
		Method:  req.Call.Method,
		Path:    req.Call.Path,
		Status:  int(req.Call.Status),
		Latency: time.Duration(req.Call.LatencyNanos),
		Bytes:   req.Call.Bytes,
		Time:    req.Call.TimeUnixNano,
	})

	return &pb.RecordResponse{Accepted: true}, nil
}

func (s *Server) UpdateSettings(
	ctx context.Context,
	req *pb.UpdateSettingsRequest,
) (*pb.UpdateSettingsResponse, error) {
	next := toSettings(req.Settings)

	epoch, err := s.svc.UpdateSettings(next)
	if err != nil {
		return nil, err
	}

	log.Printf(
		"[gRPC] UpdateSettings revision=%q sampleEvery=%d epoch=%d",
		next.Revision, next.SampleEvery, epoch,
	)

	return &pb.UpdateSettingsResponse{RetireEpoch: epoch}, nil
}

// -------------------- Queries --------------------

func (s *Server) Recent(
	ctx context.Context,
	req *pb.RecentRequest,
) (*pb.RecentResponse, error) {
	limit := int(req.Limit)
	if limit <= 0 {
		limit = 100
	}

	calls := s.svc.Recent(limit)
	resp := &pb.RecentResponse{
		Calls: make([]*pb.Call, 0, len(calls)),
	}
	for _, c := range calls {
		resp.Calls = append(resp.Calls, &pb.Call{
			Method:       c.Method,
			Path:         c.Path,
			Status:       int32(c.Status),
			LatencyNanos: int64(c.Latency),
			Bytes:        c.Bytes,
			TimeUnixNano: c.Time,
		})
	}
	return resp, nil
}

func (s *Server) GetSettings(
	ctx context.Context,
	req *pb.GetSettingsRequest,
) (*pb.SettingsResponse, error) {
	cur := s.svc.Settings()
	return &pb.SettingsResponse{Settings: fromSettings(&cur)}, nil
}

// -------------------- Converters --------------------

func toSettings(m *pb.Settings) *settings.Settings {
	if m == nil {
		return settings.Default()
	}
	return &settings.Settings{
		SampleEvery: m.SampleEvery,
		MaxPathLen:  m.MaxPathLen,
		Broadcast:   m.Broadcast,
		Revision:    m.Revision,
	}
}

func fromSettings(s *settings.Settings) *pb.Settings {
	return &pb.Settings{
		SampleEvery: s.SampleEvery,
		MaxPathLen:  s.MaxPathLen,
		Broadcast:   s.Broadcast,
		Revision:    s.Revision,
	}
}
