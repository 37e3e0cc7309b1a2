package pb

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified name used on the wire.
const ServiceName = "helix.api.Telemetry"

// TelemetryServer is implemented by the gRPC adapter.
type TelemetryServer interface {
	Record(context.Context, *RecordRequest) (*RecordResponse, error)
	Recent(context.Context, *RecentRequest) (*RecentResponse, error)
	GetSettings(context.Context, *GetSettingsRequest) (*SettingsResponse, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*UpdateSettingsResponse, error)
}

func RegisterTelemetryServer(s grpc.ServiceRegistrar, srv TelemetryServer) {
	s.RegisterService(&Telemetry_ServiceDesc, srv)
}

func _Telemetry_Record_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RecordRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TelemetryServer).Record(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Record"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TelemetryServer).Record(ctx, req.(*RecordRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Telemetry_Recent_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RecentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TelemetryServer).Recent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Recent"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TelemetryServer).Recent(ctx, req.(*RecentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Telemetry_GetSettings_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetSettingsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TelemetryServer).GetSettings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetSettings"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TelemetryServer).GetSettings(ctx, req.(*GetSettingsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Telemetry_UpdateSettings_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateSettingsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TelemetryServer).UpdateSettings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/UpdateSettings"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TelemetryServer).UpdateSettings(ctx, req.(*UpdateSettingsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var Telemetry_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TelemetryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Record", Handler: _Telemetry_Record_Handler},
		{MethodName: "Recent", Handler: _Telemetry_Recent_Handler},
		{MethodName: "GetSettings", Handler: _Telemetry_GetSettings_Handler},
		{MethodName: "UpdateSettings", Handler: _Telemetry_UpdateSettings_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "telemetry.proto",
}

// TelemetryClient mirrors the server surface over a ClientConn. The
// wire codec must be forced via grpc.ForceCodec(Codec{}).
type TelemetryClient struct {
	cc *grpc.ClientConn
}

func NewTelemetryClient(cc *grpc.ClientConn) *TelemetryClient {
	return &TelemetryClient{cc: cc}
}

func (c *TelemetryClient) Record(ctx context.Context, in *RecordRequest, opts ...grpc.CallOption) (*RecordResponse, error) {
	out := new(RecordResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Record", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TelemetryClient) Recent(ctx context.Context, in *RecentRequest, opts ...grpc.CallOption) (*RecentResponse, error) {
	out := new(RecentResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Recent", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TelemetryClient) GetSettings(ctx context.Context, in *GetSettingsRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	out := new(SettingsResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetSettings", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TelemetryClient) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*UpdateSettingsResponse, error) {
	out := new(UpdateSettingsResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/UpdateSettings", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
