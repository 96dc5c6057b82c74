// Package grpcapi exposes booking over gRPC for internal callers. Messages are
// google.protobuf.Struct so no generated code is needed on either side.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "agendou.booking.v1.BookingService"

const (
	MethodListServices      = "/" + ServiceName + "/ListServices"
	MethodGetAvailableSlots = "/" + ServiceName + "/GetAvailableSlots"
	MethodCreateAppointment = "/" + ServiceName + "/CreateAppointment"
)

type BookingServer interface {
	ListServices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAvailableSlots(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(BookingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServer), ctx, req.(*structpb.Struct))
		})
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListServices", Handler: unary(MethodListServices, BookingServer.ListServices)},
		{MethodName: "GetAvailableSlots", Handler: unary(MethodGetAvailableSlots, BookingServer.GetAvailableSlots)},
		{MethodName: "CreateAppointment", Handler: unary(MethodCreateAppointment, BookingServer.CreateAppointment)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "agendou/booking/v1/booking.proto",
}

func Register(s grpc.ServiceRegistrar, srv BookingServer) {
	s.RegisterService(&ServiceDesc, srv)
}
