package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/md-rashed-zaman/agendou/libs/httpx"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/booking"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	bookings *booking.Service
	logger   *slog.Logger
}

var _ BookingServer = (*Server)(nil)

func NewServer(bookings *booking.Service, logger *slog.Logger) *Server {
	return &Server{bookings: bookings, logger: logger}
}

func (s *Server) ListServices(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	services, err := s.bookings.ListServices(ctx)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(map[string]any{"services": services})
}

// GetAvailableSlots expects {"date": "YYYY-MM-DD", "service_id": "..."}.
func (s *Server) GetAvailableSlots(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	slots, err := s.bookings.GetAvailableSlots(ctx, field(in, "date"), field(in, "service_id"))
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(map[string]any{"slots": slots})
}

// CreateAppointment takes the same fields as the public HTTP endpoint.
func (s *Server) CreateAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	appt, err := s.bookings.CreateAppointment(ctx, booking.CreateAppointmentInput{
		ServiceID:   field(in, "service_id"),
		ClientName:  field(in, "client_name"),
		ClientPhone: field(in, "client_phone"),
		Date:        field(in, "date"),
		StartTime:   field(in, "start_time"),
	})
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(map[string]any{"appointment": appt})
}

func field(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

// toStruct goes through the JSON form so wire field names match the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func (s *Server) statusError(ctx context.Context, err error) error {
	var ve *booking.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, booking.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, booking.ErrOutsideWorkingHours):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.Error("grpc request failed", "request_id", httpx.RequestIDFromContext(ctx), "err", err)
		return status.Error(codes.Internal, "internal error")
	}
}
