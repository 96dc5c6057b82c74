package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a thin caller for BookingService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListServices(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListServices, nil)
}

func (c *Client) GetAvailableSlots(ctx context.Context, date, serviceID string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetAvailableSlots, map[string]any{"date": date, "service_id": serviceID})
}

func (c *Client) CreateAppointment(ctx context.Context, serviceID, clientName, clientPhone, date, startTime string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateAppointment, map[string]any{
		"service_id":   serviceID,
		"client_name":  clientName,
		"client_phone": clientPhone,
		"date":         date,
		"start_time":   startTime,
	})
}
