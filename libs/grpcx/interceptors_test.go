package grpcx

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/md-rashed-zaman/agendou/libs/httpx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}

func TestServerRequestIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "req-42"))
	var got string
	_, err := UnaryServerRequestIDInterceptor()(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		got = httpx.RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if got != "req-42" {
		t.Fatalf("expected request id req-42, got %q", got)
	}
}

func TestServerRequestIDGenerated(t *testing.T) {
	var got string
	_, _ = UnaryServerRequestIDInterceptor()(context.Background(), nil, info, func(ctx context.Context, _ any) (any, error) {
		got = httpx.RequestIDFromContext(ctx)
		return nil, nil
	})
	if got == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestRecoverInterceptor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := UnaryServerRecoverInterceptor(logger)(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}

func TestClientRequestIDForwarded(t *testing.T) {
	ctx := httpx.ContextWithRequestID(context.Background(), "req-7")
	var got []string
	err := UnaryClientRequestIDInterceptor()(ctx, "/test.Service/Method", nil, nil, nil,
		func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
			md, _ := metadata.FromOutgoingContext(ctx)
			got = md.Get(RequestIDMetadataKey)
			return nil
		})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(got) != 1 || got[0] != "req-7" {
		t.Fatalf("expected forwarded request id, got %v", got)
	}
}
