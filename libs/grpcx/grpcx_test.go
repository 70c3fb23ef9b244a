package grpcx

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
)

func TestJSONCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(JSONCodecName)
	if c == nil {
		t.Fatalf("json codec not registered")
	}
	type msg struct {
		ShopID string `json:"shopId"`
	}
	b, err := c.Marshal(msg{ShopID: "s1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out msg
	if err := c.Unmarshal(b, &out); err != nil || out.ShopID != "s1" {
		t.Fatalf("unmarshal: %v %+v", err, out)
	}
}

func TestServerRequestIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "rid-1"))
	var seen string
	_, err := UnaryServerRequestIDInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"},
		func(ctx context.Context, req any) (any, error) {
			seen = RequestIDFromContext(ctx)
			return nil, nil
		})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen != "rid-1" {
		t.Fatalf("expected rid-1, got %q", seen)
	}
}

func TestClientRequestIDPropagation(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-2")
	var got []string
	err := UnaryClientRequestIDInterceptor()(ctx, "/x/y", nil, nil, nil,
		func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			md, _ := metadata.FromOutgoingContext(ctx)
			got = md.Get(RequestIDMetadataKey)
			return nil
		})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(got) != 1 || got[0] != "rid-2" {
		t.Fatalf("unexpected metadata: %v", got)
	}
}
