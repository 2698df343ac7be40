package grpc

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestPoolReusesConnection(t *testing.T) {
	p := NewPool()
	defer p.Close()

	c1, err := p.GetConnection("localhost:65530")
	assert.NoError(t, err)
	c2, err := p.GetConnection("localhost:65530")
	assert.NoError(t, err)
	assert.True(t, c1 == c2)

	c3, err := p.GetConnection("localhost:65531")
	assert.NoError(t, err)
	assert.False(t, c1 == c3)
}

func TestPoolReplacesClosedConnection(t *testing.T) {
	p := NewPool()
	defer p.Close()

	c1, err := p.GetConnection("localhost:65532")
	assert.NoError(t, err)
	assert.NoError(t, c1.Close())

	c2, err := p.GetConnection("localhost:65532")
	assert.NoError(t, err)
	assert.False(t, c1 == c2)
}

func TestWithInterceptor(t *testing.T) {
	p := NewPool(WithInterceptor(MetadataInterceptor("x-owner-id", "alice")))
	defer p.Close()
	assert.Equal(t, 1, len(p.interceptors))
}

func TestMetadataInterceptor(t *testing.T) {
	var got metadata.MD
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		got, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}

	err := MetadataInterceptor("x-owner-id", "alice")(context.Background(), "/svc/M", nil, nil, nil, invoker)
	assert.NoError(t, err)
	assert.Equal(t, []string{"alice"}, got.Get("x-owner-id"))
}
