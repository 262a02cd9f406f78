package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthReflectsStore(t *testing.T) {
	ctx := context.Background()

	resp, err := NewHealth(pinger{}).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	resp, err = NewHealth(pinger{err: errors.New("down")}).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestServerListenAndStop(t *testing.T) {
	s := New(pinger{})
	addr, err := s.Listen("127.0.0.1:0")
	require.NoError(t, err)
	assert.NotEmpty(t, addr.String())
	s.Stop()
}
