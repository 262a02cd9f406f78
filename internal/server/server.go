// Package server runs the HTTP and gRPC listeners until ctx is cancelled,
// then shuts both down gracefully.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Config holds the listen addresses. An empty GRPCAddr disables gRPC.
type Config struct {
	HTTPAddr string
	GRPCAddr string
}

// Run serves handler on cfg.HTTPAddr and the health RPC on cfg.GRPCAddr.
// It returns when ctx is done (nil) or a listener fails.
func Run(ctx context.Context, cfg Config, handler http.Handler, store grpc.Pinger) error {
	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	return Serve(ctx, lis, cfg.GRPCAddr, handler, store)
}

// Serve is Run over an already bound HTTP listener.
func Serve(ctx context.Context, lis net.Listener, grpcAddr string, handler http.Handler, store grpc.Pinger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var rpc *grpc.Server
	if grpcAddr != "" {
		rpc = grpc.New(store)
		if _, err := rpc.Listen(grpcAddr); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", "error", err)
	}
	if rpc != nil {
		rpc.Stop()
	}
	return serveErr
}
