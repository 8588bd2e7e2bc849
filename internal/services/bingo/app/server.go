// Package app wires the bingo catalog runtime: catalog loading, hot reload,
// and the gRPC health lifecycle.
//
// Catalog contents are not served over the wire. The Holder is the handle
// in-process board generators read the current catalog from.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/louisbranch/landstalker-bingo/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name reported while a catalog is
// loaded.
const HealthService = "bingo.catalog"

// Server hosts the catalog holder, the optional file watcher, and gRPC health.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	holder     *Holder
	watcher    *Watcher
}

// New loads the catalog and prepares a server listening on cfg.Addr.
func New(ctx context.Context, cfg RuntimeConfig) (*Server, error) {
	catalog, source, err := LoadCatalog(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	holder, err := NewHolder(catalog)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded catalog %s from %s (%d pools, board %dx%d)",
		catalog.ID(), source, len(catalog.Pools()), catalog.BoardSize(), catalog.BoardSize())
	if audit := catalog.Audit(); !audit.Empty() {
		log.Printf("catalog %s audit: unreferenced pools %v, unassigned slots %v",
			catalog.ID(), audit.UnreferencedPools, audit.UnassignedSlots)
	}

	var watcher *Watcher
	if cfg.Watch {
		if source != SourceFile {
			return nil, errors.New("catalog watch requires a catalog path")
		}
		watcher, err = NewWatcher(cfg.CatalogPath, holder, cfg.ReloadDebounce, catalogOptions(cfg)...)
		if err != nil {
			return nil, err
		}
	}

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = ":0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		holder:     holder,
		watcher:    watcher,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Holder returns the catalog holder board generators load from.
func (s *Server) Holder() *Holder {
	if s == nil {
		return nil
	}
	return s.holder
}

// Watcher returns the file watcher, or nil when reload is disabled.
func (s *Server) Watcher() *Watcher {
	if s == nil {
		return nil
	}
	return s.watcher
}

// Run creates and serves a catalog server until context cancellation.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs gRPC health and the watcher until ctx is cancelled or one of
// them fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("bingo catalog server listening at %v", s.listener.Addr())
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := s.grpcServer.Serve(s.listener)
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	})
	if s.watcher != nil {
		group.Go(func() error {
			return s.watcher.Run(groupCtx)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		s.health.Shutdown()
		s.stopGracefully(timeouts.Shutdown)
		return nil
	})
	return group.Wait()
}

// stopGracefully drains the gRPC server, falling back to a hard stop when
// health watch streams keep it open past timeout.
func (s *Server) stopGracefully(timeout time.Duration) {
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-stopped:
	case <-timer.C:
		log.Printf("graceful stop timed out after %v, forcing stop", timeout)
		s.grpcServer.Stop()
		<-stopped
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
