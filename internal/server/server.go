// ============================================================================
// Kaleido - Toy language front end
// ============================================================================
//
// Package:     server
// Description: Parse service: WebSocket endpoint, gRPC ParserService and
//              the /healthz handler
// Author:      anemortalkid
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/pkg/core/cache"
	coreGrpc "github.com/anemortalkid/kaleido/pkg/core/grpc"
	"github.com/anemortalkid/kaleido/pkg/core/health"
	"github.com/anemortalkid/kaleido/pkg/core/logging"
	"github.com/anemortalkid/kaleido/pkg/core/version"
)

// Config holds server configuration
type Config struct {
	Host            string
	HTTPPort        int
	GRPCPort        int
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CacheSize bounds the gRPC result cache (0 disables it)
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		HTTPPort:        8480,
		GRPCPort:        9480,
		ReadTimeout:     30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		CacheSize:       256,
		CacheTTL:        5 * time.Minute,
	}
}

// Server serves the parser over WebSocket and gRPC
type Server struct {
	engine *kaleido.Engine
	grpc   *coreGrpc.Server
	health *health.Registry
	logger *logging.Logger
	config Config
	mux    *http.ServeMux
	cache  *cache.Cache[*kaleido.Result]
}

// New creates a new parse server. A nil logger uses logging.New("server").
func New(cfg Config, engine *kaleido.Engine, logger *logging.Logger) (*Server, error) {
	if engine == nil {
		return nil, mdwerror.New("engine is required").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("server.New")
	}
	if logger == nil {
		logger = logging.New("server")
	}

	// Create gRPC server
	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.GRPCPort
	grpcServer := coreGrpc.NewServer(grpcCfg)

	// Create health registry; the parser check runs a tiny source end to end
	healthRegistry := health.NewRegistry("kaleido", version.Server)
	healthRegistry.Register(health.FuncCheck("parser", func(ctx context.Context) error {
		result, err := engine.ParseString(ctx, "def id(x) x")
		if err != nil {
			return err
		}
		if len(result.Units) != 1 {
			return fmt.Errorf("self-test parsed %d units, want 1", len(result.Units))
		}
		return nil
	}))

	s := &Server{
		engine: engine,
		grpc:   grpcServer,
		health: healthRegistry,
		logger: logger,
		config: cfg,
		mux:    http.NewServeMux(),
	}

	if cfg.CacheSize > 0 {
		s.cache = cache.New[*kaleido.Result](cache.Config{MaxItems: cfg.CacheSize, TTL: cfg.CacheTTL})
	}

	// Register gRPC service
	RegisterParserServer(grpcServer.GRPCServer(), &parserService{engine: engine, results: s.cache})
	grpcServer.SetServingStatus(ParserServiceName, true)

	s.mux.Handle("/ws", NewWebSocketHandler(engine, logger.With("handler", "websocket"), cfg.ReadTimeout))
	s.mux.Handle("/healthz", healthRegistry.Handler(5*time.Second))

	return s, nil
}

// HTTPHandler returns the handler serving /ws and /healthz
func (s *Server) HTTPHandler() http.Handler {
	return s.mux
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// ServeGRPC serves gRPC on lis until the server stops
func (s *Server) ServeGRPC(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Start listens on both ports and serves until ctx is done, then shuts both
// servers down within the shutdown timeout. It returns the first serve error.
func (s *Server) Start(ctx context.Context) error {
	httpAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.HTTPPort)
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return mdwerror.Wrap(err, "failed to listen").
			WithCode(mdwerror.CodeNetworkError).
			WithOperation("server.Start").
			WithDetail("address", httpAddr)
	}

	grpcAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.GRPCPort)
	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		httpLis.Close()
		return mdwerror.Wrap(err, "failed to listen").
			WithCode(mdwerror.CodeNetworkError).
			WithOperation("server.Start").
			WithDetail("address", grpcAddr)
	}

	return s.serve(ctx, httpLis, grpcLis)
}

func (s *Server) serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: s.config.ReadTimeout,
	}

	errs := make(chan error, 2)
	go func() {
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := s.grpc.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errs <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	s.logger.Info("Kaleido server started",
		"http", httpLis.Addr().String(),
		"grpc", grpcLis.Addr().String(),
		"version", version.Server,
	)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
	}

	s.logger.Info("Stopping Kaleido server")
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.grpc.StopWithTimeout(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("http shutdown: %w", err)
	}
	if s.cache != nil {
		hits, misses, _ := s.cache.Stats()
		s.logger.Debug("Result cache closed", "hits", hits, "misses", misses)
		s.cache.Close()
	}
	return serveErr
}
