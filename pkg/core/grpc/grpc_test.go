package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
	"github.com/anemortalkid/kaleido/pkg/core/logging"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"invalid input", mdwerror.New("bad").WithCode(mdwerror.CodeInvalidInput), codes.InvalidArgument},
		{"invalid number", mdwerror.New("bad").WithCode(mdwerror.CodeInvalidNumber), codes.InvalidArgument},
		{"too many errors", mdwerror.New("stop").WithCode(mdwerror.CodeTooManyErrors), codes.ResourceExhausted},
		{"not found", mdwerror.New("gone").WithCode(mdwerror.CodeNotFound), codes.NotFound},
		{"canceled", context.Canceled, codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"plain", errors.New("boom"), codes.Internal},
		{"status passthrough", status.Error(codes.Unauthenticated, "no"), codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := status.Code(ToStatus(tt.err))
			if got != tt.want {
				t.Errorf("ToStatus(%v) code = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if ToStatus(nil) != nil {
		t.Error("ToStatus(nil) should be nil")
	}
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	if cfg.Port != 9480 {
		t.Errorf("Port = %d, want 9480", cfg.Port)
	}
	if !cfg.EnableHealth || !cfg.EnableReflection {
		t.Errorf("health/reflection should be enabled by default: %+v", cfg)
	}
}

func startBufServer(t *testing.T, cfg ServerConfig) (*Server, *grpc.ClientConn) {
	t.Helper()
	SetLogger(logging.Wrap(mdwlog.NewNop(), "grpc-test"))

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(cfg)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := Dial(DefaultClientConfig("passthrough:///bufnet"),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return srv, conn
}

func TestServer_Health(t *testing.T) {
	srv, conn := startBufServer(t, DefaultServerConfig())
	srv.SetServingStatus("kaleido.v1.ParserService", true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "kaleido.v1.ParserService"})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Status = %v, want SERVING", resp.Status)
	}

	srv.SetServingStatus("kaleido.v1.ParserService", false)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "kaleido.v1.ParserService"})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Status = %v, want NOT_SERVING", resp.Status)
	}
}

func TestServer_RequestIDHeader(t *testing.T) {
	_, conn := startBufServer(t, DefaultServerConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = WithRequestID(ctx, "req-42")

	var header metadata.MD
	client := healthpb.NewHealthClient(conn)
	if _, err := client.Check(ctx, &healthpb.HealthCheckRequest{}, grpc.Header(&header)); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if got := header.Get(RequestIDHeader); len(got) != 1 || got[0] != "req-42" {
		t.Errorf("response %s = %v, want [req-42]", RequestIDHeader, got)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	SetLogger(logging.Wrap(mdwlog.NewNop(), "grpc-test"))
	interceptor := RecoveryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test/Panic"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Errorf("recovered error code = %v, want Internal", status.Code(err))
	}
}

func TestGetRequestID(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "abc"))
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q, want abc", got)
	}

	if got := GetRequestID(WithRequestID(ctx, "xyz")); got != "xyz" {
		t.Errorf("GetRequestID() = %q, want xyz", got)
	}
}
