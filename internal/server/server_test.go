package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/foundation/kaleido/lexer"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
	"github.com/anemortalkid/kaleido/internal/emit"
	coreGrpc "github.com/anemortalkid/kaleido/pkg/core/grpc"
	"github.com/anemortalkid/kaleido/pkg/core/logging"
)

const source = "def fib(n) if n < 3 then 1 else fib(n-1)+fib(n-2); extern sin(x); ) for i = 1, i < 5, 2 i"

func newTestServer(t *testing.T, opts kaleido.Options) *Server {
	t.Helper()
	opts.Logger = mdwlog.NewNop()
	engine, err := kaleido.New(opts)
	if err != nil {
		t.Fatalf("kaleido.New() error = %v", err)
	}
	logger := logging.Wrap(mdwlog.NewNop(), "server-test")
	coreGrpc.SetLogger(logger)

	srv, err := New(DefaultConfig(), engine, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func expected(t *testing.T, src string) *kaleido.Result {
	t.Helper()
	engine, _ := kaleido.New(kaleido.Options{Logger: mdwlog.NewNop()})
	result, err := engine.ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return result
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Error("New() without engine should fail")
	}
}

func TestTokenMapRoundTrip(t *testing.T) {
	toks, err := lexer.Tokenize("def extern if then else for foo 1.5 ( #c\n")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	for _, tok := range toks {
		got, err := tokenFromMap(emit.TokenMap(tok))
		if err != nil {
			t.Fatalf("tokenFromMap(%s) error = %v", tok, err)
		}
		if !got.Equal(tok) {
			t.Errorf("round trip of %s = %s", tok, got)
		}
	}
}

func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.HTTPHandler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsReply struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func readUntil(t *testing.T, conn *websocket.Conn, final ...string) []wsReply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var replies []wsReply
	for {
		var r wsReply
		if err := conn.ReadJSON(&r); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		replies = append(replies, r)
		for _, f := range final {
			if r.Type == f {
				return replies
			}
		}
	}
}

func TestWebSocket_Parse(t *testing.T) {
	conn := dialWS(t, newTestServer(t, kaleido.Options{}))
	want := expected(t, source)

	if err := conn.WriteJSON(map[string]interface{}{
		"type":    "parse",
		"payload": map[string]string{"source": source},
	}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	replies := readUntil(t, conn, "done", "error")

	var units []parser.Unit
	var diags []*parser.ParseError
	for _, r := range replies {
		switch r.Type {
		case "unit":
			u, err := unitFromMap(r.Payload)
			if err != nil {
				t.Fatalf("unitFromMap() error = %v", err)
			}
			units = append(units, u)
		case "diagnostic":
			d, err := diagnosticFromMap(r.Payload)
			if err != nil {
				t.Fatalf("diagnosticFromMap() error = %v", err)
			}
			diags = append(diags, d)
		}
	}

	last := replies[len(replies)-1]
	if last.Type != "done" {
		t.Fatalf("last reply = %+v, want done", last)
	}
	if last.Payload["units"] != float64(len(want.Units)) || last.Payload["diagnostics"] != float64(len(want.Diagnostics)) {
		t.Errorf("done payload = %v", last.Payload)
	}
	if len(units) != len(want.Units) {
		t.Fatalf("got %d units, want %d", len(units), len(want.Units))
	}
	for i := range units {
		if units[i].Kind != want.Units[i].Kind || units[i].String() != want.Units[i].String() {
			t.Errorf("unit %d = %s %q, want %s %q", i, units[i].Kind, units[i], want.Units[i].Kind, want.Units[i])
		}
	}
	if len(diags) != 1 || diags[0].Error() != want.Diagnostics[0].Error() {
		t.Errorf("diagnostics = %v, want %v", diags, want.Diagnostics)
	}
}

func TestWebSocket_Messages(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantType string
		wantCode string
	}{
		{"ping", `{"type":"ping"}`, "pong", ""},
		{"unknown type", `{"type":"eval"}`, "error", "unknown_type"},
		{"bad payload", `{"type":"parse","payload":"nope"}`, "error", "invalid_payload"},
		{"fatal number", `{"type":"parse","payload":{"source":"1.2.3"}}`, "error", "invalid_number"},
	}

	conn := dialWS(t, newTestServer(t, kaleido.Options{}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			replies := readUntil(t, conn, "pong", "error", "done")
			last := replies[len(replies)-1]
			if last.Type != tt.wantType {
				t.Fatalf("reply type = %q, want %q", last.Type, tt.wantType)
			}
			if tt.wantCode != "" && last.Payload["code"] != tt.wantCode {
				t.Errorf("error code = %v, want %s", last.Payload["code"], tt.wantCode)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, kaleido.Options{}).HTTPHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var report map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report["status"] != "healthy" || report["service"] != "kaleido" {
		t.Errorf("report = %v", report)
	}
}

func dialBuf(t *testing.T, srv *Server) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.ServeGRPC(lis) }()
	t.Cleanup(srv.GRPCServer().Stop)

	client, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestGRPC_Parse(t *testing.T) {
	client := dialBuf(t, newTestServer(t, kaleido.Options{}))
	want := expected(t, source)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := client.Parse(ctx, source)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Units) != len(want.Units) {
		t.Fatalf("got %d units, want %d", len(got.Units), len(want.Units))
	}
	for i := range got.Units {
		if got.Units[i].Kind != want.Units[i].Kind || got.Units[i].String() != want.Units[i].String() {
			t.Errorf("unit %d = %q, want %q", i, got.Units[i], want.Units[i])
		}
	}
	if len(got.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(got.Diagnostics))
	}
	if parser.FormatDiagnostic(got.Diagnostics[0]) != parser.FormatDiagnostic(want.Diagnostics[0]) {
		t.Errorf("diagnostic = %q, want %q",
			parser.FormatDiagnostic(got.Diagnostics[0]), parser.FormatDiagnostic(want.Diagnostics[0]))
	}
	if got.Stats.Units != want.Stats.Units || got.Stats.Externs != 1 || got.Stats.Diagnostics != 1 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestGRPC_ResultCache(t *testing.T) {
	srv := newTestServer(t, kaleido.Options{})
	client := dialBuf(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		got, err := client.Parse(ctx, "def id(x) x")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(got.Units) != 1 {
			t.Fatalf("units = %d, want 1", len(got.Units))
		}
	}
	if _, err := client.Parse(ctx, "1 2.3.4"); err == nil {
		t.Fatal("Parse() of a bad number succeeded")
	}

	hits, misses, _ := srv.cache.Stats()
	if hits != 2 || misses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 2/2", hits, misses)
	}
	if srv.cache.Size() != 1 {
		t.Errorf("cache size = %d, want 1 (errors are not cached)", srv.cache.Size())
	}
}

func TestGRPC_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		opts kaleido.Options
		src  string
		want codes.Code
		code mdwerror.Code
	}{
		{"fatal number", kaleido.Options{}, "1 2.3.4", codes.InvalidArgument, mdwerror.CodeInvalidInput},
		{"too large", kaleido.Options{MaxSourceBytes: 4}, "def f(x) x", codes.InvalidArgument, mdwerror.CodeInvalidInput},
		{"too many errors", kaleido.Options{MaxErrors: 1}, ") )", codes.ResourceExhausted, mdwerror.CodeTooManyErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := dialBuf(t, newTestServer(t, tt.opts))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := client.Parse(ctx, tt.src)
			if status.Code(err) != tt.want {
				t.Errorf("Parse() error = %v, want code %v", err, tt.want)
			}
			if mdwerror.GetCode(err) != tt.code {
				t.Errorf("GetCode() = %v, want %v", mdwerror.GetCode(err), tt.code)
			}
		})
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	srv := newTestServer(t, kaleido.Options{})
	srv.config.Host = "127.0.0.1"
	srv.config.HTTPPort = 0
	srv.config.GRPCPort = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
