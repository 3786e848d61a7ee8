package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anemortalkid/kaleido/foundation/kaleido/ast"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "kaleido.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(t *testing.T, s *SQLiteStore, name, src string) *Recorder {
	t.Helper()
	ctx := context.Background()
	rec, err := Record(ctx, s, name)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := parser.NewString(src, parser.Options{}).Parse(rec); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := rec.Err(); err != nil {
		t.Fatalf("Recorder.Err() = %v", err)
	}
	return rec
}

func TestDefaultConfig(t *testing.T) {
	if DefaultConfig().Path != "./data/kaleido.db" {
		t.Errorf("DefaultConfig().Path = %v", DefaultConfig().Path)
	}
}

func TestSQLiteStore_SaveAndListUnits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := record(t, s, "fib.kal", "def fib(n) if n < 3 then 1 else fib(n-1)+fib(n-2); extern sin(x); fib(10)")

	units, err := s.ListUnits(ctx, Filter{Session: rec.Session()})
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("ListUnits() returned %d units, want 3", len(units))
	}

	// most recent first
	wantKinds := []string{"top-level", "extern", "definition"}
	for i, u := range units {
		if u.Kind != wantKinds[i] {
			t.Errorf("units[%d].Kind = %v, want %v", i, u.Kind, wantKinds[i])
		}
		if u.Session != rec.Session() {
			t.Errorf("units[%d].Session = %v", i, u.Session)
		}
		if u.ID == "" || u.CreatedAt.IsZero() {
			t.Errorf("units[%d] missing id or timestamp: %+v", i, u)
		}
	}

	def := units[2]
	if def.Name != "fib" || len(def.Params) != 1 || def.Params[0] != "n" || def.Seq != 1 {
		t.Errorf("definition record = %+v", def)
	}
	node, err := ast.FromMap(def.Tree)
	if err != nil {
		t.Fatalf("FromMap(tree) error = %v", err)
	}
	if node.String() != def.Source {
		t.Errorf("tree decodes to %q, want %q", node.String(), def.Source)
	}
}

func TestSQLiteStore_Filter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	first := record(t, s, "a", "extern sin(x); extern cos(x); 1")
	record(t, s, "b", "extern sin(y)")

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"session", Filter{Session: first.Session()}, 3},
		{"kind", Filter{Kind: "extern"}, 3},
		{"name", Filter{Name: "sin"}, 2},
		{"combined", Filter{Session: first.Session(), Name: "sin"}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"no match", Filter{Name: "tan"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := s.ListUnits(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListUnits() error = %v", err)
			}
			if len(units) != tt.want {
				t.Errorf("ListUnits(%+v) returned %d units, want %d", tt.filter, len(units), tt.want)
			}
		})
	}
}

func TestSQLiteStore_Diagnostics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := record(t, s, "broken", "def f( ; 1+1")

	diags, err := s.ListDiagnostics(ctx, rec.Session(), 0)
	if err != nil {
		t.Fatalf("ListDiagnostics() error = %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("ListDiagnostics() returned %d, want 1", len(diags))
	}
	d := diags[0]
	if d.Expected != "')' in prototype" || d.Found != "symbol(';')" || d.Seq != 1 {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Consumed == "" {
		t.Error("diagnostic should keep the consumed log")
	}

	units, err := s.ListUnits(ctx, Filter{Session: rec.Session()})
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if len(units) != 1 || units[0].Seq != 2 {
		t.Errorf("units after recovery = %+v, want one unit at seq 2", units)
	}
}

func TestSQLiteStore_Sessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	record(t, s, "first", "1; 2")
	record(t, s, "second", ") 3")

	sessions, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Sessions() returned %d, want 2", len(sessions))
	}

	bySource := map[string]*Session{}
	for _, sess := range sessions {
		bySource[sess.Source] = sess
	}
	if got := bySource["first"]; got == nil || got.Units != 2 || got.Diagnostics != 0 {
		t.Errorf("first session = %+v", got)
	}
	if got := bySource["second"]; got == nil || got.Units != 1 || got.Diagnostics != 1 {
		t.Errorf("second session = %+v", got)
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	record(t, s, "old", "1")

	n, err := s.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Prune(1h) removed %d sessions, want 0", n)
	}

	n, err = s.Prune(ctx, -time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune(-1h) removed %d sessions, want 1", n)
	}
	units, _ := s.ListUnits(ctx, Filter{})
	if len(units) != 0 {
		t.Errorf("pruned session left %d units", len(units))
	}
}

func TestRecorder_UnknownSession(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(context.Background(), s, "missing")

	err := parser.NewString("1", parser.Options{}).Parse(rec)
	if err == nil {
		t.Fatal("Parse() into unknown session should fail")
	}
	if rec.Err() == nil {
		t.Error("Recorder.Err() should keep the write error")
	}
}

func TestSQLiteStore_PingContext(t *testing.T) {
	s := openTestStore(t)
	if err := s.PingContext(context.Background()); err != nil {
		t.Errorf("PingContext() error = %v", err)
	}
	s.Close()
	if err := s.PingContext(context.Background()); err == nil {
		t.Error("PingContext() after Close() error = nil")
	}
}
