package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.name != "test-service" {
		t.Errorf("name = %v, want test-service", logger.name)
	}
}

func TestLogger_WithLevel(t *testing.T) {
	logger := New("test")
	result := logger.WithLevel(LevelDebug)

	if result.name != "test" {
		t.Errorf("name should be preserved: got %v", result.name)
	}
	if result.GetLevel() != mdwlog.LevelDebug {
		t.Errorf("level = %v, want debug", result.GetLevel())
	}
}

func decode(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	return m
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig("svc")
	cfg.Output = &buf
	logger := Wrap(NewLogger(cfg), "")

	logger.Info("message", "key1", "value1", "key2", 42, "orphan")
	entry := decode(t, strings.TrimSpace(buf.String()))

	if entry["message"] != "message" || entry["key1"] != "value1" || entry["key2"] != float64(42) {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["orphan"]; ok {
		t.Error("orphan key without value should be dropped")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig("svc")
	cfg.Output = &buf
	logger := Wrap(NewLogger(cfg), "ws").With("conn", "c1")

	logger.Warn("slow client")
	entry := decode(t, strings.TrimSpace(buf.String()))
	if entry["conn"] != "c1" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLogger_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "svc",
		Level:       "warn",
		Format:      "text",
		Output:      &buf,
	})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "[WRN]") || !strings.Contains(out, "shown") {
		t.Errorf("text output = %q", out)
	}
}

func TestNewLogger_Fallbacks(t *testing.T) {
	logger := NewLogger(LoggerConfig{Level: "loud", Format: "xml", Output: &bytes.Buffer{}})
	if logger.GetLevel() != mdwlog.LevelInfo {
		t.Errorf("level = %v, want info fallback", logger.GetLevel())
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewLogger(LoggerConfig{Output: &a, AdditionalOutputs: []io.Writer{&b}})
	logger.Info("both")

	if !strings.Contains(a.String(), "both") || !strings.Contains(b.String(), "both") {
		t.Errorf("outputs = %q / %q", a.String(), b.String())
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %v, want json", cfg.Format)
	}
}

func TestInstall(t *testing.T) {
	previous := mdwlog.GetDefault()
	defer mdwlog.SetDefault(previous)

	logger := Install(LoggerConfig{ServiceName: "installed", Output: &bytes.Buffer{}})
	if mdwlog.GetDefault() != logger {
		t.Error("Install() should set the default logger")
	}
}

func TestToFields(t *testing.T) {
	if fields := toFields(); fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields := toFields("key1", "value1", "key2", 42)
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	// Non-string key (should be skipped)
	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Wrap(NewLogger(LoggerConfig{Output: &bytes.Buffer{}}), "benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
