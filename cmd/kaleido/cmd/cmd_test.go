package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
)

// run executes the root command with args and stdin in an isolated
// environment and returns stdout, stderr and the error
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("KALEIDO_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	if _, ok := os.LookupEnv("KALEIDO_STORE_PATH"); !ok {
		t.Setenv("KALEIDO_STORE_PATH", filepath.Join(t.TempDir(), "kaleido.db"))
	}

	// flag variables outlive a single execution
	cfgFile, logLevel, logFormat, verbose = "", "", "", false
	parseFormat, parseColor, parseStore, parseWatch, parseRemote = "", false, false, false, ""
	tokensFormat = "text"
	historySession, historyKind, historyName = "", "", ""
	historyLimit, historySessions, historyDiagnostics, historyPrune, historyJSON = 50, false, false, 0, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := Execute()
	return stdout.String(), stderr.String(), err
}

func TestParse_Stdin(t *testing.T) {
	stdout, _, err := run(t, "def f(x) x+1; extern sin(a); 2*3", "parse")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	want := "Parsed def: def f(x) (x + 1)\n" +
		"Parsed extern: extern sin(a)\n" +
		"Parsed top-level expr: (2 * 3)\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestParse_Diagnostics(t *testing.T) {
	stdout, stderr, err := run(t, "def ( ; 4", "parse")

	if !errors.Is(err, errParseFailed) {
		t.Fatalf("parse error = %v, want parse failure", err)
	}
	if ExitStatus(err) != 1 {
		t.Errorf("ExitStatus() = %d, want 1", ExitStatus(err))
	}
	if !strings.Contains(stderr, "expected function name in prototype") {
		t.Errorf("stderr missing diagnostic: %q", stderr)
	}
	if strings.Contains(stderr, "Error:") {
		t.Errorf("parse failure was printed as an error: %q", stderr)
	}
	if !strings.Contains(stdout, "Parsed top-level expr: 4") {
		t.Errorf("parsing did not resume: %q", stdout)
	}
}

func TestParse_FatalNumber(t *testing.T) {
	_, stderr, err := run(t, "1.2.3", "parse")

	if !mdwerror.HasCode(err, mdwerror.CodeInvalidNumber) {
		t.Fatalf("parse error = %v, want INVALID_NUMBER", err)
	}
	if ExitStatus(err) != 1 {
		t.Errorf("ExitStatus() = %d, want 1", ExitStatus(err))
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q, want error line", stderr)
	}
}

func TestParse_JSONFormat(t *testing.T) {
	stdout, _, err := run(t, "extern cos(x)", "parse", "--format", "json")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &m); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if m["kind"] != "extern" || m["source"] != "extern cos(x)" {
		t.Errorf("unit = %v", m)
	}
}

func TestParse_InvalidFormat(t *testing.T) {
	_, _, err := run(t, "x", "parse", "--format", "xml")
	if ExitStatus(err) != 2 {
		t.Errorf("ExitStatus() = %d, want 2 (error %v)", ExitStatus(err), err)
	}
}

func TestParse_MissingFile(t *testing.T) {
	_, _, err := run(t, "", "parse", filepath.Join(t.TempDir(), "nope.kal"))
	if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("parse error = %v, want NOT_FOUND", err)
	}
}

func TestParse_StoreAndHistory(t *testing.T) {
	t.Setenv("KALEIDO_STORE_PATH", filepath.Join(t.TempDir(), "history.db"))

	if _, _, err := run(t, "def sq(x) x*x; sq(3)", "parse", "--store"); err != nil {
		t.Fatalf("parse --store error = %v", err)
	}

	stdout, _, err := run(t, "", "history", "--kind", "def")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(stdout, "def sq(x) (x * x)") {
		t.Errorf("history missing definition: %q", stdout)
	}
	if strings.Contains(stdout, "sq(3)") {
		t.Errorf("history kind filter ignored: %q", stdout)
	}

	stdout, _, err = run(t, "", "history", "--sessions", "--json")
	if err != nil {
		t.Fatalf("history --sessions error = %v", err)
	}
	var sessions []map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &sessions); err != nil {
		t.Fatalf("sessions are not JSON: %v\n%s", err, stdout)
	}
	if len(sessions) != 1 || sessions[0]["units"] != float64(2) {
		t.Errorf("sessions = %v", sessions)
	}
}

func TestHistory_InvalidKind(t *testing.T) {
	_, _, err := run(t, "", "history", "--kind", "macro")
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("history error = %v, want INVALID_INPUT", err)
	}
}

func TestTokens(t *testing.T) {
	stdout, _, err := run(t, "def f", "tokens")
	if err != nil {
		t.Fatalf("tokens error = %v", err)
	}

	want := "DEF        'def'\nIDENTIFIER identifier(f)\nEOF        EOF\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout, "kaleido ") || !strings.Contains(stdout, "Protocol: v1") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, _, err := run(t, "", "version", "--log-level", "loud")
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"parse failure", errParseFailed, 1},
		{"canceled", context.Canceled, 130},
		{"invalid config", mdwerror.New("x").WithCode(mdwerror.CodeInvalidConfig), 2},
		{"plain", errors.New("boom"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitStatus(tt.err); got != tt.want {
				t.Errorf("ExitStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
