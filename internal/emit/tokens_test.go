package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/anemortalkid/kaleido/foundation/kaleido/lexer"
)

func tokenize(t *testing.T, src string) []lexer.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	return tokens
}

func TestTokenMap(t *testing.T) {
	tests := []struct {
		tok  lexer.Token
		key  string
		want string
	}{
		{lexer.Ident("sin"), "name", "sin"},
		{lexer.Symbol('('), "char", "("},
		{lexer.Keyword(lexer.KindDef), "text", "'def'"},
		{lexer.EOF, "kind", "EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.tok.String(), func(t *testing.T) {
			m := TokenMap(tt.tok)
			if got, _ := m[tt.key].(string); got != tt.want {
				t.Errorf("TokenMap()[%q] = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestWriter_TokensText(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, nil, Options{})

	if err := w.Tokens(tokenize(t, "extern sin(a)")); err != nil {
		t.Fatalf("Tokens() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	want := []string{
		"EXTERN     'extern'",
		"IDENTIFIER identifier(sin)",
		"SYMBOL     symbol('(')",
		"IDENTIFIER identifier(a)",
		"SYMBOL     symbol(')')",
		"EOF        EOF",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWriter_TokensJSON(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, nil, Options{Format: FormatJSON})

	if err := w.Tokens(tokenize(t, "x 4.5")); err != nil {
		t.Fatalf("Tokens() error = %v", err)
	}

	dec := json.NewDecoder(&out)
	var kinds []string
	for dec.More() {
		var m map[string]interface{}
		if err := dec.Decode(&m); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		kinds = append(kinds, m["kind"].(string))
		if m["kind"] == "NUMBER" && m["value"] != "4.5" {
			t.Errorf("number value = %v, want 4.5", m["value"])
		}
	}
	if strings.Join(kinds, " ") != "IDENTIFIER NUMBER EOF" {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestWriter_TokensYAML(t *testing.T) {
	var out bytes.Buffer
	w := New(&out, nil, Options{Format: FormatYAML})

	if err := w.Tokens(tokenize(t, "def")); err != nil {
		t.Fatalf("Tokens() error = %v", err)
	}

	var doc struct {
		Tokens []map[string]string `yaml:"tokens"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(doc.Tokens) != 2 || doc.Tokens[0]["kind"] != "DEF" {
		t.Errorf("tokens = %v", doc.Tokens)
	}
}
