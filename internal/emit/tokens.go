package emit

import (
	"encoding/json"
	"fmt"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido/lexer"
)

// TokenMap encodes a token as a generic map: its kind, its display text and
// the payload of identifier, number and symbol tokens
func TokenMap(tok lexer.Token) map[string]interface{} {
	m := map[string]interface{}{"kind": tok.Kind.String(), "text": tok.String()}
	switch tok.Kind {
	case lexer.KindIdentifier:
		m["name"] = tok.Name
	case lexer.KindNumber:
		m["value"] = tok.Value.String()
	case lexer.KindSymbol:
		m["char"] = string(tok.Char)
	}
	return m
}

// Tokens writes a token stream: one aligned line per token in text and tree
// format, one object per token in JSON, a single sequence in YAML
func (w *Writer) Tokens(tokens []lexer.Token) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		for _, tok := range tokens {
			if err = enc.Encode(TokenMap(tok)); err != nil {
				break
			}
		}
	case FormatYAML:
		docs := make([]map[string]interface{}, len(tokens))
		for i, tok := range tokens {
			docs[i] = TokenMap(tok)
		}
		err = w.writeYAML(map[string]interface{}{"tokens": docs})
	default:
		for _, tok := range tokens {
			kind := fmt.Sprintf("%-10s", tok.Kind)
			if w.color {
				kind = ConsumedStyle.Render(kind)
			}
			if _, err = fmt.Fprintf(w.out, "%s %s\n", kind, tok); err != nil {
				break
			}
		}
	}
	if err != nil {
		return mdwerror.Wrap(err, "failed to write tokens").
			WithCode(mdwerror.CodeIOError).
			WithOperation("emit.Tokens")
	}
	return nil
}
