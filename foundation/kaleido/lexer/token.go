// File: token.go
// Title: Kaleido Tokens
// Description: Defines the token kinds of the language and the immutable
//              Token value produced by the lexer.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial token definitions

package lexer

import (
	"fmt"
	"strconv"

	mdwmathx "github.com/anemortalkid/kaleido/foundation/utils/mathx"
)

// Kind represents the kind of a lexical token
type Kind int

const (
	// KindEOF marks the end of input
	KindEOF Kind = iota

	// Keywords
	KindDef
	KindExtern
	KindIf
	KindThen
	KindElse
	KindFor

	// KindIdentifier carries a name
	KindIdentifier

	// KindNumber carries a decimal value
	KindNumber

	// KindSymbol carries any other single character
	KindSymbol
)

// String returns a string representation of the token kind
func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindDef:
		return "DEF"
	case KindExtern:
		return "EXTERN"
	case KindIf:
		return "IF"
	case KindThen:
		return "THEN"
	case KindElse:
		return "ELSE"
	case KindFor:
		return "FOR"
	case KindIdentifier:
		return "IDENTIFIER"
	case KindNumber:
		return "NUMBER"
	case KindSymbol:
		return "SYMBOL"
	default:
		return "UNKNOWN"
	}
}

// IsKeyword reports whether k is one of the keyword kinds
func (k Kind) IsKeyword() bool {
	return k >= KindDef && k <= KindFor
}

// keywords maps keyword text to its kind; matching is case-sensitive
var keywords = map[string]Kind{
	"def":    KindDef,
	"extern": KindExtern,
	"if":     KindIf,
	"then":   KindThen,
	"else":   KindElse,
	"for":    KindFor,
}

// LookupIdent returns the keyword kind for ident, or KindIdentifier
func LookupIdent(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return KindIdentifier
}

// Token is an immutable lexical token. Only the payload field matching Kind
// is meaningful: Name for identifiers, Value for numbers, Char for symbols.
type Token struct {
	Kind  Kind
	Name  string
	Value mdwmathx.Decimal
	Char  rune
}

// EOF is the end-of-input token
var EOF = Token{Kind: KindEOF}

// Keyword returns the token for a keyword kind
func Keyword(k Kind) Token {
	return Token{Kind: k}
}

// Ident returns an identifier token
func Ident(name string) Token {
	return Token{Kind: KindIdentifier, Name: name}
}

// Number returns a number token
func Number(value mdwmathx.Decimal) Token {
	return Token{Kind: KindNumber, Value: value}
}

// Symbol returns a single-character token
func Symbol(ch rune) Token {
	return Token{Kind: KindSymbol, Char: ch}
}

// Is reports whether t is the symbol ch
func (t Token) Is(ch rune) bool {
	return t.Kind == KindSymbol && t.Char == ch
}

// Equal reports structural equality: same kind and same payload
func (t Token) Equal(other Token) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindIdentifier:
		return t.Name == other.Name
	case KindNumber:
		return t.Value.Equal(other.Value)
	case KindSymbol:
		return t.Char == other.Char
	default:
		return true
	}
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Kind {
	case KindEOF:
		return "EOF"
	case KindIdentifier:
		return fmt.Sprintf("identifier(%s)", t.Name)
	case KindNumber:
		return fmt.Sprintf("number(%s)", t.Value)
	case KindSymbol:
		return "symbol(" + strconv.QuoteRune(t.Char) + ")"
	default:
		for text, k := range keywords {
			if k == t.Kind {
				return "'" + text + "'"
			}
		}
		return t.Kind.String()
	}
}
