// File: lexer.go
// Title: Kaleido Lexical Analyzer
// Description: Converts a character stream into tokens one at a time. The
//              lexer carries one pending character between calls and logs
//              every character it reads for diagnostics.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial lexer implementation

package lexer

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	mdwmathx "github.com/anemortalkid/kaleido/foundation/utils/mathx"
)

// Lexer performs lexical analysis of kaleido source text.
// A Lexer is not safe for concurrent use.
type Lexer struct {
	src      io.RuneReader
	last     rune // pending character, valid while !eof
	eof      bool
	consumed strings.Builder
	err      error
}

// New creates a lexer reading from r. Readers that do not implement
// io.RuneReader are buffered.
func New(r io.Reader) *Lexer {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &Lexer{src: rr, last: ' '}
}

// NewString creates a lexer over an in-memory source
func NewString(src string) *Lexer {
	return New(strings.NewReader(src))
}

// Next returns the next token. Once the input is exhausted, or after a fatal
// error, it returns EOF on every call.
func (l *Lexer) Next() Token {
	for {
		for !l.eof && unicode.IsSpace(l.last) {
			l.readChar()
		}

		if l.eof {
			return EOF
		}

		switch {
		case isIdentStart(l.last):
			return l.readIdentifier()

		case isNumeric(l.last):
			return l.readNumber()

		case l.last == '#':
			l.skipComment()
			continue

		default:
			ch := l.last
			l.readChar()
			return Symbol(ch)
		}
	}
}

// Err returns the fatal error that stopped the lexer, if any. It is either
// an INVALID_NUMBER error for a malformed numeral or an IO_ERROR from the
// underlying reader.
func (l *Lexer) Err() error {
	return l.err
}

// Consumed returns every character read so far, in order
func (l *Lexer) Consumed() string {
	return l.consumed.String()
}

// readChar replaces the pending character with the next one from the source
func (l *Lexer) readChar() {
	if l.eof {
		return
	}

	r, _, err := l.src.ReadRune()
	if err != nil {
		l.eof = true
		if err != io.EOF {
			l.fail(mdwerror.Wrap(err, "reading source").
				WithCode(mdwerror.CodeIOError).
				WithOperation("lexer.readChar"))
		}
		return
	}

	l.last = r
	l.consumed.WriteRune(r)
}

func (l *Lexer) fail(err error) {
	if l.err == nil {
		l.err = err
	}
	l.eof = true
}

// readIdentifier consumes a maximal run of identifier characters
func (l *Lexer) readIdentifier() Token {
	var buf strings.Builder
	buf.WriteRune(l.last)
	for {
		l.readChar()
		if l.eof || !isIdentPart(l.last) {
			break
		}
		buf.WriteRune(l.last)
	}

	name := buf.String()
	if k := LookupIdent(name); k != KindIdentifier {
		return Keyword(k)
	}
	return Ident(name)
}

// readNumber consumes a maximal run of digits and dots and parses it.
// Text the decimal parser rejects is fatal.
func (l *Lexer) readNumber() Token {
	var buf strings.Builder
	for !l.eof && isNumeric(l.last) {
		buf.WriteRune(l.last)
		l.readChar()
	}

	text := buf.String()
	value, err := mdwmathx.NewDecimal(text)
	if err != nil {
		l.fail(mdwerror.Wrap(err, "malformed numeric literal").
			WithCode(mdwerror.CodeInvalidNumber).
			WithOperation("lexer.readNumber").
			WithDetail("text", text).
			WithDetail("consumed", l.Consumed()))
		return EOF
	}
	return Number(value)
}

// skipComment discards characters through the end of the line. The line
// terminator stays pending and is skipped as whitespace.
func (l *Lexer) skipComment() {
	for {
		l.readChar()
		if l.eof || l.last == '\n' || l.last == '\r' {
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNumeric(r rune) bool {
	return ('0' <= r && r <= '9') || r == '.'
}

// Tokenize returns all tokens of src up to and including EOF, or the fatal
// error together with the tokens read before it
func Tokenize(src string) ([]Token, error) {
	lx := NewString(src)

	var tokens []Token
	for {
		tok := lx.Next()
		if err := lx.Err(); err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == KindEOF {
			return tokens, nil
		}
	}
}
