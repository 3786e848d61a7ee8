// File: decimal.go
// Title: Decimal Implementation
// Description: Implements an immutable exact decimal value backed by
//              *big.Rat with parsing, comparison and exact formatting.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package mathx

import (
	"fmt"
	"math/big"
)

// Decimal represents a decimal number with arbitrary precision.
// The zero value is 0.
type Decimal struct {
	value *big.Rat
}

// SyntaxError reports text that is not a decimal numeral
type SyntaxError struct {
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid decimal format: %q", e.Text)
}

// NewDecimal parses plain decimal notation: an optional sign, digits with at
// most one '.', at least one digit, and an optional exponent.
func NewDecimal(s string) (Decimal, error) {
	if !isDecimalNotation(s) {
		return Decimal{}, &SyntaxError{Text: s}
	}
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return Decimal{}, &SyntaxError{Text: s}
	}
	return Decimal{value: rat}, nil
}

// MustNewDecimal creates a new Decimal from a string, panicking on error
func MustNewDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimalFromInt creates a new Decimal from an integer
func NewDecimalFromInt(i int64) Decimal {
	return Decimal{value: new(big.Rat).SetInt64(i)}
}

func isDecimalNotation(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits, dots := 0, 0
	for ; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			digits++
			continue
		}
		if c == '.' {
			dots++
			if dots > 1 {
				return false
			}
			continue
		}
		break
	}
	if digits == 0 {
		return false
	}
	if i == len(s) {
		return true
	}

	if s[i] != 'e' && s[i] != 'E' {
		return false
	}
	i++
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (d Decimal) rat() *big.Rat {
	if d.value == nil {
		return new(big.Rat)
	}
	return d.value
}

// Rat returns a copy of the underlying rational value
func (d Decimal) Rat() *big.Rat {
	return new(big.Rat).Set(d.rat())
}

// Compare returns -1, 0 or +1 depending on whether d is less than, equal to
// or greater than other
func (d Decimal) Compare(other Decimal) int {
	return d.rat().Cmp(other.rat())
}

// Equal reports whether d and other have the same numeric value
func (d Decimal) Equal(other Decimal) bool {
	return d.Compare(other) == 0
}

// IsZero reports whether d is zero
func (d Decimal) IsZero() bool {
	return d.rat().Sign() == 0
}

// IsInteger reports whether d has no fractional part
func (d Decimal) IsInteger() bool {
	return d.rat().IsInt()
}

// Float64 returns the nearest float64 value
func (d Decimal) Float64() float64 {
	f, _ := d.rat().Float64()
	return f
}

// String returns the exact value in plain decimal notation with no trailing
// zeros, e.g. "1", "0.5", "12.125".
func (d Decimal) String() string {
	r := d.rat()
	return r.FloatString(fractionDigits(r.Denom()))
}

// fractionDigits returns the number of digits after the point needed to
// print 1/denom exactly. Values parsed from decimal text always have a
// denominator of the form 2^a * 5^b.
func fractionDigits(denom *big.Int) int {
	n := new(big.Int).Set(denom)
	twos := countFactor(n, 2)
	fives := countFactor(n, 5)
	if twos > fives {
		return twos
	}
	return fives
}

// countFactor divides n by f as long as it is divisible and returns the count
func countFactor(n *big.Int, f int64) int {
	div := big.NewInt(f)
	q, m := new(big.Int), new(big.Int)
	count := 0
	for n.Sign() != 0 {
		q.QuoRem(n, div, m)
		if m.Sign() != 0 {
			break
		}
		n.Set(q)
		count++
	}
	return count
}

// MarshalText implements encoding.TextMarshaler
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Decimal) UnmarshalText(text []byte) error {
	parsed, err := NewDecimal(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
