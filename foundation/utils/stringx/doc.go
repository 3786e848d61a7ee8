// Package stringx provides small string helpers shared across kaleido
// packages: blank checks, rune-safe truncation for log fields, fallbacks for
// configuration values and line splitting for terminal output.
package stringx
