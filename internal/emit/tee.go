package emit

import (
	"errors"
	"sync"

	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
)

// Tee fans units and diagnostics out to every sink in order. Unit errors
// from all sinks are joined.
func Tee(sinks ...parser.Sink) parser.Sink {
	return tee(sinks)
}

type tee []parser.Sink

func (t tee) Unit(unit parser.Unit) error {
	var errs []error
	for _, s := range t {
		if err := s.Unit(unit); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) Diagnostic(err *parser.ParseError) {
	for _, s := range t {
		s.Diagnostic(err)
	}
}

// Counter counts what passes through it
type Counter struct {
	mu          sync.Mutex
	units       map[parser.Kind]int
	diagnostics int
}

// NewCounter creates an empty counter
func NewCounter() *Counter {
	return &Counter{units: make(map[parser.Kind]int)}
}

// Unit implements parser.Sink
func (c *Counter) Unit(unit parser.Unit) error {
	c.mu.Lock()
	c.units[unit.Kind]++
	c.mu.Unlock()
	return nil
}

// Diagnostic implements parser.Sink
func (c *Counter) Diagnostic(*parser.ParseError) {
	c.mu.Lock()
	c.diagnostics++
	c.mu.Unlock()
}

// Units returns the number of units of kind, or of all kinds when kind is 0
func (c *Counter) Units(kind parser.Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind != 0 {
		return c.units[kind]
	}
	total := 0
	for _, n := range c.units {
		total += n
	}
	return total
}

// Diagnostics returns the number of diagnostics seen
func (c *Counter) Diagnostics() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diagnostics
}
