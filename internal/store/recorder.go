package store

import (
	"context"
	"sync"

	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
)

// Recorder is a parser.Sink that persists the units and diagnostics of one
// session in source order
type Recorder struct {
	ctx     context.Context
	store   Store
	session string

	mu  sync.Mutex
	seq int
	err error
}

// NewRecorder creates a recorder writing into an existing session
func NewRecorder(ctx context.Context, s Store, session string) *Recorder {
	return &Recorder{ctx: ctx, store: s, session: session}
}

// Session returns the session id
func (r *Recorder) Session() string {
	return r.session
}

// Unit implements parser.Sink
func (r *Recorder) Unit(unit parser.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	if err := r.store.SaveUnit(r.ctx, r.session, r.seq, unit); err != nil {
		r.err = err
		return err
	}
	return nil
}

// Diagnostic implements parser.Sink. A failed write is kept for Err since
// diagnostics cannot stop the parse.
func (r *Recorder) Diagnostic(perr *parser.ParseError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	if err := r.store.SaveDiagnostic(r.ctx, r.session, r.seq, perr); err != nil && r.err == nil {
		r.err = err
	}
}

// Err returns the first write error
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Record starts a session named source on s and returns a recorder for it
func Record(ctx context.Context, s Store, source string) (*Recorder, error) {
	session, err := s.StartSession(ctx, source)
	if err != nil {
		return nil, err
	}
	return NewRecorder(ctx, s, session), nil
}
