// ============================================================================
// Kaleido - Toy language front end
// ============================================================================
//
// Package:     watch
// Description: Re-parses a source file whenever it changes on disk
// Author:      anemortalkid
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/pkg/core/logging"
)

// DefaultDelay is the quiet period after the last event before a reload
const DefaultDelay = 200 * time.Millisecond

// Config configures a Watcher
type Config struct {
	// Path is the file to watch
	Path string

	// Delay is the debounce period (default DefaultDelay)
	Delay time.Duration

	// Logger (optional)
	Logger *logging.Logger
}

// ChangeFunc is called with the watched path after it changed
type ChangeFunc func(ctx context.Context, path string)

// Watcher watches one file. The file's directory is watched so editors
// that replace the file on save are seen too.
type Watcher struct {
	path     string
	delay    time.Duration
	logger   *logging.Logger
	onChange ChangeFunc
	watcher  *fsnotify.Watcher
}

// New creates a watcher; call Run to start delivering changes
func New(cfg Config, onChange ChangeFunc) (*Watcher, error) {
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "invalid watch path").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("watch.New")
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New("watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create file watcher").
			WithCode(mdwerror.CodeIOError).
			WithOperation("watch.New")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, mdwerror.Wrap(err, "failed to watch directory").
			WithCode(mdwerror.CodeIOError).
			WithOperation("watch.New").
			WithDetail("path", filepath.Dir(path))
	}

	return &Watcher{
		path:     path,
		delay:    cfg.Delay,
		logger:   cfg.Logger,
		onChange: onChange,
		watcher:  watcher,
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers changes until ctx is done. Bursts of events within the
// delay collapse into one call; calls never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Info("Watching file", "path", w.path)

	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("Stopping file watcher (context cancelled)")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Debounce: restart the quiet period on every event
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.delay)
			pending = true

		case <-timer.C:
			pending = false
			w.logger.Debug("File changed, reparsing", "path", w.path)
			w.onChange(ctx, w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

// Watch creates a watcher for path and runs it until ctx is done
func Watch(ctx context.Context, path string, onChange ChangeFunc) error {
	w, err := New(Config{Path: path}, onChange)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
