// Package watch recompiles the configuration whenever a document in the
// config directory changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jwtly10/vimcfg"
)

const defaultDebounce = 200 * time.Millisecond

type Options struct {
	// Directory to watch, subdirectories are not watched
	Dir string
	// Quiet period after the last relevant event before OnChange runs
	Debounce time.Duration
	// Treat .md files as documents
	Literate bool
	// Called after a burst of changes. Errors are logged and watching continues.
	OnChange func(ctx context.Context) error
}

type Watcher struct {
	opts    Options
	watcher *fsnotify.Watcher
}

func NewWatcher(opts Options) (*Watcher, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if opts.OnChange == nil {
		return nil, fmt.Errorf("change handler is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fsw.Add(opts.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", opts.Dir, err)
	}

	return &Watcher{
		opts:    opts,
		watcher: fsw,
	}, nil
}

// relevant reports whether an event can change the compiled output.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	if name == ".gitignore" || name == ".vimcfgignore" {
		return true
	}
	_, ok := vimcfg.FormatOf(name, w.opts.Literate)
	return ok
}

// Run blocks until ctx is done, running OnChange after every burst of
// document changes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// nil until a relevant event arrives, so the select never fires on it
	var fire <-chan time.Time

	slog.Info("watching for changes", "dir", w.opts.Dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("config change", "path", ev.Name, "op", ev.Op.String())
			fire = time.After(w.opts.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)

		case <-fire:
			fire = nil
			if err := w.opts.OnChange(ctx); err != nil {
				slog.Error("recompile failed", "error", err)
			}
		}
	}
}
