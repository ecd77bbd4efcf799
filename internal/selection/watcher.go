package selection

import (
	"context"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// DefaultPollInterval is how often a Watcher polls its provider.
const DefaultPollInterval = time.Second

// Watcher polls a Provider and remembers the latest selection. A poll only
// replaces the recorded value when the new selection is non-empty and
// different from it, so clearing a selection keeps the previous one.
type Watcher struct {
	provider Provider
	interval time.Duration
	logger   *pterm.Logger

	mu      sync.RWMutex
	current string
}

// NewWatcher creates a Watcher. A zero interval means DefaultPollInterval.
func NewWatcher(p Provider, interval time.Duration, logger *pterm.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{provider: p, interval: interval, logger: logger}
}

// Snapshot returns the selection recorded at the time of the call. Later
// polls do not affect a returned snapshot.
func (w *Watcher) Snapshot() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Poll reads the provider once and reports whether the recorded selection
// changed.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	text, err := w.provider.Selection(ctx)
	if err != nil {
		return false, err
	}
	if text == "" {
		return false, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if text == w.current {
		return false, nil
	}
	w.current = text
	return true, nil
}

// Run polls until ctx is done, calling onChange with each new selection.
// onChange runs on the polling goroutine, so polling pauses while it works.
// Poll errors are logged and the loop continues.
func (w *Watcher) Run(ctx context.Context, onChange func(string)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		changed, err := w.Poll(ctx)
		switch {
		case err != nil:
			if w.logger != nil {
				w.logger.Warn("selection poll failed", w.logger.Args("error", err.Error()))
			}
		case changed && onChange != nil:
			onChange(w.Snapshot())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
