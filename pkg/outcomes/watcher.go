package outcomes

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses bursts of writes into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a counts file whenever it changes.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopped bool
	wg      sync.WaitGroup

	// reloadMu serializes reloads; pending counts scheduled and running ones.
	reloadMu sync.Mutex
	pending  sync.WaitGroup
}

// NewWatcher creates a watcher for path. A zero debounce uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, logger zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger.With().Str("component", "outcomes-watcher").Str("path", path).Logger(),
	}
}

// Watch starts watching in the background. reloadFn receives the freshly
// parsed document after each settled change; parse failures are logged and
// skipped. Watching stops when ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, reloadFn func(*Document) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Editors often replace the file, so watch the directory and filter.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	w.wg.Add(1)
	go w.processEvents(ctx, fw, reloadFn)

	w.logger.Info().Msg("Started watching counts file")
	return nil
}

func (w *Watcher) processEvents(ctx context.Context, fw *fsnotify.Watcher, reloadFn func(*Document) error) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			_ = fw.Close()
			return

		case event, ok := <-fw.Events:
			if !ok {
				w.stopTimer()
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.logger.Debug().Str("op", event.Op.String()).Msg("Counts file changed")

			w.schedule(reloadFn)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

// schedule (re)arms the debounce timer. A timer stopped before firing
// releases its pending slot here; one that fired releases it when done.
func (w *Watcher) schedule(reloadFn func(*Document) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()

		w.reloadMu.Lock()
		defer w.reloadMu.Unlock()

		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}
		if err := w.reload(reloadFn); err != nil {
			w.logger.Error().Err(err).Msg("Failed to reload counts")
		}
	})
}

func (w *Watcher) reload(reloadFn func(*Document) error) error {
	doc, err := Load(w.path)
	if err != nil {
		return err
	}
	if err := reloadFn(doc); err != nil {
		return fmt.Errorf("failed to apply reloaded counts: %w", err)
	}
	w.logger.Info().Int("outcomes", len(doc.Counts)).Msg("Counts reloaded")
	return nil
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.timer = nil
}

// Stop closes the underlying watcher and waits for the event loop and any
// in-flight reload to finish. No reload starts after Stop returns.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fw := w.watcher
	w.stopped = true
	w.mu.Unlock()

	var err error
	if fw != nil {
		err = fw.Close()
	}
	w.wg.Wait()
	w.stopTimer()
	w.pending.Wait()
	return err
}
