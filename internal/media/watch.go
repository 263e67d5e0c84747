package media

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/olivier-w/retroamp/internal/logger"
)

// DefaultDebounce coalesces bursts of filesystem events, such as a copy of
// a whole album, into one rescan.
const DefaultDebounce = 250 * time.Millisecond

// Watcher signals when entries are added to, removed from or renamed in a
// directory.
type Watcher struct {
	dir      string
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	changes   chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Watch starts watching dir (not recursively).
func Watch(dir string, debounce time.Duration, l *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		dir:      dir,
		fs:       fsw,
		debounce: debounce,
		logger:   logger.OrDiscard(l),
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Changes delivers one value per debounced burst of changes. Bursts that
// arrive while a previous signal is unread are merged into it.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Closed is closed once Close has been called.
func (w *Watcher) Closed() <-chan struct{} { return w.done }

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("directory watch error", "dir", w.dir, "error", err)
		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.fs.Close()
	})
	return err
}
