// Package watch triggers rebuilds when project sources change. It combines a
// debounced filesystem watcher over the project and content directories with
// an optional periodic rebuild for sources the watcher cannot see.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebundler/internal/logfields"
)

// RebuildFunc executes one full build. The watcher never runs two rebuilds
// concurrently.
type RebuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Roots are directories to watch recursively. The project directory is
	// the usual first root.
	Roots []string

	// Debounce is the quiet period after the last event before rebuilding.
	// Zero means the default of 2 seconds.
	Debounce time.Duration

	// Interval enables an additional periodic rebuild when positive.
	Interval time.Duration
}

// Watcher monitors source directories and triggers debounced rebuilds.
type Watcher struct {
	rebuild   RebuildFunc
	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	opts      Options

	mu       sync.Mutex
	building bool

	stopChan    chan struct{}
	triggerChan chan struct{}
}

// New creates a watcher over the given roots.
func New(rebuild RebuildFunc, opts Options) (*Watcher, error) {
	if rebuild == nil {
		return nil, fmt.Errorf("rebuild function is required")
	}
	if len(opts.Roots) == 0 {
		return nil, fmt.Errorf("at least one watch root is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		rebuild:     rebuild,
		watcher:     fsw,
		opts:        opts,
		stopChan:    make(chan struct{}),
		triggerChan: make(chan struct{}, 1),
	}

	if opts.Interval > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		w.scheduler = s
	}
	return w, nil
}

// Start registers the watch roots and begins the event and rebuild loops.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.opts.Roots {
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}
	slog.Info("Watching for source changes", slog.Any("roots", w.opts.Roots))

	go w.eventLoop(ctx)
	go w.rebuildLoop(ctx)

	if w.scheduler != nil {
		_, err := w.scheduler.NewJob(
			gocron.DurationJob(w.opts.Interval),
			gocron.NewTask(w.trigger),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		w.scheduler.Start()
	}
	return nil
}

// Stop shuts down the watcher and the periodic scheduler.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			slog.Error("Error stopping scheduler", logfields.Error(err))
		}
	}
	return w.watcher.Close()
}

// addRecursive registers root and every subdirectory with the watcher.
// fsnotify watches are not recursive.
func (w *Watcher) addRecursive(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve watch root: %w", err)
	}
	return filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && len(name) > 1 && name[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// eventLoop forwards relevant filesystem events to the rebuild trigger.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories must be added to the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := w.addRecursive(event.Name); addErr != nil {
						slog.Warn("Could not watch new directory",
							logfields.Path(event.Name), logfields.Error(addErr))
					}
				}
			}
			slog.Debug("Source change detected", logfields.Path(event.Name))
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

// rebuildLoop debounces triggers and runs rebuilds one at a time.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.triggerChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.opts.Debounce, func() {
				w.runRebuild(ctx)
			})
		}
	}
}

// trigger requests a debounced rebuild; coalesces when one is already pending.
func (w *Watcher) trigger() {
	select {
	case w.triggerChan <- struct{}{}:
	default:
	}
}

// runRebuild executes one rebuild unless one is already running.
func (w *Watcher) runRebuild(ctx context.Context) {
	w.mu.Lock()
	if w.building {
		w.mu.Unlock()
		// Re-arm so the change is not lost.
		w.trigger()
		return
	}
	w.building = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.building = false
		w.mu.Unlock()
	}()

	start := time.Now()
	if err := w.rebuild(ctx); err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
